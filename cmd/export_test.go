package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/daily-hours/internal/model"
	"github.com/Tiliavir/daily-hours/internal/store"
)

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Standup", "Standup"},
		{"Code review", "Code review"},
		{"7.5", "7.5"},
		{"Review, part 1", `"Review, part 1"`},
		{`Fix "login" bug`, `"Fix ""login"" bug"`},
		{"Notes\nsecond line", "\"Notes\nsecond line\""},
		{"Windows\r\nnotes", "\"Windows\r\nnotes\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := csvEscape(tt.input)
		if got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExportLines(t *testing.T) {
	c := store.NewCollection()
	c.Set("10/01/2024", model.DayEntry{Tasks: []model.Task{
		{ID: "x", Description: "Review, part 1", Hours: "1.5"},
		{ID: "y", Description: "Standup", Hours: ""},
	}})
	c.Set("02/01/2024", model.DayEntry{IsLeave: true})
	c.Set("03/01/2024", model.DayEntry{IsLeave: true, Tasks: []model.Task{
		{ID: "l", Description: `Conference "GoLab", day 2`, Hours: "8"},
	}})
	c.Set("01/02/2024", model.DayEntry{Tasks: []model.Task{{ID: "z", Hours: "8"}}})
	c.Set("not a key", model.DayEntry{})

	lines := exportLines(c, time.Time{}, time.Time{})
	var dates []string
	for _, l := range lines {
		dates = append(dates, l.Date)
	}
	// 01/02 sorts before 02/01 as a key but after it as a date.
	if got := strings.Join(dates, " "); got != "2024-01-02 2024-01-03 2024-01-10 2024-01-10 2024-02-01" {
		t.Errorf("dates = %s", got)
	}

	ranged := exportLines(c, jan(3), jan(31))
	if len(ranged) != 3 || ranged[0].TaskID != "l" || ranged[2].TaskID != "y" {
		t.Errorf("ranged lines = %+v", ranged)
	}

	var buf bytes.Buffer
	printCSV(&buf, lines[:4])
	wantCSV := "date,is_leave,task_id,description,hours\n" +
		"2024-01-02,true,,,\n" +
		"2024-01-03,true,l,\"Conference \"\"GoLab\"\", day 2\",8\n" +
		"2024-01-10,false,x,\"Review, part 1\",1.5\n" +
		"2024-01-10,false,y,Standup,\n"
	if buf.String() != wantCSV {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), wantCSV)
	}

	buf.Reset()
	printMarkdown(&buf, []exportLine{{Date: "2024-01-02", IsLeave: true, Description: "a|b"}})
	if !strings.Contains(buf.String(), `| 2024-01-02 | yes | a\|b |  |`) {
		t.Errorf("markdown =\n%s", buf.String())
	}
}
