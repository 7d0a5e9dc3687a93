package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/daily-hours/internal/calendar"
	"github.com/Tiliavir/daily-hours/internal/store"
)

var (
	exportFormat string
	exportFrom   string
	exportTo     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all entries to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md, yaml")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First date to include")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last date to include")
}

// exportLine is one task, or one task-less day.
type exportLine struct {
	Date        string `json:"date" yaml:"date"`
	IsLeave     bool   `json:"isLeave" yaml:"is_leave"`
	TaskID      string `json:"taskId,omitempty" yaml:"task_id,omitempty"`
	Description string `json:"description" yaml:"description"`
	Hours       string `json:"hours" yaml:"hours"`
}

// exportLines flattens the entries between from and to (zero means open)
// in date order.
func exportLines(entries *store.Collection, from, to time.Time) []exportLine {
	type day struct {
		t   time.Time
		key string
	}
	var days []day
	for _, key := range entries.Keys() {
		t, err := calendar.ParseKey(key, time.Local)
		if err != nil {
			continue
		}
		if (!from.IsZero() && t.Before(from)) || (!to.IsZero() && t.After(to)) {
			continue
		}
		days = append(days, day{t, key})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].t.Before(days[j].t) })

	var lines []exportLine
	for _, d := range days {
		e := entries.Entry(d.key)
		date := d.t.Format("2006-01-02")
		if len(e.Tasks) == 0 {
			lines = append(lines, exportLine{Date: date, IsLeave: e.IsLeave})
			continue
		}
		for _, t := range e.Tasks {
			lines = append(lines, exportLine{
				Date:        date,
				IsLeave:     e.IsLeave,
				TaskID:      t.ID,
				Description: t.Description,
				Hours:       string(t.Hours),
			})
		}
	}
	return lines
}

func runExport(cmd *cobra.Command, args []string) error {
	now := time.Now()
	var from, to time.Time
	var err error
	if exportFrom != "" {
		if from, err = parseDate(exportFrom, now); err != nil {
			return err
		}
	}
	if exportTo != "" {
		if to, err = parseDate(exportTo, now); err != nil {
			return err
		}
	}

	ctx := context.Background()
	a := openApp(ctx)
	defer a.close()
	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	lines := exportLines(sess.Entries(), from, to)

	switch exportFormat {
	case "json":
		data, err := json.MarshalIndent(lines, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(lines); err != nil {
			fmt.Fprintln(os.Stderr, "error encoding YAML:", err)
			os.Exit(2)
		}
		_ = enc.Close()
	case "md":
		printMarkdown(os.Stdout, lines)
	default: // csv
		printCSV(os.Stdout, lines)
	}
	return nil
}

func printCSV(w io.Writer, lines []exportLine) {
	fmt.Fprintln(w, "date,is_leave,task_id,description,hours")
	for _, l := range lines {
		fmt.Fprintf(w, "%s,%t,%s,%s,%s\n",
			l.Date,
			l.IsLeave,
			csvEscape(l.TaskID),
			csvEscape(l.Description),
			csvEscape(l.Hours),
		)
	}
}

func printMarkdown(w io.Writer, lines []exportLine) {
	fmt.Fprintln(w, "| Date | Leave | Description | Hours |")
	fmt.Fprintln(w, "|------|-------|-------------|-------|")
	for _, l := range lines {
		leave := ""
		if l.IsLeave {
			leave = "yes"
		}
		desc := strings.ReplaceAll(l.Description, "|", `\|`)
		desc = strings.ReplaceAll(desc, "\n", " ")
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n", l.Date, leave, desc, l.Hours)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	// Escape internal double quotes by doubling them.
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
