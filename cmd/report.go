package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daily-hours/internal/totals"
	"github.com/Tiliavir/daily-hours/internal/view"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show hours per day for the selected day, week or month",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

type reportDay struct {
	Date    string  `json:"date"`
	Weekday string  `json:"weekday"`
	Status  string  `json:"status,omitempty"`
	Tasks   int     `json:"tasks"`
	Hours   float64 `json:"hours"`
}

type reportDoc struct {
	View  string      `json:"view"`
	Label string      `json:"label"`
	Days  []reportDay `json:"days"`
	Total float64     `json:"total"`
}

func buildReport(g view.Grid) reportDoc {
	doc := reportDoc{View: string(g.Selection.Mode), Label: g.Label, Total: g.Total}
	for _, dv := range g.Days {
		status := ""
		switch {
		case dv.Entry.IsLeave:
			status = "leave"
		case dv.Day.Weekend:
			status = "weekend"
		}
		doc.Days = append(doc.Days, reportDay{
			Date:    dv.Day.Key,
			Weekday: dv.Day.Weekday,
			Status:  status,
			Tasks:   len(dv.Entry.Tasks),
			Hours:   dv.Hours,
		})
	}
	return doc
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.close()
	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	doc := buildReport(sess.Snapshot())

	switch reportFormat {
	case "csv":
		fmt.Println("date,weekday,status,tasks,hours")
		for _, d := range doc.Days {
			fmt.Printf("%s,%s,%s,%d,%s\n", d.Date, d.Weekday, d.Status, d.Tasks, totals.Format(d.Hours))
		}
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
	default: // md
		fmt.Println(doc.Label)
		fmt.Println("--------------------------------")
		for _, d := range doc.Days {
			fmt.Printf("%-12s%-11s%-9s%s\n", d.Date, d.Weekday, d.Status, totals.Format(d.Hours))
		}
		fmt.Println("--------------------------------")
		fmt.Printf("%-32s%s\n", "Total", totals.Format(doc.Total))
	}
	return nil
}
