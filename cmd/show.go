package cmd

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/daily-hours/internal/calendar"
	"github.com/Tiliavir/daily-hours/internal/render"
	"github.com/Tiliavir/daily-hours/internal/totals"
)

var showShift int

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the tasks and hours of the selected day, week or month",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

var calCmd = &cobra.Command{
	Use:   "cal",
	Short: "Show a month calendar with logged days highlighted",
	Args:  cobra.NoArgs,
	RunE:  runCal,
}

func init() {
	showCmd.Flags().IntVar(&showShift, "shift", 0, "Move the selection by this many days, weeks or months")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.close()

	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	switch showShift {
	case 0:
	case 1, -1:
		sess.Navigate(showShift)
	default:
		sel := sess.Selection()
		sel.Date = calendar.Navigate(sel.Date, sel.Mode, showShift)
		sess.Show(sel)
	}

	render.New(color.Output, a.prefs.Theme()).Grid(sess.Snapshot())
	return nil
}

func runCal(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.close()

	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	sel := sess.Selection().Date
	entries := sess.Entries()
	logged := map[string]bool{}
	for i := 1; i <= calendar.DaysInMonth(sel); i++ {
		key := calendar.Key(time.Date(sel.Year(), sel.Month(), i, 0, 0, 0, 0, sel.Location()))
		if e, ok := entries.Get(key); ok && (totals.DayHours(e) > 0 || e.IsLeave) {
			logged[key] = true
		}
	}

	render.New(color.Output, a.prefs.Theme()).MiniCalendar(sel, time.Now(), logged)
	return nil
}
