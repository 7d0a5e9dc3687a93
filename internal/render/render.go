package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/Tiliavir/daily-hours/internal/calendar"
	"github.com/Tiliavir/daily-hours/internal/prefs"
	"github.com/Tiliavir/daily-hours/internal/totals"
	"github.com/Tiliavir/daily-hours/internal/view"
)

// Palette holds the colours used for one theme.
type Palette struct {
	Title   *color.Color
	Header  *color.Color
	Today   *color.Color
	Weekend *color.Color
	Leave   *color.Color
	Muted   *color.Color
	Total   *color.Color
}

// PaletteFor returns the palette of theme.
func PaletteFor(theme prefs.Theme) Palette {
	if theme == prefs.Dark {
		return Palette{
			Title:   color.New(color.Bold, color.FgHiWhite),
			Header:  color.New(color.Bold, color.Underline, color.FgHiWhite),
			Today:   color.New(color.Bold, color.FgHiCyan),
			Weekend: color.New(color.Faint, color.FgWhite),
			Leave:   color.New(color.FgHiYellow, color.Italic),
			Muted:   color.New(color.Faint, color.Italic),
			Total:   color.New(color.Bold, color.FgHiGreen),
		}
	}
	return Palette{
		Title:   color.New(color.Bold),
		Header:  color.New(color.Bold, color.Underline),
		Today:   color.New(color.Bold, color.FgBlue),
		Weekend: color.New(color.Faint),
		Leave:   color.New(color.FgYellow, color.Italic),
		Muted:   color.New(color.Faint, color.Italic),
		Total:   color.New(color.Bold, color.FgGreen),
	}
}

// Renderer draws grids and calendars to a writer.
type Renderer struct {
	w io.Writer
	p Palette
}

// New returns a Renderer writing to w in theme's colours.
func New(w io.Writer, theme prefs.Theme) *Renderer {
	return &Renderer{w: w, p: PaletteFor(theme)}
}

// Grid prints the visible days as a table: one line per row, the date on
// the first row of each day. Rows are numbered per day from 1, which is how
// commands address them.
func (r *Renderer) Grid(g view.Grid) {
	r.p.Title.Fprintf(r.w, "%s (%s)\n\n", g.Title, g.Selection.Mode)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(r.p.Header.Sprint("DATE"), r.p.Header.Sprint("DAY"), r.p.Header.Sprint("#"),
		r.p.Header.Sprint("DESCRIPTION"), r.p.Header.Sprint("HOURS"), r.p.Header.Sprint("STATUS"))

	for _, dv := range g.Days {
		c := r.dayColor(dv)
		status := ""
		switch {
		case dv.Entry.IsLeave:
			status = r.p.Leave.Sprint("leave")
		case dv.Day.Weekend:
			status = r.p.Weekend.Sprint("weekend")
		}

		for i, row := range dv.Rows {
			date, day, st := "", "", ""
			if i == 0 {
				date, day, st = c.Sprint(dv.Day.Key), c.Sprint(dv.Day.Weekday[:3]), status
			}
			desc, hours := row.Task.Description, string(row.Task.Hours)
			if row.Placeholder {
				desc = r.p.Muted.Sprint("(no tasks)")
			}
			if dv.Entry.IsLeave {
				desc, hours = r.p.Leave.Sprint(desc), r.p.Leave.Sprint(hours)
			}
			tbl.AddRow(date, day, strconv.Itoa(i+1), desc, hours, st)
		}
		if len(dv.Rows) > 1 {
			tbl.AddRow("", "", "", r.p.Muted.Sprint("day total"), r.p.Muted.Sprint(totals.Format(dv.Hours)), "")
		}
	}
	fmt.Fprintln(r.w, tbl)
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "%s: %s\n", g.Label, r.p.Total.Sprint(totals.Format(g.Total)))
}

func (r *Renderer) dayColor(dv view.DayView) *color.Color {
	switch {
	case dv.Today:
		return r.p.Today
	case dv.Entry.IsLeave:
		return r.p.Leave
	case dv.Day.Weekend:
		return r.p.Weekend
	}
	return color.New()
}

// calendarWidth is seven two-column cells and six separators.
const calendarWidth = 20

// MiniCalendar prints a Sunday-first month sheet for sel's month. The
// selected day is underlined, today is highlighted, and days in logged are
// printed bold.
func (r *Renderer) MiniCalendar(sel, today time.Time, logged map[string]bool) {
	title := calendar.MonthTitle(sel)
	pad := (calendarWidth - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	r.p.Title.Fprintf(r.w, "%s%s\n", strings.Repeat(" ", pad), title)
	r.p.Header.Fprintln(r.w, "Su Mo Tu We Th Fr Sa")

	bold := color.New(color.Bold)
	cells := calendar.MonthLayout(sel)
	for i, d := range cells {
		switch {
		case i > 0 && i%7 == 0:
			fmt.Fprintln(r.w)
		case i > 0:
			fmt.Fprint(r.w, " ")
		}
		if d.Key == "" {
			fmt.Fprint(r.w, "  ")
			continue
		}
		c := color.New()
		switch {
		case calendar.SameDay(d.Date, today):
			c = r.p.Today
		case logged[d.Key]:
			c = bold
		case d.Weekend:
			c = r.p.Weekend
		}
		cell := fmt.Sprintf("%2d", d.Date.Day())
		if calendar.SameDay(d.Date, sel) {
			cell = color.New(color.Underline).Sprint(cell)
		}
		fmt.Fprint(r.w, c.Sprint(cell))
	}
	fmt.Fprintln(r.w)
}
