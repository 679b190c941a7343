package stmtfetch

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DefaultOutputRoot is the directory statements are saved under.
const DefaultOutputRoot = "Billing History"

const (
	rowDateLayout  = "01/02/06"
	fileDateLayout = "2006-01-02"
	rangeSeparator = " - "
)

// Row is one body row of the statement table.
type Row struct {
	Index int    // 0-indexed position in the table body.
	Text  string // Raw text of the first cell, e.g. "01/01/24 - 02/01/24".
}

// Statement is a table row whose billing period has been parsed.
type Statement struct {
	Row   Row
	Start time.Time
	End   time.Time
}

// ParseStatement parses the billing period of a statement row. The text is
// split on " - " and the first and last parts are read as MM/DD/YY dates;
// text without a separator yields a single-day period.
func ParseStatement(row Row) (Statement, error) {
	parts := strings.Split(strings.TrimSpace(row.Text), rangeSeparator)
	start, err := time.Parse(rowDateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return Statement{}, fmt.Errorf("%w: row %d %q: %v", ErrDateRange, row.Index, row.Text, err)
	}
	end, err := time.Parse(rowDateLayout, strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return Statement{}, fmt.Errorf("%w: row %d %q: %v", ErrDateRange, row.Index, row.Text, err)
	}
	return Statement{Row: row, Start: start, End: end}, nil
}

// FileName returns the name the statement is saved under, for example
// "2024-01-05_to_2024-02-05_Statement.pdf".
func (s Statement) FileName() string {
	return s.Start.Format(fileDateLayout) + "_to_" + s.End.Format(fileDateLayout) + "_Statement.pdf"
}

func (s Statement) String() string {
	return s.Start.Format(fileDateLayout) + ".." + s.End.Format(fileDateLayout)
}

// Window is an inclusive range of calendar dates.
type Window struct {
	From time.Time
	To   time.Time
}

// TrailingYear returns the window from the same calendar date twelve
// months ago through today. Times of day are dropped.
func TrailingYear(now time.Time) Window {
	today := calendarDate(now)
	return Window{From: today.AddDate(0, -12, 0), To: today}
}

// Contains reports whether the calendar date of t lies within w.
func (w Window) Contains(t time.Time) bool {
	d := calendarDate(t)
	return !d.Before(w.From) && !d.After(w.To)
}

// Selects reports whether both ends of the statement period lie within w.
func (w Window) Selects(s Statement) bool {
	return w.Contains(s.End) && w.Contains(s.Start)
}

// calendarDate strips t down to its date, expressed in UTC so it compares
// equal to dates parsed from the statement table.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OutputDir returns the directory a run started at now saves into:
// root/<year>-<month>-<day>, without zero padding. The directory depends
// only on the run date, never on the statement periods.
func OutputDir(root string, now time.Time) string {
	if root == "" {
		root = DefaultOutputRoot
	}
	y, m, d := now.Date()
	return filepath.Join(root, fmt.Sprintf("%d-%d-%d", y, int(m), d))
}
