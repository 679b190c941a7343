package stmtfetch

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseStatement(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start time.Time
		end   time.Time
	}{
		{"range", "01/05/24 - 02/05/24", date(2024, 1, 5), date(2024, 2, 5)},
		{"surrounding whitespace", "  01/05/24 - 02/05/24\n", date(2024, 1, 5), date(2024, 2, 5)},
		{"single date", "03/10/24", date(2024, 3, 10), date(2024, 3, 10)},
		{"last century", "12/01/99 - 12/31/99", date(1999, 12, 1), date(1999, 12, 31)},
		{"first and last part", "01/01/24 - 01/15/24 - 02/01/24", date(2024, 1, 1), date(2024, 2, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := ParseStatement(Row{Index: 3, Text: tt.text})
			require.NoError(t, err)
			assert.True(t, tt.start.Equal(st.Start), "start = %v, want %v", st.Start, tt.start)
			assert.True(t, tt.end.Equal(st.End), "end = %v, want %v", st.End, tt.end)
			assert.Equal(t, 3, st.Row.Index)
		})
	}
}

func TestParseStatement_Malformed(t *testing.T) {
	for _, text := range []string{
		"",
		"Jan 5 - Feb 5",
		"01/05/2024 - 02/05/2024",
		"01/05/24 - ",
		"13/01/24 - 02/01/24",
	} {
		_, err := ParseStatement(Row{Text: text})
		assert.ErrorIs(t, err, ErrDateRange, "text %q", text)
	}
}

func TestStatementFileName(t *testing.T) {
	st := Statement{Start: date(2024, 1, 5), End: date(2024, 2, 5)}
	assert.Equal(t, "2024-01-05_to_2024-02-05_Statement.pdf", st.FileName())
}

func TestTrailingYear(t *testing.T) {
	w := TrailingYear(time.Date(2025, 6, 1, 17, 45, 0, 0, time.Local))
	assert.True(t, date(2025, 6, 1).Equal(w.To), "to = %v", w.To)
	assert.True(t, date(2024, 6, 1).Equal(w.From), "from = %v", w.From)
	assert.Equal(t, 365*24*time.Hour, w.To.Sub(w.From))
}

func TestWindowSelects(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 30, 0, 0, time.Local)
	w := TrailingYear(now)

	tests := []struct {
		text string
		want bool
	}{
		{"01/01/24 - 06/01/24", true},
		{"01/01/23 - 06/01/23", false},
		{"12/01/24 - 12/31/24", true},
		{"12/15/24 - 01/01/25", true},
		{"12/15/24 - 01/02/25", false},
		{"12/31/23 - 01/31/24", false},
		{"06/01/24 - 01/01/24", true},
	}
	for _, tt := range tests {
		st, err := ParseStatement(Row{Text: tt.text})
		require.NoError(t, err)
		assert.Equal(t, tt.want, w.Selects(st), "row %q", tt.text)
	}
}

func TestWindowContains_IgnoresTimeOfDay(t *testing.T) {
	w := TrailingYear(time.Date(2025, 3, 15, 0, 0, 1, 0, time.Local))
	assert.True(t, w.Contains(time.Date(2025, 3, 15, 23, 59, 0, 0, time.Local)))
	assert.True(t, w.Contains(time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)))
	assert.False(t, w.Contains(time.Date(2024, 3, 14, 23, 59, 0, 0, time.Local)))
	assert.False(t, w.Contains(time.Date(2025, 3, 16, 0, 0, 0, 0, time.Local)))
}

func TestOutputDir(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2025, 1, 1, 8, 0, 0, 0, time.Local), "2025-1-1"},
		{time.Date(2024, 11, 23, 8, 0, 0, 0, time.Local), "2024-11-23"},
		{time.Date(2024, 7, 4, 23, 0, 0, 0, time.Local), "2024-7-4"},
	}
	for _, tt := range tests {
		assert.Equal(t, filepath.Join("Billing History", tt.want), OutputDir("Billing History", tt.now))
	}
	assert.Equal(t, filepath.Join(DefaultOutputRoot, "2025-1-1"), OutputDir("", tests[0].now))
}
