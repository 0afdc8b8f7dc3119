package core

import (
	"testing"
	"time"
)

func TestParseLocalDate(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2025-03-14", true, localDay(2025, 3, 14)},
		{"2024-02-29", true, localDay(2024, 2, 29)},
		{"2025-02-29", false, time.Time{}},
		{"2025-13-01", false, time.Time{}},
		{"2025-00-10", false, time.Time{}},
		{"2025-1-5", false, time.Time{}},
		{"2025-01-05T00:00:00", false, time.Time{}},
		{"abcd-ef-gh", false, time.Time{}},
		{"", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLocalDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseLocalDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseLocalDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDateToStringUsesLocalDate(t *testing.T) {
	// Just before local midnight must stay on the same local day.
	late := time.Date(2025, 1, 31, 23, 59, 0, 0, time.Local)
	if got := DateToString(late); got != "2025-01-31" {
		t.Errorf("DateToString() = %q, want 2025-01-31", got)
	}
	if got := DateToString(localDay(2025, 3, 4)); got != "2025-03-04" {
		t.Errorf("DateToString() = %q, want zero padded 2025-03-04", got)
	}
	// The same instant expressed in another zone reads as the local date.
	instant := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local).In(time.FixedZone("far", 13*3600))
	if got := DateToString(instant); got != "2025-06-15" {
		t.Errorf("DateToString() = %q, want 2025-06-15", got)
	}
}

func TestTodayAndCurrentMonth(t *testing.T) {
	today := Today()
	if _, ok := ParseLocalDate(today); !ok {
		t.Fatalf("Today() = %q is not a valid day string", today)
	}
	if _, ok := ParseMonthKey(CurrentMonth()); !ok {
		t.Errorf("CurrentMonth() = %q is not a valid month key", CurrentMonth())
	}
}

func TestMonthLabel(t *testing.T) {
	tests := map[string]string{
		"2025-03": "March 2025",
		"2024-12": "December 2024",
		"2025-13": "",
		"March":   "",
	}
	for in, want := range tests {
		if got := MonthLabel(in); got != want {
			t.Errorf("MonthLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrevNextMonth(t *testing.T) {
	tests := []struct {
		key, prev, next string
	}{
		{"2025-03", "2025-02", "2025-04"},
		{"2024-12", "2024-11", "2025-01"},
		{"2025-01", "2024-12", "2025-02"},
		{"2000-01", "1999-12", "2000-02"},
	}
	for _, tt := range tests {
		if got := PrevMonth(tt.key); got != tt.prev {
			t.Errorf("PrevMonth(%q) = %q, want %q", tt.key, got, tt.prev)
		}
		if got := NextMonth(tt.key); got != tt.next {
			t.Errorf("NextMonth(%q) = %q, want %q", tt.key, got, tt.next)
		}
	}
	if got := NextMonth("2025-1"); got != "" {
		t.Errorf("NextMonth of malformed key = %q, want empty", got)
	}
}

func TestMonthRoundTrip(t *testing.T) {
	for year := 1999; year <= 2031; year++ {
		for month := time.January; month <= time.December; month++ {
			key := MonthKeyOf(localDay(year, month, 1))
			if got := PrevMonth(NextMonth(key)); got != key {
				t.Fatalf("PrevMonth(NextMonth(%q)) = %q", key, got)
			}
			if got := NextMonth(PrevMonth(key)); got != key {
				t.Fatalf("NextMonth(PrevMonth(%q)) = %q", key, got)
			}
			if len(key) != 7 {
				t.Fatalf("month key %q is not YYYY-MM", key)
			}
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}
