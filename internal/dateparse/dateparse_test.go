package dateparse

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFormats(t *testing.T) {
	p := Parser{PreferEuropean: true}

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15", date(2024, time.March, 15)},
		{"2024/03/15", date(2024, time.March, 15)},
		{"15.03.2024", date(2024, time.March, 15)},
		{"15/03/2024", date(2024, time.March, 15)},
		{"15-03-2024", date(2024, time.March, 15)},
		{"15 mars 2024", date(2024, time.March, 15)},
		{"March 15, 2024", date(2024, time.March, 15)},
		{"1 janvier 2025", date(2025, time.January, 1)},
		{"Nov 3 2023", date(2023, time.November, 3)},
		{"15.03.24", date(2024, time.March, 15)},
	}
	for _, tt := range tests {
		got, ok := p.ParseDate(tt.in)
		if !ok {
			t.Errorf("ParseDate(%q) failed", tt.in)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseRejects(t *testing.T) {
	p := Parser{PreferEuropean: true}
	for _, in := range []string{"", "not a date", "2024-13-01", "32/01/2024 extra", "1850-01-01"} {
		if _, ok := p.ParseDate(in); ok {
			t.Errorf("ParseDate(%q) unexpectedly succeeded", in)
		}
	}
}

func TestSlashedAmbiguity(t *testing.T) {
	european := Parser{PreferEuropean: true}
	american := Parser{PreferEuropean: false}

	// Both readings valid: the preference decides.
	if got, _ := european.ParseDate("03/04/2024"); !got.Equal(date(2024, time.April, 3)) {
		t.Errorf("european 03/04/2024 = %s, want 2024-04-03", got)
	}
	if got, _ := american.ParseDate("03/04/2024"); !got.Equal(date(2024, time.March, 4)) {
		t.Errorf("american 03/04/2024 = %s, want 2024-03-04", got)
	}
}

func TestSlashedFieldSwapRecovery(t *testing.T) {
	// American preference reads 13/02/2024 as month 13: invalid, so the
	// parser swaps fields and flags the correction.
	american := Parser{PreferEuropean: false}
	r, ok := american.Parse("13/02/2024")
	if !ok {
		t.Fatal("Parse(13/02/2024) failed")
	}
	if !r.Date.Equal(date(2024, time.February, 13)) {
		t.Errorf("recovered date = %s, want 2024-02-13", r.Date)
	}
	if !r.SwappedFields {
		t.Error("SwappedFields not set after recovery")
	}

	// European preference reads the same string directly: no swap.
	european := Parser{PreferEuropean: true}
	r, ok = european.Parse("13/02/2024")
	if !ok || r.SwappedFields {
		t.Errorf("european read of 13/02/2024: ok=%v swapped=%v", ok, r.SwappedFields)
	}
}

func TestParseRelative(t *testing.T) {
	anchor := date(2024, time.March, 10)
	p := Parser{Now: func() time.Time { return anchor }}

	tests := []struct {
		in   string
		want time.Time
	}{
		{"Q1 2024", date(2024, time.March, 31)},
		{"Q2 2024", date(2024, time.June, 30)},
		{"Q4 2023", date(2023, time.December, 31)},
		{"H1 2024", date(2024, time.June, 30)},
		{"H2 2024", date(2024, time.December, 31)},
		{"Net 30", anchor.AddDate(0, 0, 30)},
		{"45 jours", anchor.AddDate(0, 0, 45)},
		{"end of month", date(2024, time.March, 31)},
		{"fin de mois", date(2024, time.March, 31)},
		{"end of year", date(2024, time.December, 31)},
	}
	for _, tt := range tests {
		got, ok := p.ParseRelative(tt.in)
		if !ok {
			t.Errorf("ParseRelative(%q) failed", tt.in)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseRelative(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, ok := p.ParseRelative("no date here"); ok {
		t.Error("ParseRelative matched non-date text")
	}
}

func TestExtractAll(t *testing.T) {
	p := Parser{PreferEuropean: true}
	text := "Invoice date: 01/02/2024\nPayment due by 15/03/2024."
	dates := p.ExtractAll(text)
	if len(dates) != 2 {
		t.Fatalf("ExtractAll found %d dates, want 2", len(dates))
	}
	if !dates[0].Equal(date(2024, time.February, 1)) {
		t.Errorf("first date = %s, want 2024-02-01", dates[0])
	}
	if !dates[1].Equal(date(2024, time.March, 15)) {
		t.Errorf("second date = %s, want 2024-03-15", dates[1])
	}
}

func TestHelpers(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.January, 31)
	if got := DaysBetween(start, end); got != 30 {
		t.Errorf("DaysBetween = %d, want 30", got)
	}
	if !IsOverdue(start, end) {
		t.Error("IsOverdue(jan 1, jan 31) = false, want true")
	}
	if IsOverdue(end, start) {
		t.Error("IsOverdue(jan 31, jan 1) = true, want false")
	}

	delay, late := PaymentDelay(date(2024, time.January, 1), date(2024, time.February, 15), 30)
	if !late || delay != 15 {
		t.Errorf("PaymentDelay = (%d, %v), want (15, true)", delay, late)
	}

	if q := Quarter(date(2024, time.May, 2)); q != 2 {
		t.Errorf("Quarter(may) = %d, want 2", q)
	}
	if fy := FiscalYear(date(2024, time.February, 1), time.April); fy != 2023 {
		t.Errorf("FiscalYear(feb 2024, start april) = %d, want 2023", fy)
	}
}
