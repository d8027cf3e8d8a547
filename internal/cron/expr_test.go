package cron

import "testing"

func TestParseAliases(t *testing.T) {
	cases := map[string]string{
		"@hourly":  "0 * * * *",
		"@daily":   "0 0 * * *",
		"@weekly":  "0 0 * * 0",
		"@monthly": "0 0 1 * *",
	}
	for alias, expanded := range cases {
		got, err := Parse(alias)
		if err != nil {
			t.Fatalf("Parse(%q): %v", alias, err)
		}
		want, err := Parse(expanded)
		if err != nil {
			t.Fatalf("Parse(%q): %v", expanded, err)
		}
		if got != want {
			t.Errorf("Parse(%q) = %+v, want %+v (from %q)", alias, got, want, expanded)
		}
	}
}

func TestParseRejectsWrongFieldCount(t *testing.T) {
	if _, err := Parse("0 * *"); err == nil {
		t.Fatal("expected error for too few fields")
	}
	if _, err := Parse("0 * * * * *"); err == nil {
		t.Fatal("expected error for too many fields")
	}
}

func TestParseEveryAndExact(t *testing.T) {
	expr, err := Parse("*/15 9 1 * *")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if expr.Minute.Kind != Every || expr.Minute.Value != 15 {
		t.Errorf("minute field = %+v", expr.Minute)
	}
	if expr.Hour.Kind != Exact || expr.Hour.Value != 9 {
		t.Errorf("hour field = %+v", expr.Hour)
	}
	if expr.DayOfMonth.Kind != Exact || expr.DayOfMonth.Value != 1 {
		t.Errorf("day-of-month field = %+v", expr.DayOfMonth)
	}
	if expr.Month.Kind != Any || expr.DayOfWeek.Kind != Any {
		t.Errorf("expected Any for month/day-of-week, got %+v %+v", expr.Month, expr.DayOfWeek)
	}
}

func TestFieldMatches(t *testing.T) {
	if !(Field{Kind: Any}).Matches(42) {
		t.Error("Any should match anything")
	}
	if !(Field{Kind: Every, Value: 5}).Matches(20) {
		t.Error("Every(5) should match 20")
	}
	if (Field{Kind: Every, Value: 5}).Matches(21) {
		t.Error("Every(5) should not match 21")
	}
	if !(Field{Kind: Exact, Value: 7}).Matches(7) {
		t.Error("Exact(7) should match 7")
	}
}

func TestDayOfMonthAndDayOfWeekAreAND(t *testing.T) {
	// "0 0 1 * 1" fires only when day-of-month is 1 AND it is a Monday,
	// not an OR as POSIX cron defines it.
	expr, err := Parse("0 0 1 * 1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// 2024-04-01 was a Monday: both fields match.
	bt := TimestampToBroken(1711929600)
	if bt.Day != 1 || bt.DayOfWeek != 1 {
		t.Fatalf("test fixture assumption wrong: %+v", bt)
	}
	if !expr.Matches(bt) {
		t.Fatal("expected match when both day-of-month and day-of-week satisfy")
	}

	// A Monday that is not the 1st of the month must not match.
	other := BrokenDownTime{Year: 2024, Month: 4, Day: 8, Hour: 0, Minute: 0, DayOfWeek: 1}
	if expr.Matches(other) {
		t.Fatal("expected no match when day-of-month fails even though day-of-week matches")
	}
}

func TestNextRunAfterHourlyAlias(t *testing.T) {
	expr, _ := Parse("@hourly")
	from := int64(1710510300) // 2024-03-15 13:45:00 UTC
	next := expr.NextRunAfter(from)
	bt := TimestampToBroken(next)
	if bt.Minute != 0 || next <= from {
		t.Fatalf("NextRunAfter = %d (%+v), want next top-of-hour after %d", next, bt, from)
	}
	if bt.Hour != 14 {
		t.Fatalf("expected next hourly fire at hour 14, got %+v", bt)
	}
}

func TestNextRunAfterExactMinute(t *testing.T) {
	// Fires at minute 30 of every hour.
	expr, _ := Parse("30 * * * *")
	from := int64(1710510300) // 13:45:00
	next := expr.NextRunAfter(from)
	bt := TimestampToBroken(next)
	if bt.Hour != 14 || bt.Minute != 30 {
		t.Fatalf("NextRunAfter = %+v, want 14:30", bt)
	}
}

func TestNextRunAfterUnsatisfiableFallsBackSevenDays(t *testing.T) {
	// February never has a 30th: the scan exhausts 366 days and the
	// fallback engages.
	expr, err := Parse("0 0 30 2 *")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	from := int64(1710510300)
	next := expr.NextRunAfter(from)
	if next != from+7*86400 {
		t.Fatalf("NextRunAfter = %d, want fallback %d", next, from+7*86400)
	}
}
