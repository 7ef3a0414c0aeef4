package trigger

import (
	"errors"
	"testing"
	"time"
)

func TestValidateCron_OK(t *testing.T) {
	exprs := []string{
		"0 8 * * 1",
		"* * * * *",
		"*/5 * * * *",
		"0 9-17 * * 1-5",
		"0,30 8 1,15 * *",
		"15 3 1 6 0",
	}
	for _, expr := range exprs {
		if _, err := ValidateCron(expr); err != nil {
			t.Errorf("ValidateCron(%q) = %v, want ok", expr, err)
		}
	}
}

func TestValidateCron_FieldCount(t *testing.T) {
	_, err := ValidateCron("0 8 * *")
	if err == nil {
		t.Fatal("expected error for 4 fields")
	}
	var cronErr *InvalidCronError
	if !errors.As(err, &cronErr) {
		t.Fatalf("expected *InvalidCronError, got %T", err)
	}
	if cronErr.Field != "expression" {
		t.Errorf("field = %q, want \"expression\"", cronErr.Field)
	}
}

func TestValidateCron_OutOfRange(t *testing.T) {
	tests := []struct {
		expr      string
		wantField string
	}{
		{"60 8 * * 1", "minute"},
		{"0 24 * * 1", "hour"},
		{"0 8 32 * *", "day-of-month"},
		{"0 8 * 13 *", "month"},
		{"0 8 * * 7", "day-of-week"},
	}
	for _, tt := range tests {
		_, err := ValidateCron(tt.expr)
		if err == nil {
			t.Errorf("ValidateCron(%q) succeeded, want error", tt.expr)
			continue
		}
		var cronErr *InvalidCronError
		if !errors.As(err, &cronErr) {
			t.Errorf("ValidateCron(%q): expected *InvalidCronError, got %T", tt.expr, err)
			continue
		}
		if cronErr.Field != tt.wantField {
			t.Errorf("ValidateCron(%q): field = %q, want %q", tt.expr, cronErr.Field, tt.wantField)
		}
	}
}

func TestValidateCron_MalformedSyntax(t *testing.T) {
	exprs := []string{
		"*/0 * * * *",  // zero step
		"*/x * * * *",  // non-numeric step
		"1-b * * * *",  // non-numeric range end
		"1,,2 * * * *", // empty list item
		"a * * * *",    // not a number
	}
	for _, expr := range exprs {
		if _, err := ValidateCron(expr); err == nil {
			t.Errorf("ValidateCron(%q) succeeded, want error", expr)
		}
	}
}

func TestNextRun_Timezone(t *testing.T) {
	parsed, err := ValidateCron("0 9 * * *")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	next, err := parsed.NextRun("America/New_York", from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 9:00 AM EST on Jan 15 is 14:00 UTC.
	want := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
	if !next.After(from) {
		t.Errorf("next run %v is not strictly after %v", next, from)
	}
}

func TestNextRun_TimezoneMatters(t *testing.T) {
	parsed, err := ValidateCron("0 8 * * *")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	utcNext, err := parsed.NextRun("UTC", from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tokyoNext, err := parsed.NextRun("Asia/Tokyo", from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if utcNext.Equal(tokyoNext) {
		t.Errorf("same instant %v for different zones", utcNext)
	}
}

func TestNextRun_MonthRollover(t *testing.T) {
	parsed, err := ValidateCron("0 0 1 * *")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	from := time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)
	next, err := parsed.NextRun("UTC", from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestNextRun_NeverMatchingExpression(t *testing.T) {
	// Syntactically valid but no real date has a Feb 30.
	parsed, err := ValidateCron("0 0 30 2 *")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	next, err := parsed.NextRun("UTC", now)
	if err == nil {
		t.Fatalf("expected error for never-matching expression, got next run %v", next)
	}
	var cronErr *InvalidCronError
	if !errors.As(err, &cronErr) {
		t.Fatalf("expected *InvalidCronError, got %T", err)
	}
	if cronErr.Field != "expression" {
		t.Errorf("field = %q, want \"expression\"", cronErr.Field)
	}
}

func TestNextRun_BadTimezone(t *testing.T) {
	parsed, err := ValidateCron("0 9 * * *")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := parsed.NextRun("Not/AZone", time.Now()); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
