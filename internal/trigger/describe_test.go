package trigger

import "testing"

func TestDescribe(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"* * * * *", "Every minute"},
		{"*/1 * * * *", "Every minute"},
		{"*/5 * * * *", "Every 5 minutes"},
		{"30 * * * *", "Every hour at minute 30"},
		{"0 0 * * *", "Every day at 12:00 AM"},
		{"15 9 * * *", "Every day at 9:15 AM"},
		{"0 12 * * *", "Every day at 12:00 PM"},
		{"30 17 * * *", "Every day at 5:30 PM"},
		{"0 8 * * 1", "Every Monday at 8:00 AM"},
		{"0 9 * * 0", "Every Sunday at 9:00 AM"},
		{"45 22 * * 5", "Every Friday at 10:45 PM"},
		{"0 8 15 * *", "Monthly on day 15 at 8:00 AM"},
		{"0 8 * 6 *", "Custom schedule: 0 8 * 6 *"},
		{"0,30 8 * * *", "Custom schedule: 0,30 8 * * *"},
		{"0 9-17 * * 1-5", "Custom schedule: 0 9-17 * * 1-5"},
	}
	for _, tt := range tests {
		parsed, err := ValidateCron(tt.expr)
		if err != nil {
			t.Fatalf("ValidateCron(%q): %v", tt.expr, err)
		}
		if got := parsed.Describe(); got != tt.want {
			t.Errorf("Describe(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}
