package trigger

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestFormatList_Empty(t *testing.T) {
	if got := FormatList(nil); got != "no triggers\n" {
		t.Errorf("FormatList(nil) = %q", got)
	}
}

func TestFormatList(t *testing.T) {
	tr := newStoreTrigger(t, "weekly report", "0 8 * * 1", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	out := FormatList([]Trigger{tr})

	if !strings.Contains(out, tr.ID) {
		t.Errorf("output missing trigger ID:\n%s", out)
	}
	if !strings.Contains(out, "0 8 * * 1") {
		t.Errorf("output missing cron expression:\n%s", out)
	}
}

func TestTruncateCol_MultiByte(t *testing.T) {
	name := strings.Repeat("ü", 30)
	got := truncateCol(name, 20)

	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if runes := []rune(got); len(runes) != 20 {
		t.Errorf("truncated to %d runes, want 20", len(runes))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated value %q missing ellipsis", got)
	}
}

func TestTruncateCol_ShortString(t *testing.T) {
	if got := truncateCol("short", 20); got != "short" {
		t.Errorf("got %q, want unchanged", got)
	}
}
