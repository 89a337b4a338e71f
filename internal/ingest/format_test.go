package ingest

import (
	"strings"
	"testing"
)

func TestFormatRecord_BusinessMetrics(t *testing.T) {
	got := FormatRecord(map[string]any{
		"monthly_revenue": 2500000.50,
		"active_users":    15000,
	}, RecordTypeBusinessMetrics)

	if !strings.HasPrefix(got, "Business Metrics Report:") {
		t.Errorf("missing report header: %q", got)
	}
	if !strings.Contains(got, "- Monthly Revenue:") {
		t.Errorf("missing titleized metric: %q", got)
	}
	if !strings.Contains(got, "- Active Users: 15000") {
		t.Errorf("missing metric line: %q", got)
	}

	// Sorted keys: active_users before monthly_revenue.
	if strings.Index(got, "Active Users") > strings.Index(got, "Monthly Revenue") {
		t.Errorf("keys not sorted: %q", got)
	}
}

func TestFormatRecord_UserAnalytics(t *testing.T) {
	got := FormatRecord(map[string]any{
		"engagement_metrics": map[string]any{
			"daily_active_users": 50000,
		},
		"behavior_patterns": []any{
			"Peak usage hours: 7-9 PM",
			"Weekend engagement higher",
		},
	}, RecordTypeUserAnalytics)

	if !strings.HasPrefix(got, "User Analytics Data:") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "Engagement Metrics:") ||
		!strings.Contains(got, "  - Daily Active Users: 50000") {
		t.Errorf("missing engagement section: %q", got)
	}
	if !strings.Contains(got, "Behavior Patterns:") ||
		!strings.Contains(got, "  - Peak usage hours: 7-9 PM") {
		t.Errorf("missing behavior section: %q", got)
	}
}

func TestFormatRecord_GamingData(t *testing.T) {
	got := FormatRecord(map[string]any{
		"game_performance": map[string]any{
			"chess": map[string]any{
				"win_rate": 0.55,
			},
		},
	}, RecordTypeGamingData)

	if !strings.HasPrefix(got, "Gaming Data Analysis:") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "  chess:") || !strings.Contains(got, "    - Win Rate: 0.55") {
		t.Errorf("missing per-game metrics: %q", got)
	}
}

func TestFormatRecord_GenericFallback(t *testing.T) {
	got := FormatRecord(map[string]any{
		"region": "APAC",
		"count":  42,
	}, "inventory_snapshot")

	if !strings.HasPrefix(got, "Inventory Snapshot Data:") {
		t.Errorf("missing titleized type header: %q", got)
	}
	if !strings.Contains(got, "Region: APAC") || !strings.Contains(got, "Count: 42") {
		t.Errorf("missing key/value lines: %q", got)
	}
}

func TestFormatRecord_Deterministic(t *testing.T) {
	record := map[string]any{"b": 2, "a": 1, "c": 3}
	first := FormatRecord(record, RecordTypeBusinessMetrics)
	for i := 0; i < 5; i++ {
		if got := FormatRecord(record, RecordTypeBusinessMetrics); got != first {
			t.Fatal("rendering not deterministic across calls")
		}
	}
}

func TestTitleize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"monthly_revenue", "Monthly Revenue"},
		{"a", "A"},
		{"already Title", "Already Title"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleize(tt.in); got != tt.want {
			t.Errorf("titleize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
