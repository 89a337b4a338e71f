package ingest

import (
	"fmt"
	"sort"
	"strings"
)

// Record data types with bespoke textual templates. Anything else falls
// through to the generic key/value rendering.
const (
	RecordTypeBusinessMetrics = "business_metrics"
	RecordTypeUserAnalytics   = "user_analytics"
	RecordTypeGamingData      = "gaming_data"
)

// FormatRecord renders a structured record as descriptive text suitable
// for embedding. Keys are emitted in sorted order so the rendering is
// deterministic for a given record.
func FormatRecord(data map[string]any, dataType string) string {
	switch dataType {
	case RecordTypeBusinessMetrics:
		return formatBusinessMetrics(data)
	case RecordTypeUserAnalytics:
		return formatUserAnalytics(data)
	case RecordTypeGamingData:
		return formatGamingData(data)
	default:
		return formatGeneric(data, dataType)
	}
}

func formatBusinessMetrics(data map[string]any) string {
	parts := []string{"Business Metrics Report:"}
	for _, metric := range sortedKeys(data) {
		parts = append(parts, fmt.Sprintf("- %s: %v", titleize(metric), data[metric]))
	}
	return strings.Join(parts, "\n")
}

func formatUserAnalytics(data map[string]any) string {
	parts := []string{"User Analytics Data:"}
	if engagement, ok := data["engagement_metrics"].(map[string]any); ok {
		parts = append(parts, "Engagement Metrics:")
		for _, metric := range sortedKeys(engagement) {
			parts = append(parts, fmt.Sprintf("  - %s: %v", titleize(metric), engagement[metric]))
		}
	}
	if patterns, ok := data["behavior_patterns"].([]any); ok {
		parts = append(parts, "Behavior Patterns:")
		for _, p := range patterns {
			parts = append(parts, fmt.Sprintf("  - %v", p))
		}
	}
	return strings.Join(parts, "\n")
}

func formatGamingData(data map[string]any) string {
	parts := []string{"Gaming Data Analysis:"}
	if performance, ok := data["game_performance"].(map[string]any); ok {
		parts = append(parts, "Game Performance:")
		for _, game := range sortedKeys(performance) {
			parts = append(parts, fmt.Sprintf("  %s:", game))
			if metrics, ok := performance[game].(map[string]any); ok {
				for _, metric := range sortedKeys(metrics) {
					parts = append(parts, fmt.Sprintf("    - %s: %v", titleize(metric), metrics[metric]))
				}
			}
		}
	}
	return strings.Join(parts, "\n")
}

func formatGeneric(data map[string]any, dataType string) string {
	parts := []string{titleize(dataType) + " Data:"}
	for _, key := range sortedKeys(data) {
		parts = append(parts, fmt.Sprintf("%s: %v", titleize(key), data[key]))
	}
	return strings.Join(parts, "\n")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// titleize turns a snake_case identifier into a human-readable label,
// e.g. "monthly_revenue" -> "Monthly Revenue".
func titleize(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
