package problem

import "strings"

// Normalize canonicalizes problem names and common aliases, so "One_Max"
// and "deceptive-trap" resolve like "onemax" and "trap".
func Normalize(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.Trim(normalized, "-")
	if normalized == "" {
		return ""
	}
	if canonical, ok := canonicalName(strings.ReplaceAll(normalized, "-", "")); ok {
		return canonical
	}
	return normalized
}

func canonicalName(compact string) (string, bool) {
	switch compact {
	case "onemax", "countones", "bitcount":
		return "onemax", true
	case "trap", "deceptivetrap", "concatenatedtrap":
		return "trap", true
	case "sphere", "dejong1", "dejongf1":
		return "sphere", true
	case "rastrigin":
		return "rastrigin", true
	default:
		return "", false
	}
}
