package domain

import "strings"

// Tag columns store lowercased values wrapped in pipes ("|go|postgres|") so
// that an exact-tag match is a plain LIKE against "%|go|%" on any backend.

func JoinTags(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('|')
	for _, v := range vals {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		b.WriteString(v)
		b.WriteByte('|')
	}
	if b.Len() == 1 {
		return ""
	}
	return b.String()
}

func TagPattern(v string) string {
	return "%|" + strings.ToLower(strings.TrimSpace(v)) + "|%"
}

func SplitTags(s string) []string {
	s = strings.Trim(s, "|")
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}
