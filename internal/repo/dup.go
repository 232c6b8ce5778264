package repo

import "strings"

// isDupKey detects unique-constraint violations without depending on
// driver-specific error types (message shapes differ across sqlite,
// mysql and postgres).
func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
