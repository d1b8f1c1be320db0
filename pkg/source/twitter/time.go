package twitter

import "time"

// parseCreatedAt parses the RFC3339 created_at field, tolerating absence.
func parseCreatedAt(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
