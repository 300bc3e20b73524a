package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/pricecap"
)

// now returns the current time at the precision stored in timestamp columns.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTimestamp parses a stored timestamp, naming the column on failure.
func parseTimestamp(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}

// appendCaptureFilter writes the WHERE conditions, ordering and pagination
// for filter. The query must already end in a WHERE clause.
func appendCaptureFilter(query *strings.Builder, args *[]any, filter pricecap.CaptureFilter) {
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		*args = append(*args, *filter.URL)
	}
	if filter.OK != nil {
		query.WriteString(" AND ok = ?")
		*args = append(*args, *filter.OK)
	}
	switch {
	case filter.Labeled == nil:
	case *filter.Labeled:
		query.WriteString(" AND corrected_at IS NOT NULL")
	default:
		query.WriteString(" AND corrected_at IS NULL")
	}

	// Rowid breaks ties between captures created within the same second.
	query.WriteString(" ORDER BY created_at DESC, rowid DESC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query.WriteString(" LIMIT -1")
		}
		query.WriteString(" OFFSET ?")
		*args = append(*args, filter.Offset)
	}
}
