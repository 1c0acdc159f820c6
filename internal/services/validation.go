package services

import (
	"strings"
	"time"

	apperrors "task-assign.com/task-assign/internal/errors"
	model "task-assign.com/task-assign/internal/models"
)

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.ErrTitleRequired
	}
	return title, nil
}

// normalizeEmail makes addresses compare case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// parseDueDate accepts a calendar date or an RFC 3339 timestamp and keeps
// the calendar day as written, ignoring the time and offset. The day is
// stored as UTC midnight. Empty input means no due date.
func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, apperrors.ErrInvalidDueDate
		}
	}

	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day, nil
}

// uniqueIDs drops zero and repeated ids, keeping first-seen order.
func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
