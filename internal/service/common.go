package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"zawawiya-store/internal/apperror"

	"gorm.io/gorm"
)

const dayLayout = "2006-01-02"

// lookupErr turns a repository read error into NotFound or Internal.
func lookupErr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(message)
	}
	return apperror.Internal(err)
}

// raceErr maps a conditional write that touched no rows to Conflict.
func raceErr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Conflict(message)
	}
	return apperror.Internal(err)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// parseDayRange reads inclusive yyyy-mm-dd bounds. The upper bound covers the
// whole day.
func parseDayRange(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time

	if from = strings.TrimSpace(from); from != "" {
		t, err := time.ParseInLocation(dayLayout, from, time.UTC)
		if err != nil {
			return nil, nil, apperror.InvalidRequest("from must be a date like 2024-01-31")
		}
		start = &t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, err := time.ParseInLocation(dayLayout, to, time.UTC)
		if err != nil {
			return nil, nil, apperror.InvalidRequest("to must be a date like 2024-01-31")
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		end = &t
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, apperror.InvalidRequest("to must not be before from")
	}

	return start, end, nil
}

// parseIDQuery reads an optional numeric search term. ok is false for text
// that cannot be an id.
func parseIDQuery(q string) (id uint, ok bool) {
	q = strings.TrimPrefix(strings.TrimSpace(q), "#")
	if q == "" {
		return 0, true
	}
	n, err := strconv.ParseUint(q, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func strPtr(s string) *string {
	return &s
}
