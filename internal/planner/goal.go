package planner

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DeadlineLayout is the accepted calendar-date format for deadlines.
const DeadlineLayout = "2006-01-02"

// ErrFormat is matched by every *FormatError.
var ErrFormat = errors.New("planner: malformed input")

// FormatError reports a form field that could not be parsed into its type.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// GoalRequest is a parsed goal-planning submission.
type GoalRequest struct {
	Goal          string
	Deadline      time.Time
	FreeTimeHours float64
}

// ParseGoalRequest parses the raw form values. The goal text is taken as-is.
func ParseGoalRequest(goal, deadline, freeTime string) (GoalRequest, error) {
	deadline = strings.TrimSpace(deadline)
	parsedDeadline, err := time.Parse(DeadlineLayout, deadline)
	if err != nil {
		return GoalRequest{}, &FormatError{Field: "deadline", Value: deadline, Err: errors.New("expected a date in YYYY-MM-DD format")}
	}

	freeTime = strings.TrimSpace(freeTime)
	hours, err := strconv.ParseFloat(freeTime, 64)
	if err != nil {
		return GoalRequest{}, &FormatError{Field: "free_time", Value: freeTime, Err: errors.New("expected a number of hours")}
	}
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return GoalRequest{}, &FormatError{Field: "free_time", Value: freeTime, Err: errors.New("expected a finite number of hours")}
	}

	return GoalRequest{
		Goal:          goal,
		Deadline:      parsedDeadline,
		FreeTimeHours: hours,
	}, nil
}

// DeadlineString renders the deadline in the submitted layout.
func (r GoalRequest) DeadlineString() string {
	return r.Deadline.Format(DeadlineLayout)
}

// FreeTimeString renders the daily hours without trailing zeros.
func (r GoalRequest) FreeTimeString() string {
	return FormatHours(r.FreeTimeHours)
}

// DaysRemaining is the number of calendar days from now's date to the
// deadline. Past deadlines give negative values.
func (r GoalRequest) DaysRemaining(now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	deadline := time.Date(r.Deadline.Year(), r.Deadline.Month(), r.Deadline.Day(), 0, 0, 0, 0, time.UTC)
	return int(deadline.Sub(today).Hours() / 24)
}

func FormatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64)
}
