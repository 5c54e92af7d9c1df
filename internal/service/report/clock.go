package report

import (
	"time"
)

// Clock supplies zone-aware time so reference numbers and submission dates
// are deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewClock returns a Clock pinned to the given IANA timezone.
func NewClock(timezone string) (Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return systemClock{loc: loc}, nil
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}
