package clock

import "time"

// Clock abstracts current time so expiry rules stay testable.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

// Now returns the current time.
func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant; used in tests.
type Fixed struct {
	Instant time.Time
}

// Now returns the configured instant.
func (f Fixed) Now() time.Time {
	return f.Instant
}
