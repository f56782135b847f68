// Package clock abstracts wall-clock time so request handling can take one
// consistent "now" snapshot and tests can pin it.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}
