package trial

import (
	"math"
	"time"
)

// DeriveStatus classifies a trial from its dates at the given instant.
// Cancelled is sticky: once written it wins over any date arithmetic.
// Otherwise the trial is expired when its expiry lies in the past, expiring
// within the notice window (boundary day inclusive), and active beyond it.
func DeriveStatus(t Trial, now time.Time) Status {
	if t.Status == StatusCancelled {
		return StatusCancelled
	}

	diffDays := wholeDays(t.ExpiresAt, now)
	switch {
	case diffDays < 0:
		return StatusExpired
	case diffDays <= t.NotifyDaysBefore:
		return StatusExpiring
	default:
		return StatusActive
	}
}

// wholeDays floors, so an expiry even one second in the past counts as day -1.
func wholeDays(expiry, now time.Time) int {
	return int(math.Floor(expiry.Sub(now).Hours() / 24))
}

func wholeHours(expiry, now time.Time) int {
	return int(math.Floor(expiry.Sub(now).Hours()))
}
