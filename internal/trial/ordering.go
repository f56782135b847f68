package trial

import (
	"sort"
	"time"
)

// Display priority: expiring trials need action now, expired ones may still
// be billing, active ones are safe for a while, cancelled ones are done.
var severityRank = map[Status]int{
	StatusExpiring:  0,
	StatusExpired:   1,
	StatusActive:    2,
	StatusCancelled: 3,
}

// OrderByUrgency returns the records in display priority: status severity,
// then whole hours until expiry ascending, then cost descending so the
// bigger financial risk surfaces first. The sort is stable, so records equal
// on all keys keep their input order. The input slice is not modified.
func OrderByUrgency(records []Trial, now time.Time) []Trial {
	out := make([]Trial, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		ri := severityRank[DeriveStatus(out[i], now)]
		rj := severityRank[DeriveStatus(out[j], now)]
		if ri != rj {
			return ri < rj
		}

		hi := wholeHours(out[i].ExpiresAt, now)
		hj := wholeHours(out[j].ExpiresAt, now)
		if hi != hj {
			return hi < hj
		}

		return out[i].Cost > out[j].Cost
	})

	return out
}
