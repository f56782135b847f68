package trial

import "time"

// Summary holds the dashboard counts for one consistent instant.
type Summary struct {
	Active        int        `json:"active"`
	ExpiringSoon  int        `json:"expiringSoon"`
	Expired       int        `json:"expired"`
	TotalCost     float64    `json:"totalCost"`
	SoonestExpiry *time.Time `json:"soonestExpiry"`
}

// Summarize folds a snapshot of records into dashboard counts. Every record
// is classified against the same now, so the counts agree with each other.
// TotalCost projects spend over active and expiring trials only; expired and
// cancelled ones no longer bill. SoonestExpiry is the earliest expiry among
// active-or-expiring records, first-encountered winning ties.
func Summarize(records []Trial, now time.Time) Summary {
	var s Summary

	for _, t := range records {
		switch DeriveStatus(t, now) {
		case StatusActive:
			s.Active++
		case StatusExpiring:
			s.ExpiringSoon++
		case StatusExpired:
			s.Expired++
			continue
		default:
			continue
		}

		s.TotalCost += t.Cost
		if s.SoonestExpiry == nil || t.ExpiresAt.Before(*s.SoonestExpiry) {
			expiry := t.ExpiresAt
			s.SoonestExpiry = &expiry
		}
	}

	return s
}
