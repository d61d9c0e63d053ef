package waitlist

import (
	"time"

	"github.com/Vijayesvar/PLEDG-MF/pkg/constants"
)

type InterestCounts struct {
	Borrower  int `json:"borrower"`
	Lender    int `json:"lender"`
	Both      int `json:"both"`
	Exploring int `json:"exploring"`
}

type StatusCounts struct {
	Pending   int `json:"pending"`
	Contacted int `json:"contacted"`
	Onboarded int `json:"onboarded"`
}

// Statistics summarises the collection. Records with an unknown interest type
// or status are counted in Total only.
type Statistics struct {
	Total      int            `json:"total"`
	ByInterest InterestCounts `json:"byInterest"`
	ByStatus   StatusCounts   `json:"byStatus"`
	Recent     int            `json:"recent"`
}

// ComputeStatistics counts a record as recent when it was submitted strictly
// after now minus seven days.
func ComputeStatistics(records []Record, now time.Time) Statistics {
	cutoff := now.Add(-constants.RecentSubmissionWindow)
	stats := Statistics{Total: len(records)}

	for _, r := range records {
		switch r.InterestType {
		case InterestBorrower:
			stats.ByInterest.Borrower++
		case InterestLender:
			stats.ByInterest.Lender++
		case InterestBoth:
			stats.ByInterest.Both++
		case InterestExploring:
			stats.ByInterest.Exploring++
		}

		switch r.Status {
		case StatusPending:
			stats.ByStatus.Pending++
		case StatusContacted:
			stats.ByStatus.Contacted++
		case StatusOnboarded:
			stats.ByStatus.Onboarded++
		}

		if r.SubmittedAt.After(cutoff) {
			stats.Recent++
		}
	}

	return stats
}
