package services

import (
	"fmt"

	"testquest/models"
)

// ApplyBlurPolicy enforces first-come-first-served review ordering on a
// developer's project listing. Within each severity tier the earliest pending
// report stays visible and every later pending report is flagged as blurred.
// Approved, rejected and resolved reports are never blurred. The flag is
// informational listing metadata, not an access-control filter.
//
// Reports must be sorted oldest-first; the listing query guarantees that.
func ApplyBlurPolicy(reports []models.BugReport) {
	firstPending := make(map[models.Severity]string)
	for _, r := range reports {
		if r.Status != models.BugPending {
			continue
		}
		if _, seen := firstPending[r.Severity]; !seen {
			firstPending[r.Severity] = r.ID
		}
	}

	for i := range reports {
		r := &reports[i]
		if r.Status == models.BugPending && firstPending[r.Severity] != r.ID {
			r.IsBlurred = true
			r.BlurReason = fmt.Sprintf("Waiting for first %s bug to be reviewed", r.Severity)
		} else {
			r.IsBlurred = false
			r.BlurReason = ""
		}
	}
}
