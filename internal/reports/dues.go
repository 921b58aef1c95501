// Package reports aggregates sheet data for the dashboard's overview cards.
package reports

import (
	"cmp"
	"slices"
	"time"

	"github.com/mmynk/pgstay/internal/models"
)

// Payment statuses.
const (
	StatusPaid    = "paid"
	StatusPending = "pending"
	StatusOverdue = "overdue"
)

// UserDues is the payment position of one user.
type UserDues struct {
	UserID  string
	Paid    float64 // Total of paid payments
	Pending float64 // Not yet due
	Overdue float64 // Past due date or marked overdue

	// NextDue is the earliest due date of a pending payment, empty if none.
	NextDue string
}

// Outstanding is what the user still has to pay.
func (d UserDues) Outstanding() float64 {
	return d.Pending + d.Overdue
}

// DuesSummary is the payment position of every user plus totals.
type DuesSummary struct {
	Users        []UserDues
	TotalPaid    float64
	TotalPending float64
	TotalOverdue float64

	// Skipped counts payments without a user or with an unknown status.
	Skipped int
}

// CalculateDues aggregates payments per user as of the given day.
//
// Algorithm:
// - paid payments add to Paid
// - overdue payments, and pending ones whose due date is before asOf, add to Overdue
// - other pending payments add to Pending; the earliest due date becomes NextDue
// - users are ordered by outstanding amount, largest first
func CalculateDues(payments []models.Payment, asOf time.Time) DuesSummary {
	today := asOf.Format(time.DateOnly)
	dues := make(map[string]*UserDues)
	var summary DuesSummary

	for _, p := range payments {
		// Skip payments without a user (can't attribute them)
		if p.UserID == "" {
			summary.Skipped++
			continue
		}

		d, exists := dues[p.UserID]
		if !exists {
			d = &UserDues{UserID: p.UserID}
		}

		switch p.Status {
		case StatusPaid:
			d.Paid += p.Amount
			summary.TotalPaid += p.Amount
		case StatusOverdue:
			d.Overdue += p.Amount
			summary.TotalOverdue += p.Amount
		case StatusPending:
			if pastDue(p.DueDate, today) {
				d.Overdue += p.Amount
				summary.TotalOverdue += p.Amount
				break
			}
			d.Pending += p.Amount
			summary.TotalPending += p.Amount
			if p.DueDate != "" && (d.NextDue == "" || p.DueDate < d.NextDue) {
				d.NextDue = p.DueDate
			}
		default:
			summary.Skipped++
			continue
		}
		dues[p.UserID] = d
	}

	summary.Users = make([]UserDues, 0, len(dues))
	for _, d := range dues {
		summary.Users = append(summary.Users, *d)
	}
	slices.SortFunc(summary.Users, func(a, b UserDues) int {
		if c := cmp.Compare(b.Outstanding(), a.Outstanding()); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return summary
}

// pastDue compares ISO dates. Dates that do not parse are never past due.
func pastDue(dueDate, today string) bool {
	if _, err := time.Parse(time.DateOnly, dueDate); err != nil {
		return false
	}
	return dueDate < today
}
