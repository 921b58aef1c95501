package api

import "encoding/json"

type ListRequest struct{}

// ListResponse carries the records of a sheet. When Source is not "live" the
// sheet could not be read and StaleReason says why.
type ListResponse[T any] struct {
	Items       []T    `json:"items"`
	Source      string `json:"source"`
	StaleReason string `json:"stale_reason,omitempty"`
}

type GetRequest struct {
	ID string `json:"id"`
}

type AddRequest[T any] struct {
	Item T `json:"item"`
}

// UpdateRequest merges Patch, a JSON object of changed fields, onto the
// stored record. The id field of the patch is ignored.
type UpdateRequest struct {
	ID    string          `json:"id"`
	Patch json.RawMessage `json:"patch"`
}

// ItemResponse is returned by Get, Add and Update.
type ItemResponse[T any] struct {
	Item T `json:"item"`
}

type DeleteRequest struct {
	ID string `json:"id"`
}

type DeleteResponse struct{}

type ReplaceRequest[T any] struct {
	Items []T `json:"items"`
}

type ReplaceResponse struct {
	Count int `json:"count"`
}

type InitializeSheetsRequest struct {
	// Seed fills empty sheets with the bundled demo data.
	Seed bool `json:"seed"`
}

type InitializeSheetsResponse struct {
	Created  []string       `json:"created"`
	Existing []string       `json:"existing"`
	Seeded   map[string]int `json:"seeded,omitempty"`
}

type ResetSheetRequest struct {
	Sheet string `json:"sheet"`
}

type ResetSheetResponse struct{}

type CheckAccessRequest struct{}

type CheckAccessResponse struct {
	OK      bool     `json:"ok"`
	Title   string   `json:"title,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type PaymentSummaryRequest struct {
	// AsOf is the ISO date (YYYY-MM-DD) pending payments are compared
	// against. Defaults to today.
	AsOf string `json:"as_of,omitempty"`
}

type UserDues struct {
	UserID      string  `json:"user_id"`
	Paid        float64 `json:"paid"`
	Pending     float64 `json:"pending"`
	Overdue     float64 `json:"overdue"`
	Outstanding float64 `json:"outstanding"`
	NextDue     string  `json:"next_due,omitempty"`
}

type PaymentSummaryResponse struct {
	Users        []UserDues `json:"users"`
	TotalPaid    float64    `json:"total_paid"`
	TotalPending float64    `json:"total_pending"`
	TotalOverdue float64    `json:"total_overdue"`
	Skipped      int        `json:"skipped"`
	Source       string     `json:"source"`
	StaleReason  string     `json:"stale_reason,omitempty"`
}

type OccupancyRequest struct {
	// PGID limits the summary to one property.
	PGID string `json:"pg_id,omitempty"`
}

type OccupancyResponse struct {
	Rooms       int            `json:"rooms"`
	Beds        int            `json:"beds"`
	Occupied    int            `json:"occupied"`
	Vacant      int            `json:"vacant"`
	Rate        float64        `json:"rate"`
	ByStatus    map[string]int `json:"by_status"`
	Source      string         `json:"source"`
	StaleReason string         `json:"stale_reason,omitempty"`
}
