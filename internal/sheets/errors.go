package sheets

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the Sheets API.
type APIError struct {
	// Op is the API method, e.g. "values.get".
	Op string

	// Status is the HTTP status code.
	Status int

	// Code is Google's status string ("PERMISSION_DENIED", "NOT_FOUND", ...),
	// empty when the body was not a Google error document.
	Code string

	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("sheets %s: %d %s: %s", e.Op, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("sheets %s: %d %s", e.Op, e.Status, e.Message)
}

// googleError is the error document returned by Google APIs.
type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func newAPIError(op string, status int, body []byte) *APIError {
	apiErr := &APIError{Op: op, Status: status, Message: http.StatusText(status)}

	var gerr googleError
	if err := json.Unmarshal(body, &gerr); err == nil && gerr.Error.Message != "" {
		apiErr.Code = gerr.Error.Status
		apiErr.Message = gerr.Error.Message
	}
	return apiErr
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether the spreadsheet or range does not exist.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether the API key was rejected or lacks access to
// the spreadsheet.
func IsUnauthorized(err error) bool {
	s := statusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// IsRateLimited reports whether the request hit the Sheets quota.
func IsRateLimited(err error) bool {
	return statusOf(err) == http.StatusTooManyRequests
}

// IsTransient reports whether retrying the same request may succeed.
func IsTransient(err error) bool {
	s := statusOf(err)
	return s == http.StatusTooManyRequests || s >= http.StatusInternalServerError
}
