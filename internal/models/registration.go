package models

// UserRegistration is a pending request from a prospective guest.
type UserRegistration struct {
	ID             string `json:"id" sheet:"id" yaml:"id"`
	Name           string `json:"name" sheet:"name" yaml:"name"`
	Email          string `json:"email" sheet:"email" yaml:"email"`
	Phone          string `json:"phone" sheet:"phone" yaml:"phone"`
	PGID           string `json:"pgId" sheet:"pgId" yaml:"pgId"`
	RoomPreference string `json:"roomPreference" sheet:"roomPreference" yaml:"roomPreference"`

	// Status is "pending", "approved" or "rejected".
	Status      string `json:"status" sheet:"status" yaml:"status"`
	SubmittedAt string `json:"submittedAt" sheet:"submittedAt" yaml:"submittedAt"`
}

func (r *UserRegistration) GetID() string   { return r.ID }
func (r *UserRegistration) SetID(id string) { r.ID = id }
