package models

// Payment is a rent or subscription charge owed by a user.
type Payment struct {
	ID     string  `json:"id" sheet:"id" yaml:"id"`
	UserID string  `json:"userId" sheet:"userId" yaml:"userId"`
	Amount float64 `json:"amount" sheet:"amount" yaml:"amount"`

	// Status is "pending", "paid" or "overdue".
	Status string `json:"status" sheet:"status" yaml:"status"`

	DueDate     string `json:"dueDate" sheet:"dueDate" yaml:"dueDate"`
	PaidDate    string `json:"paidDate" sheet:"paidDate" yaml:"paidDate"`
	Method      string `json:"method" sheet:"method" yaml:"method"`
	Description string `json:"description" sheet:"description" yaml:"description"`
}

func (p *Payment) GetID() string   { return p.ID }
func (p *Payment) SetID(id string) { p.ID = id }
