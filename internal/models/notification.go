package models

// Notification is a message broadcast to one or more users.
type Notification struct {
	ID      string `json:"id" sheet:"id" yaml:"id"`
	Title   string `json:"title" sheet:"title" yaml:"title"`
	Message string `json:"message" sheet:"message" yaml:"message"`

	// Type is "info", "alert", "payment" or "maintenance".
	Type string `json:"type" sheet:"type" yaml:"type"`

	// Recipients holds user IDs, or the single value "all".
	Recipients []string `json:"recipients" sheet:"recipients" yaml:"recipients"`

	SenderID  string `json:"senderId" sheet:"senderId" yaml:"senderId"`
	CreatedAt string `json:"createdAt" sheet:"createdAt" yaml:"createdAt"`
	IsRead    bool   `json:"isRead" sheet:"isRead" yaml:"isRead"`
}

func (n *Notification) GetID() string   { return n.ID }
func (n *Notification) SetID(id string) { n.ID = id }
