package models

// PGProperty is a paying-guest building managed through the dashboard.
type PGProperty struct {
	ID   string `json:"id" sheet:"id" yaml:"id"`
	Name string `json:"name" sheet:"name" yaml:"name"`

	// Address is free text and may contain commas. It is never split.
	Address string `json:"address" sheet:"address" yaml:"address"`
	City    string `json:"city" sheet:"city" yaml:"city"`

	TotalRooms    int      `json:"totalRooms" sheet:"totalRooms" yaml:"totalRooms"`
	Facilities    []string `json:"facilities" sheet:"facilities" yaml:"facilities"`
	OwnerID       string   `json:"ownerId" sheet:"ownerId" yaml:"ownerId"`
	ContactNumber string   `json:"contactNumber" sheet:"contactNumber" yaml:"contactNumber"`
	IsActive      bool     `json:"isActive" sheet:"isActive" yaml:"isActive"`
}

func (p *PGProperty) GetID() string   { return p.ID }
func (p *PGProperty) SetID(id string) { p.ID = id }
