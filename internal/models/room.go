package models

// Room is a rentable room inside a PG property.
type Room struct {
	ID         string `json:"id" sheet:"id" yaml:"id"`
	RoomNumber string `json:"roomNumber" sheet:"roomNumber" yaml:"roomNumber"`

	// Type is the sharing type: "single", "double", "triple" or "dorm".
	Type string `json:"type" sheet:"type" yaml:"type"`

	Capacity  int `json:"capacity" sheet:"capacity" yaml:"capacity"`
	Occupancy int `json:"occupancy" sheet:"occupancy" yaml:"occupancy"`
	Floor     int `json:"floor" sheet:"floor" yaml:"floor"`

	// Rent is the monthly rent per bed.
	Rent float64 `json:"rent" sheet:"rent" yaml:"rent"`

	// Status is "available", "occupied" or "maintenance".
	Status string `json:"status" sheet:"status" yaml:"status"`

	Facilities []string `json:"facilities" sheet:"facilities" yaml:"facilities"`
	PGID       string   `json:"pgId" sheet:"pgId" yaml:"pgId"`
}

func (r *Room) GetID() string   { return r.ID }
func (r *Room) SetID(id string) { r.ID = id }

// Vacancies returns the number of free beds.
func (r *Room) Vacancies() int {
	if r.Occupancy >= r.Capacity {
		return 0
	}
	return r.Capacity - r.Occupancy
}
