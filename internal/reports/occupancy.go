package reports

import "github.com/mmynk/pgstay/internal/models"

// Occupancy summarizes beds across rooms.
type Occupancy struct {
	Rooms    int
	Beds     int
	Occupied int
	Vacant   int

	// ByStatus counts rooms per status ("available", "occupied", ...).
	ByStatus map[string]int
}

// Rate is the share of occupied beds, 0 when there are no beds.
func (o Occupancy) Rate() float64 {
	if o.Beds == 0 {
		return 0
	}
	return float64(o.Occupied) / float64(o.Beds)
}

// CalculateOccupancy sums capacity and occupancy of the rooms of one PG
// property, or of every room when pgID is empty. Occupancy above capacity is
// capped so a room never reports negative vacancies.
func CalculateOccupancy(rooms []models.Room, pgID string) Occupancy {
	occ := Occupancy{ByStatus: make(map[string]int)}
	for _, r := range rooms {
		if pgID != "" && r.PGID != pgID {
			continue
		}
		occ.Rooms++
		occ.Beds += r.Capacity
		occ.Occupied += r.Capacity - r.Vacancies()
		occ.Vacant += r.Vacancies()
		if r.Status != "" {
			occ.ByStatus[r.Status]++
		}
	}
	return occ
}
