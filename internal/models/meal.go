package models

// Meal is one planned meal for a property on a given date.
type Meal struct {
	ID   string `json:"id" sheet:"id" yaml:"id"`
	Date string `json:"date" sheet:"date" yaml:"date"`

	// MealType is "breakfast", "lunch", "snacks" or "dinner".
	MealType string `json:"mealType" sheet:"mealType" yaml:"mealType"`

	// Items is the menu.
	Items []string `json:"items" sheet:"items" yaml:"items"`

	PGID string `json:"pgId" sheet:"pgId" yaml:"pgId"`

	// CutoffTime is the latest time (HH:MM) a guest may respond.
	CutoffTime string `json:"cutoffTime" sheet:"cutoffTime" yaml:"cutoffTime"`
}

func (m *Meal) GetID() string   { return m.ID }
func (m *Meal) SetID(id string) { m.ID = id }

// MealResponse records whether a guest will attend a meal.
type MealResponse struct {
	ID          string `json:"id" sheet:"id" yaml:"id"`
	MealID      string `json:"mealId" sheet:"mealId" yaml:"mealId"`
	UserID      string `json:"userId" sheet:"userId" yaml:"userId"`
	Attending   bool   `json:"attending" sheet:"attending" yaml:"attending"`
	RespondedAt string `json:"respondedAt" sheet:"respondedAt" yaml:"respondedAt"`
}

func (m *MealResponse) GetID() string   { return m.ID }
func (m *MealResponse) SetID(id string) { m.ID = id }
