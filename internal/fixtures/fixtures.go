// Package fixtures bundles the demo data used to seed an empty spreadsheet and
// to answer room reads when nothing better is available.
package fixtures

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/pgstay/internal/models"
)

//go:embed data/*.yaml
var data embed.FS

// Set holds one slice per entity.
type Set struct {
	Users            []models.User
	Rooms            []models.Room
	Meals            []models.Meal
	MealResponses    []models.MealResponse
	Notifications    []models.Notification
	Payments         []models.Payment
	PGProperties     []models.PGProperty
	UserRegistration []models.UserRegistration
}

// All decodes every fixture file.
func All() (*Set, error) {
	set := &Set{}
	files := []struct {
		name string
		dst  any
	}{
		{"users.yaml", &set.Users},
		{"rooms.yaml", &set.Rooms},
		{"meals.yaml", &set.Meals},
		{"meal_responses.yaml", &set.MealResponses},
		{"notifications.yaml", &set.Notifications},
		{"payments.yaml", &set.Payments},
		{"properties.yaml", &set.PGProperties},
		{"registrations.yaml", &set.UserRegistration},
	}
	for _, f := range files {
		if err := load(f.name, f.dst); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Rooms returns the bundled room list.
func Rooms() ([]models.Room, error) {
	var rooms []models.Room
	if err := load("rooms.yaml", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func load(name string, dst any) error {
	raw, err := data.ReadFile("data/" + name)
	if err != nil {
		return fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", name, err)
	}
	return nil
}
