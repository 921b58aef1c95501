package sheets

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type property struct {
	ID         string   `sheet:"id"`
	Name       string   `sheet:"name"`
	Address    string   `sheet:"address"`
	TotalRooms int      `sheet:"totalRooms"`
	Rent       float64  `sheet:"rent"`
	Facilities []string `sheet:"facilities"`
	IsActive   bool     `sheet:"isActive"`
	Internal   string
	Skipped    string `sheet:"-"`
}

type status string

type withNamedString struct {
	ID     string `sheet:"id"`
	Status status `sheet:"status"`
}

func TestSchemaOf(t *testing.T) {
	schema, err := SchemaOf[property]()
	if err != nil {
		t.Fatalf("SchemaOf failed: %v", err)
	}

	want := []Column{
		{"id", KindString},
		{"name", KindString},
		{"address", KindString},
		{"totalRooms", KindNumber},
		{"rent", KindNumber},
		{"facilities", KindList},
		{"isActive", KindBool},
	}
	if diff := cmp.Diff(want, schema.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"id", "name", "address", "totalRooms", "rent", "facilities", "isActive"}, schema.Headers()); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaOfRejectsUnsupportedTypes(t *testing.T) {
	type bad struct {
		ID    string         `sheet:"id"`
		Extra map[string]int `sheet:"extra"`
	}
	if _, err := SchemaOf[bad](); err == nil {
		t.Error("expected error for map field, got nil")
	}

	type dup struct {
		A string `sheet:"id"`
		B string `sheet:"id"`
	}
	if _, err := SchemaOf[dup](); err == nil {
		t.Error("expected error for duplicate column, got nil")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	schema := MustSchemaOf[property]()
	original := property{
		ID:         "p1",
		Name:       "Sunrise PG",
		Address:    "12 Main, Springfield",
		TotalRooms: 24,
		Rent:       6500.5,
		Facilities: []string{"Wi-Fi", "Parking"},
		IsActive:   true,
		Internal:   "not stored",
	}

	rec, err := Marshal(&original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if _, ok := rec["Internal"]; ok {
		t.Error("untagged field should not be marshalled")
	}

	// Through the cell layer and back, as a sheet would store it.
	row := Encode(schema.Headers(), rec)
	decoded := Decode(schema.Headers(), row, schema)

	var got property
	if err := Unmarshal(decoded, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	original.Internal = ""
	if diff := cmp.Diff(original, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.Address != "12 Main, Springfield" {
		t.Errorf("address was altered: %q", got.Address)
	}
}

func TestUnmarshal(t *testing.T) {
	t.Run("strings are coerced into typed fields", func(t *testing.T) {
		var got property
		err := Unmarshal(Record{"totalRooms": "12", "isActive": "false", "facilities": "Gym, Laundry", "name": 7.0}, &got)
		if err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		want := property{Name: "7", TotalRooms: 12, Facilities: []string{"Gym", "Laundry"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("bad number reports the column", func(t *testing.T) {
		var got property
		err := Unmarshal(Record{"totalRooms": "many"}, &got)
		var fieldErr *FieldError
		if !errors.As(err, &fieldErr) {
			t.Fatalf("expected FieldError, got %v", err)
		}
		if fieldErr.Column != "totalRooms" {
			t.Errorf("column: got %q, want %q", fieldErr.Column, "totalRooms")
		}
	})

	t.Run("fractional value into int field", func(t *testing.T) {
		var got property
		if err := Unmarshal(Record{"totalRooms": 2.5}, &got); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("named string types", func(t *testing.T) {
		var got withNamedString
		if err := Unmarshal(Record{"id": "x", "status": "paid"}, &got); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if got.Status != "paid" {
			t.Errorf("status: got %q, want %q", got.Status, "paid")
		}
	})

	t.Run("requires a pointer", func(t *testing.T) {
		if err := Unmarshal(Record{}, property{}); err == nil {
			t.Error("expected error for non-pointer, got nil")
		}
	})
}
