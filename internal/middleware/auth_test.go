package middleware

import (
	"testing"

	"github.com/mmynk/pgstay/internal/models"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		procedure string
		role      models.Role
		want      bool
	}{
		{"/pgstay.v1.RoomService/List", models.RoleGuest, true},
		{"/pgstay.v1.RoomService/Get", models.RoleGuest, true},
		{"/pgstay.v1.RoomService/Add", models.RoleGuest, false},
		{"/pgstay.v1.MealResponseService/Add", models.RoleGuest, false},
		{"/pgstay.v1.RoomService/Add", models.RoleWarden, true},
		{"/pgstay.v1.RoomService/Update", models.RolePGAdmin, true},
		{"/pgstay.v1.RoomService/Delete", models.RoleWarden, true},
		{"/pgstay.v1.RoomService/Replace", models.RolePGAdmin, false},
		{"/pgstay.v1.RoomService/Replace", models.RoleSuperAdmin, true},
		{"/pgstay.v1.AdminService/CheckAccess", models.RoleWarden, false},
		{"/pgstay.v1.AdminService/ResetSheet", models.RoleSuperAdmin, true},
		{"/pgstay.v1.ReportService/PaymentSummary", models.RoleGuest, false},
		{"/pgstay.v1.ReportService/Occupancy", models.RoleWarden, true},
		{"/pgstay.v1.RoomService/List", models.Role(""), false},
		{"/pgstay.v1.RoomService/List", models.Role("landlord"), false},
	}

	for _, tt := range tests {
		t.Run(tt.procedure+"/"+string(tt.role), func(t *testing.T) {
			if got := Allowed(tt.procedure, tt.role); got != tt.want {
				t.Errorf("Allowed(%q, %q) = %v, want %v", tt.procedure, tt.role, got, tt.want)
			}
		})
	}
}
