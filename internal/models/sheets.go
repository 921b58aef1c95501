package models

// Sheet names. Each is the tab title inside the spreadsheet.
const (
	SheetUsers            = "Users"
	SheetRooms            = "Rooms"
	SheetMeals            = "Meals"
	SheetMealResponses    = "MealResponses"
	SheetNotifications    = "Notifications"
	SheetPayments         = "Payments"
	SheetPGProperties     = "PGProperties"
	SheetUserRegistration = "UserRegistration"
)

// SheetNames lists every sheet in bootstrap order.
var SheetNames = []string{
	SheetUsers,
	SheetRooms,
	SheetMeals,
	SheetMealResponses,
	SheetNotifications,
	SheetPayments,
	SheetPGProperties,
	SheetUserRegistration,
}
