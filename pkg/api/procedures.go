package api

// PackageName prefixes every service name.
const PackageName = "pgstay.v1"

// Service names, one per sheet plus the admin service.
const (
	UserService             = "UserService"
	RoomService             = "RoomService"
	MealService             = "MealService"
	MealResponseService     = "MealResponseService"
	NotificationService     = "NotificationService"
	PaymentService          = "PaymentService"
	PGPropertyService       = "PGPropertyService"
	UserRegistrationService = "UserRegistrationService"
	AdminService            = "AdminService"
	ReportService           = "ReportService"
)

// Entity service methods.
const (
	MethodList    = "List"
	MethodGet     = "Get"
	MethodAdd     = "Add"
	MethodUpdate  = "Update"
	MethodDelete  = "Delete"
	MethodReplace = "Replace"
)

// Admin service methods.
const (
	MethodInitializeSheets = "InitializeSheets"
	MethodResetSheet       = "ResetSheet"
	MethodCheckAccess      = "CheckAccess"
)

// ServicePath is the URL path prefix under which a service is mounted.
func ServicePath(service string) string {
	return "/" + PackageName + "." + service + "/"
}

// Procedure is the full procedure name, e.g. "/pgstay.v1.RoomService/List".
func Procedure(service, method string) string {
	return ServicePath(service) + method
}

// Report service methods.
const (
	MethodPaymentSummary = "PaymentSummary"
	MethodOccupancy      = "Occupancy"
)
