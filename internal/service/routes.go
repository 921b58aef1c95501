package service

import (
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/pgstay/internal/bootstrap"
	"github.com/mmynk/pgstay/internal/repository"
	"github.com/mmynk/pgstay/pkg/api"
)

// Register mounts every entity service, the admin and report services and
// /healthz on mux. opts apply to every Connect handler.
func Register(mux *http.ServeMux, repo *repository.Repository, boot *bootstrap.Bootstrapper, opts ...connect.HandlerOption) {
	mux.Handle(NewEntityServiceHandler(NewEntityService(api.UserService, repo.Users), opts...))
	mux.Handle(NewEntityServiceHandler(NewEntityService(api.RoomService, repo.Rooms), opts...))
	mux.Handle(NewEntityServiceHandler(NewEntityService(api.MealService, repo.Meals), opts...))
	mux.Handle(NewEntityServiceHandler(NewEntityService(api.MealResponseService, repo.MealResponses), opts...))
	mux.Handle(NewEntityServiceHandler(NewEntityService(api.NotificationService, repo.Notifications), opts...))
	mux.Handle(NewEntityServiceHandler(NewEntityService(api.PaymentService, repo.Payments), opts...))
	mux.Handle(NewEntityServiceHandler(NewEntityService(api.PGPropertyService, repo.PGProperties), opts...))
	mux.Handle(NewEntityServiceHandler(NewEntityService(api.UserRegistrationService, repo.UserRegistrations), opts...))
	mux.Handle(NewAdminServiceHandler(NewAdminService(boot), opts...))
	mux.Handle(NewReportServiceHandler(NewReportService(repo), opts...))
	mux.Handle("GET /healthz", HealthHandler(boot))
}

// healthResponse is the body of /healthz. The endpoint is unauthenticated,
// so spreadsheet details stay behind AdminService.CheckAccess.
type healthResponse struct {
	OK bool `json:"ok"`
}

// HealthHandler answers 200 when the spreadsheet is reachable and 503
// otherwise.
func HealthHandler(boot *bootstrap.Bootstrapper) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{OK: boot.CheckAccess(r.Context()).OK}

		w.Header().Set("Content-Type", "application/json")
		if !resp.OK {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
}
