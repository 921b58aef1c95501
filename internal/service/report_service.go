package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/pgstay/internal/reports"
	"github.com/mmynk/pgstay/internal/repository"
	"github.com/mmynk/pgstay/pkg/api"
)

// ReportService serves the dashboard's overview figures.
type ReportService struct {
	repo *repository.Repository
	now  func() time.Time
}

// NewReportService creates a new ReportService.
func NewReportService(repo *repository.Repository) *ReportService {
	return &ReportService{repo: repo, now: time.Now}
}

// PaymentSummary returns paid, pending and overdue amounts per user.
func (s *ReportService) PaymentSummary(ctx context.Context, req *connect.Request[api.PaymentSummaryRequest]) (*connect.Response[api.PaymentSummaryResponse], error) {
	asOf := s.now()
	if req.Msg.AsOf != "" {
		t, err := time.Parse(time.DateOnly, req.Msg.AsOf)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: as_of: %v", errInvalidArgument, err))
		}
		asOf = t
	}

	res := s.repo.Payments.Fetch(ctx)
	summary := reports.CalculateDues(res.Items, asOf)

	resp := &api.PaymentSummaryResponse{
		Users:        make([]api.UserDues, len(summary.Users)),
		TotalPaid:    summary.TotalPaid,
		TotalPending: summary.TotalPending,
		TotalOverdue: summary.TotalOverdue,
		Skipped:      summary.Skipped,
		Source:       string(res.Source),
		StaleReason:  staleReason(res.Err),
	}
	for i, d := range summary.Users {
		resp.Users[i] = api.UserDues{
			UserID:      d.UserID,
			Paid:        d.Paid,
			Pending:     d.Pending,
			Overdue:     d.Overdue,
			Outstanding: d.Outstanding(),
			NextDue:     d.NextDue,
		}
	}
	return connect.NewResponse(resp), nil
}

// Occupancy returns bed usage across rooms, optionally for one property.
func (s *ReportService) Occupancy(ctx context.Context, req *connect.Request[api.OccupancyRequest]) (*connect.Response[api.OccupancyResponse], error) {
	res := s.repo.Rooms.Fetch(ctx)
	occ := reports.CalculateOccupancy(res.Items, req.Msg.PGID)

	return connect.NewResponse(&api.OccupancyResponse{
		Rooms:       occ.Rooms,
		Beds:        occ.Beds,
		Occupied:    occ.Occupied,
		Vacant:      occ.Vacant,
		Rate:        occ.Rate(),
		ByStatus:    occ.ByStatus,
		Source:      string(res.Source),
		StaleReason: staleReason(res.Err),
	}), nil
}

func staleReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewReportServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewReportServiceHandler(svc *ReportService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	procedure := func(method string) string { return api.Procedure(api.ReportService, method) }

	handlers := map[string]http.Handler{
		procedure(api.MethodPaymentSummary): connect.NewUnaryHandler(
			procedure(api.MethodPaymentSummary), svc.PaymentSummary, opts...),
		procedure(api.MethodOccupancy): connect.NewUnaryHandler(
			procedure(api.MethodOccupancy), svc.Occupancy, opts...),
	}
	return api.ServicePath(api.ReportService), dispatch(handlers)
}
