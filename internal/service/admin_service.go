package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/pgstay/internal/bootstrap"
	"github.com/mmynk/pgstay/pkg/api"
)

// AdminService exposes spreadsheet setup to super admins.
type AdminService struct {
	boot *bootstrap.Bootstrapper
}

// NewAdminService creates a new AdminService.
func NewAdminService(boot *bootstrap.Bootstrapper) *AdminService {
	return &AdminService{boot: boot}
}

// InitializeSheets writes missing header rows and optionally seeds demo data.
func (s *AdminService) InitializeSheets(ctx context.Context, req *connect.Request[api.InitializeSheetsRequest]) (*connect.Response[api.InitializeSheetsResponse], error) {
	slog.Info("InitializeSheets request received", "seed", req.Msg.Seed)

	report, err := s.boot.InitializeSheets(ctx, req.Msg.Seed)
	if err != nil {
		slog.Error("InitializeSheets failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.InitializeSheetsResponse{
		Created:  report.Created,
		Existing: report.Existing,
		Seeded:   report.Seeded,
	}), nil
}

// ResetSheet clears the data rows of one sheet.
func (s *AdminService) ResetSheet(ctx context.Context, req *connect.Request[api.ResetSheetRequest]) (*connect.Response[api.ResetSheetResponse], error) {
	slog.Info("ResetSheet request received", "sheet", req.Msg.Sheet)

	if req.Msg.Sheet == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: sheet is required", errInvalidArgument))
	}
	if err := s.boot.ResetSheet(ctx, req.Msg.Sheet); err != nil {
		slog.Error("ResetSheet failed", "sheet", req.Msg.Sheet, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ResetSheetResponse{}), nil
}

// CheckAccess reports whether the spreadsheet can be read. A failed check is
// a normal response, not an RPC error.
func (s *AdminService) CheckAccess(ctx context.Context, req *connect.Request[api.CheckAccessRequest]) (*connect.Response[api.CheckAccessResponse], error) {
	return connect.NewResponse(accessResponse(s.boot.CheckAccess(ctx))), nil
}

func accessResponse(report bootstrap.AccessReport) *api.CheckAccessResponse {
	resp := &api.CheckAccessResponse{OK: report.OK, Title: report.Title, Missing: report.Missing}
	if report.Err != nil {
		resp.Error = report.Err.Error()
	}
	return resp
}

// NewAdminServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewAdminServiceHandler(svc *AdminService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	procedure := func(method string) string { return api.Procedure(api.AdminService, method) }

	handlers := map[string]http.Handler{
		procedure(api.MethodInitializeSheets): connect.NewUnaryHandler(
			procedure(api.MethodInitializeSheets), svc.InitializeSheets, opts...),
		procedure(api.MethodResetSheet): connect.NewUnaryHandler(
			procedure(api.MethodResetSheet), svc.ResetSheet, opts...),
		procedure(api.MethodCheckAccess): connect.NewUnaryHandler(
			procedure(api.MethodCheckAccess), svc.CheckAccess, opts...),
	}
	return api.ServicePath(api.AdminService), dispatch(handlers)
}
