package api

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// EntityClient calls one entity service.
type EntityClient[T any] struct {
	list    *connect.Client[ListRequest, ListResponse[T]]
	get     *connect.Client[GetRequest, ItemResponse[T]]
	add     *connect.Client[AddRequest[T], ItemResponse[T]]
	update  *connect.Client[UpdateRequest, ItemResponse[T]]
	delete  *connect.Client[DeleteRequest, DeleteResponse]
	replace *connect.Client[ReplaceRequest[T], ReplaceResponse]
}

// NewEntityClient constructs a client for service at baseURL
// (e.g. "http://localhost:8080").
func NewEntityClient[T any](httpClient connect.HTTPClient, baseURL, service string, opts ...connect.ClientOption) *EntityClient[T] {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	url := func(method string) string { return baseURL + Procedure(service, method) }

	return &EntityClient[T]{
		list:    connect.NewClient[ListRequest, ListResponse[T]](httpClient, url(MethodList), opts...),
		get:     connect.NewClient[GetRequest, ItemResponse[T]](httpClient, url(MethodGet), opts...),
		add:     connect.NewClient[AddRequest[T], ItemResponse[T]](httpClient, url(MethodAdd), opts...),
		update:  connect.NewClient[UpdateRequest, ItemResponse[T]](httpClient, url(MethodUpdate), opts...),
		delete:  connect.NewClient[DeleteRequest, DeleteResponse](httpClient, url(MethodDelete), opts...),
		replace: connect.NewClient[ReplaceRequest[T], ReplaceResponse](httpClient, url(MethodReplace), opts...),
	}
}

func (c *EntityClient[T]) List(ctx context.Context, req *connect.Request[ListRequest]) (*connect.Response[ListResponse[T]], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *EntityClient[T]) Get(ctx context.Context, req *connect.Request[GetRequest]) (*connect.Response[ItemResponse[T]], error) {
	return c.get.CallUnary(ctx, req)
}

func (c *EntityClient[T]) Add(ctx context.Context, req *connect.Request[AddRequest[T]]) (*connect.Response[ItemResponse[T]], error) {
	return c.add.CallUnary(ctx, req)
}

func (c *EntityClient[T]) Update(ctx context.Context, req *connect.Request[UpdateRequest]) (*connect.Response[ItemResponse[T]], error) {
	return c.update.CallUnary(ctx, req)
}

func (c *EntityClient[T]) Delete(ctx context.Context, req *connect.Request[DeleteRequest]) (*connect.Response[DeleteResponse], error) {
	return c.delete.CallUnary(ctx, req)
}

func (c *EntityClient[T]) Replace(ctx context.Context, req *connect.Request[ReplaceRequest[T]]) (*connect.Response[ReplaceResponse], error) {
	return c.replace.CallUnary(ctx, req)
}

// AdminClient calls the admin service.
type AdminClient struct {
	initializeSheets *connect.Client[InitializeSheetsRequest, InitializeSheetsResponse]
	resetSheet       *connect.Client[ResetSheetRequest, ResetSheetResponse]
	checkAccess      *connect.Client[CheckAccessRequest, CheckAccessResponse]
}

// NewAdminClient constructs a client for the admin service at baseURL.
func NewAdminClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AdminClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	url := func(method string) string { return baseURL + Procedure(AdminService, method) }

	return &AdminClient{
		initializeSheets: connect.NewClient[InitializeSheetsRequest, InitializeSheetsResponse](
			httpClient, url(MethodInitializeSheets), opts...),
		resetSheet: connect.NewClient[ResetSheetRequest, ResetSheetResponse](
			httpClient, url(MethodResetSheet), opts...),
		checkAccess: connect.NewClient[CheckAccessRequest, CheckAccessResponse](
			httpClient, url(MethodCheckAccess), opts...),
	}
}

func (c *AdminClient) InitializeSheets(ctx context.Context, req *connect.Request[InitializeSheetsRequest]) (*connect.Response[InitializeSheetsResponse], error) {
	return c.initializeSheets.CallUnary(ctx, req)
}

func (c *AdminClient) ResetSheet(ctx context.Context, req *connect.Request[ResetSheetRequest]) (*connect.Response[ResetSheetResponse], error) {
	return c.resetSheet.CallUnary(ctx, req)
}

func (c *AdminClient) CheckAccess(ctx context.Context, req *connect.Request[CheckAccessRequest]) (*connect.Response[CheckAccessResponse], error) {
	return c.checkAccess.CallUnary(ctx, req)
}

// ReportClient calls the report service.
type ReportClient struct {
	paymentSummary *connect.Client[PaymentSummaryRequest, PaymentSummaryResponse]
	occupancy      *connect.Client[OccupancyRequest, OccupancyResponse]
}

// NewReportClient constructs a client for the report service at baseURL.
func NewReportClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ReportClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	url := func(method string) string { return baseURL + Procedure(ReportService, method) }

	return &ReportClient{
		paymentSummary: connect.NewClient[PaymentSummaryRequest, PaymentSummaryResponse](
			httpClient, url(MethodPaymentSummary), opts...),
		occupancy: connect.NewClient[OccupancyRequest, OccupancyResponse](
			httpClient, url(MethodOccupancy), opts...),
	}
}

func (c *ReportClient) PaymentSummary(ctx context.Context, req *connect.Request[PaymentSummaryRequest]) (*connect.Response[PaymentSummaryResponse], error) {
	return c.paymentSummary.CallUnary(ctx, req)
}

func (c *ReportClient) Occupancy(ctx context.Context, req *connect.Request[OccupancyRequest]) (*connect.Response[OccupancyResponse], error) {
	return c.occupancy.CallUnary(ctx, req)
}
