package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/pgstay/internal/repository"
	"github.com/mmynk/pgstay/pkg/api"
)

// EntityService implements the List/Get/Add/Update/Delete/Replace service of
// one sheet.
type EntityService[T any] struct {
	name string
	coll *repository.Collection[T]
}

// NewEntityService creates the service called name (e.g. "RoomService") over
// coll.
func NewEntityService[T any](name string, coll *repository.Collection[T]) *EntityService[T] {
	return &EntityService[T]{name: name, coll: coll}
}

// List returns every record. It never fails: when the sheet cannot be read
// the response carries fallback data and a stale reason.
func (s *EntityService[T]) List(ctx context.Context, req *connect.Request[api.ListRequest]) (*connect.Response[api.ListResponse[T]], error) {
	res := s.coll.Fetch(ctx)

	resp := &api.ListResponse[T]{Items: res.Items, Source: string(res.Source), StaleReason: staleReason(res.Err)}
	if res.Err != nil {
		slog.Warn("Serving stale data", "sheet", s.coll.Sheet(), "source", res.Source)
	}
	return connect.NewResponse(resp), nil
}

// Get returns one record by ID.
func (s *EntityService[T]) Get(ctx context.Context, req *connect.Request[api.GetRequest]) (*connect.Response[api.ItemResponse[T]], error) {
	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: id is required", errInvalidArgument))
	}

	item, err := s.coll.Get(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ItemResponse[T]{Item: item}), nil
}

// Add appends a record. An empty ID is replaced by a new UUID.
func (s *EntityService[T]) Add(ctx context.Context, req *connect.Request[api.AddRequest[T]]) (*connect.Response[api.ItemResponse[T]], error) {
	slog.Info("Add request received", "sheet", s.coll.Sheet())

	item, err := s.coll.Add(ctx, req.Msg.Item)
	if err != nil {
		slog.Error("Add failed", "sheet", s.coll.Sheet(), "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ItemResponse[T]{Item: item}), nil
}

// Update merges a JSON patch onto the stored record.
func (s *EntityService[T]) Update(ctx context.Context, req *connect.Request[api.UpdateRequest]) (*connect.Response[api.ItemResponse[T]], error) {
	slog.Info("Update request received", "sheet", s.coll.Sheet(), "id", req.Msg.ID)

	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: id is required", errInvalidArgument))
	}
	patch := bytes.TrimSpace(req.Msg.Patch)
	if len(patch) == 0 || patch[0] != '{' {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: patch must be a JSON object", errInvalidArgument))
	}

	item, err := s.coll.Update(ctx, req.Msg.ID, func(item *T) error {
		if err := json.Unmarshal(patch, item); err != nil {
			return fmt.Errorf("%w: %v", errInvalidArgument, err)
		}
		return nil
	})
	if err != nil {
		slog.Error("Update failed", "sheet", s.coll.Sheet(), "id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ItemResponse[T]{Item: item}), nil
}

// Delete removes every record with the given ID.
func (s *EntityService[T]) Delete(ctx context.Context, req *connect.Request[api.DeleteRequest]) (*connect.Response[api.DeleteResponse], error) {
	slog.Info("Delete request received", "sheet", s.coll.Sheet(), "id", req.Msg.ID)

	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: id is required", errInvalidArgument))
	}
	if err := s.coll.Delete(ctx, req.Msg.ID); err != nil {
		slog.Error("Delete failed", "sheet", s.coll.Sheet(), "id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeleteResponse{}), nil
}

// Replace overwrites the whole sheet.
func (s *EntityService[T]) Replace(ctx context.Context, req *connect.Request[api.ReplaceRequest[T]]) (*connect.Response[api.ReplaceResponse], error) {
	slog.Info("Replace request received", "sheet", s.coll.Sheet(), "count", len(req.Msg.Items))

	if err := s.coll.Replace(ctx, req.Msg.Items); err != nil {
		slog.Error("Replace failed", "sheet", s.coll.Sheet(), "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ReplaceResponse{Count: len(req.Msg.Items)}), nil
}

// NewEntityServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewEntityServiceHandler[T any](svc *EntityService[T], opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
	procedure := func(method string) string { return api.Procedure(svc.name, method) }

	handlers := map[string]http.Handler{
		procedure(api.MethodList):    connect.NewUnaryHandler(procedure(api.MethodList), svc.List, opts...),
		procedure(api.MethodGet):     connect.NewUnaryHandler(procedure(api.MethodGet), svc.Get, opts...),
		procedure(api.MethodAdd):     connect.NewUnaryHandler(procedure(api.MethodAdd), svc.Add, opts...),
		procedure(api.MethodUpdate):  connect.NewUnaryHandler(procedure(api.MethodUpdate), svc.Update, opts...),
		procedure(api.MethodDelete):  connect.NewUnaryHandler(procedure(api.MethodDelete), svc.Delete, opts...),
		procedure(api.MethodReplace): connect.NewUnaryHandler(procedure(api.MethodReplace), svc.Replace, opts...),
	}
	return api.ServicePath(svc.name), dispatch(handlers)
}

func dispatch(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
