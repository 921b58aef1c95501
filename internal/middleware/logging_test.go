package middleware

import (
	"errors"
	"testing"

	"connectrpc.com/connect"
)

func TestServerFault(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"internal", connect.NewError(connect.CodeInternal, errors.New("boom")), true},
		{"unknown", connect.NewError(connect.CodeUnknown, errors.New("boom")), true},
		{"data loss", connect.NewError(connect.CodeDataLoss, errors.New("boom")), true},
		{"unavailable", connect.NewError(connect.CodeUnavailable, errors.New("sheets down")), true},
		{"not found", connect.NewError(connect.CodeNotFound, errors.New("missing")), false},
		{"invalid argument", connect.NewError(connect.CodeInvalidArgument, errors.New("bad")), false},
		{"permission denied", connect.NewError(connect.CodePermissionDenied, errors.New("no")), false},
		{"plain error", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serverFault(tt.err); got != tt.want {
				t.Errorf("serverFault(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
