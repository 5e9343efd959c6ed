package qdrantDB

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestPointId_DeterministicPerNamespace(t *testing.T) {
	a := PointId("b1", "d1-chunk-0")
	if a != PointId("b1", "d1-chunk-0") {
		t.Fatal("point id must be stable across calls")
	}
	if a == PointId("b2", "d1-chunk-0") {
		t.Fatal("the same chunk id in another namespace must map to another point")
	}
	if a == PointId("b1", "d1-chunk-1") {
		t.Fatal("distinct chunks must map to distinct points")
	}
}

func TestPruneFilter(t *testing.T) {
	f := pruneFilter("b1", "d1", 3)
	if len(f.Must) != 3 {
		t.Fatalf("expected namespace, document and ordinal conditions, got %d", len(f.Must))
	}
	r := f.Must[2].GetField().GetRange()
	if r == nil || r.GetGte() != 3 {
		t.Fatalf("expected chunk_order >= 3, got %+v", r)
	}
	if got := f.Must[0].GetField().GetMatch().GetKeyword(); got != "b1" {
		t.Errorf("namespace condition = %q", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unavailable", status.Error(codes.Unavailable, "down"), commonModels.ErrIndexUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), commonModels.ErrTimeout},
		{"ctx deadline", context.DeadlineExceeded, commonModels.ErrTimeout},
		{"bad vector", status.Error(codes.InvalidArgument, "dim"), commonModels.ErrInvalidArgument},
		{"plain", errors.New("eof"), commonModels.ErrIndexUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.in); !errors.Is(got, tt.want) {
				t.Errorf("classifyError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if classifyError(nil) != nil {
		t.Error("nil must stay nil")
	}
}
