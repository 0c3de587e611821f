package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestServe_EmptyAddrIsNoop(t *testing.T) {
	if err := Serve(context.Background(), ""); err != nil {
		t.Fatalf("Serve(\"\") = %v, want nil", err)
	}
}

func TestResolveTotal_Labels(t *testing.T) {
	before := testutil.ToFloat64(ResolveTotal.WithLabelValues(ResultInvalid))
	ResolveTotal.WithLabelValues(ResultInvalid).Inc()
	after := testutil.ToFloat64(ResolveTotal.WithLabelValues(ResultInvalid))

	if after-before != 1 {
		t.Errorf("invalid counter moved by %v, want 1", after-before)
	}
}
