package metrics_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/reoring/tsspec/kvstore"
	"github.com/reoring/tsspec/metrics"
	"github.com/reoring/tsspec/tensorstore"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if matches(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	n := 0
	for _, lp := range m.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok {
			if want != lp.GetValue() {
				return false
			}
			n++
		}
	}
	return n == len(labels)
}

func TestCollector_CountsResolutions(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewWithRegistry(reg)
	v := tensorstore.New(tensorstore.WithObserver(c))
	ctx := context.Background()

	if _, err := v.ValidateKvStore(ctx, "memory://"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := v.ValidateKvStore(ctx, map[string]any{"driver": "file", "path": "", "bogus": 1}); err == nil {
		t.Fatalf("expected issues")
	}

	ok := counterValue(t, reg, "tsspec_resolutions_total", map[string]string{"category": "kvstore", "variant": "memory", "result": "ok"})
	if ok != 1 {
		t.Fatalf("want 1 ok resolution, got %v", ok)
	}
	bad := counterValue(t, reg, "tsspec_resolutions_total", map[string]string{"category": "kvstore", "variant": "file", "result": "invalid"})
	if bad != 1 {
		t.Fatalf("want 1 invalid resolution, got %v", bad)
	}
	if n := counterValue(t, reg, "tsspec_issues_total", map[string]string{"category": "kvstore", "code": "unknown_key"}); n != 1 {
		t.Fatalf("want 1 unknown_key issue, got %v", n)
	}
}

func TestCollector_UnknownVariantLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewWithRegistry(reg)
	c.ObserveResolve(kvstore.Category.Name(), "", 0, nil)
	if n := counterValue(t, reg, "tsspec_resolutions_total", map[string]string{"variant": "unknown"}); n != 1 {
		t.Fatalf("want the unknown label, got %v", n)
	}
}

func TestCollector_UnregisteredDriverSharesOneSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewWithRegistry(reg)
	v := tensorstore.New(tensorstore.WithObserver(c))
	ctx := context.Background()

	for _, tag := range []string{"bogus", "bogus-2", "x\ny"} {
		if _, err := v.Validate(ctx, map[string]any{"driver": tag, "kvstore": "memory://"}); err == nil {
			t.Fatalf("driver %q should be rejected", tag)
		}
	}
	if n := counterValue(t, reg, "tsspec_resolutions_total", map[string]string{"category": "driver", "variant": "unknown", "result": "invalid"}); n != 3 {
		t.Fatalf("want 3 resolutions under the unknown label, got %v", n)
	}
	if n := counterValue(t, reg, "tsspec_resolutions_total", map[string]string{"variant": "bogus"}); n != 0 {
		t.Fatalf("raw discriminator leaked into labels")
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewWithRegistry(reg)
	c.ObserveResolve("driver", "zarr", 0, nil)

	path := filepath.Join(t.TempDir(), "tsspec.prom")
	if err := metrics.WriteTextfile(path, reg); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), `tsspec_resolutions_total{category="driver",result="ok",variant="zarr"} 1`) {
		t.Fatalf("unexpected textfile:\n%s", b)
	}
}
