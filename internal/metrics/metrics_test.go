package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetricFamily は名前でメトリクスファミリーを取得する。
func findMetricFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

func TestNewCollector_ReturnsNonNil(t *testing.T) {
	if c := NewCollector(prometheus.NewRegistry()); c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はHTTPステータスカウンタがラベル付きで増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	mf := findMetricFamily(t, reg, "mealmap_http_status_total")
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
	}
	for _, m := range mf.GetMetric() {
		label := m.GetLabel()[0].GetValue()
		val := m.GetCounter().GetValue()
		switch label {
		case "200":
			if val != 2 {
				t.Errorf("http_status_total{status_code=200} = %v, want 2", val)
			}
		case "404":
			if val != 1 {
				t.Errorf("http_status_total{status_code=404} = %v, want 1", val)
			}
		default:
			t.Errorf("unexpected label value: %s", label)
		}
	}
}

func TestRecordRequestLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequestLatency(150 * time.Millisecond)

	h := findMetricFamily(t, reg, "mealmap_http_request_duration_seconds").GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 1 {
		t.Errorf("sample count = %d, want 1", h.GetSampleCount())
	}
	if h.GetSampleSum() < 0.149 || h.GetSampleSum() > 0.151 {
		t.Errorf("sample sum = %v, want 0.15", h.GetSampleSum())
	}
}

func TestRecordNearbyResults_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordNearbyResults(0)
	c.RecordNearbyResults(3)

	h := findMetricFamily(t, reg, "mealmap_nearby_results").GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample count = %d, want 2", h.GetSampleCount())
	}
	if h.GetSampleSum() != 3 {
		t.Errorf("sample sum = %v, want 3", h.GetSampleSum())
	}
}

func TestRecordFollow_IncrementsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFollowCreated()
	c.RecordFollowCreated()
	c.RecordFollowConflict()

	if v := findMetricFamily(t, reg, "mealmap_follow_created_total").GetMetric()[0].GetCounter().GetValue(); v != 2 {
		t.Errorf("follow_created_total = %v, want 2", v)
	}
	if v := findMetricFamily(t, reg, "mealmap_follow_conflict_total").GetMetric()[0].GetCounter().GetValue(); v != 1 {
		t.Errorf("follow_conflict_total = %v, want 1", v)
	}
}

func TestRecordRecommendation_ObservesBothHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRecommendation(4, 7)

	peers := findMetricFamily(t, reg, "mealmap_recommend_peers").GetMetric()[0].GetHistogram()
	if peers.GetSampleSum() != 4 {
		t.Errorf("recommend_peers sum = %v, want 4", peers.GetSampleSum())
	}
	restaurants := findMetricFamily(t, reg, "mealmap_recommend_restaurants").GetMetric()[0].GetHistogram()
	if restaurants.GetSampleSum() != 7 {
		t.Errorf("recommend_restaurants sum = %v, want 7", restaurants.GetSampleSum())
	}
}

// TestCollector_ImplementsInterface はCollectorがMetricsCollectorを満たすことを検証する。
func TestCollector_ImplementsInterface(t *testing.T) {
	var _ MetricsCollector = (*Collector)(nil)
}
