package waitlist

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK     = "ok"
	resultAbsent = "absent"
	resultError  = "error"
)

type storeMetrics struct {
	operations *prometheus.CounterVec
	records    prometheus.Gauge
}

func newStoreMetrics(reg prometheus.Registerer) (*storeMetrics, error) {
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pledg_waitlist_store_operations_total",
			Help: "Waitlist store operations by outcome.",
		},
		[]string{"operation", "result"},
	)
	records := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pledg_waitlist_records",
		Help: "Records in the waitlist collection as of the last read.",
	})

	var err error
	if operations, err = registerOrReuse(reg, operations); err != nil {
		return nil, err
	}
	if records, err = registerOrReuse(reg, records); err != nil {
		return nil, err
	}

	return &storeMetrics{operations: operations, records: records}, nil
}

// registerOrReuse lets several stores share one registry, as tests and the CLI do.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *storeMetrics) observe(operation, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

func (m *storeMetrics) setRecords(n int) {
	if m == nil {
		return
	}
	m.records.Set(float64(n))
}
