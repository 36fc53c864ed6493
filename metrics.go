package datacontract

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marius-klimantavicius/data-contracts-sub001/internal/telemetry"
)

var metrics atomic.Pointer[telemetry.Metrics]

func init() {
	metrics.Store(telemetry.Noop())
}

// EnableMetrics registers the serializer metrics with reg. Until it is
// called every serializer records into no-op instruments.
func EnableMetrics(reg prometheus.Registerer) error {
	m, err := telemetry.New(reg)
	if err != nil {
		return err
	}
	metrics.Store(m)
	return nil
}
