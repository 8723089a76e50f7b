package emit

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts emitted responses by their status codes and the number of body bytes
// written by the emitter.
type Metrics struct {
	responses *prometheus.CounterVec
	bodyBytes prometheus.Counter
}

// NewMetrics creates the counters and registers them. Nil registerer leaves them
// unregistered, which is handy for tests.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "message_emitted_responses_total",
			Help: "Number of emitted responses by status code",
		}, []string{"code"}),
		bodyBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "message_emitted_body_bytes_total",
			Help: "Number of body bytes written by the emitter",
		}),
	}

	if registerer == nil {
		return m, nil
	}

	for _, collector := range []prometheus.Collector{m.responses, m.bodyBytes} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) save(code int, written int64) {
	if m == nil {
		return
	}

	m.responses.WithLabelValues(strconv.Itoa(code)).Inc()
	m.bodyBytes.Add(float64(written))
}
