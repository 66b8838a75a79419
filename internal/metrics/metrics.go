// Package metrics exposes Prometheus counters for the control loop. All
// observe methods are nil-safe so components can run without a registry in
// tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jiahewang/smart-irrigation/internal/model"
)

type Metrics struct {
	registry *prometheus.Registry

	cyclesTotal   prometheus.Counter
	cycleFailures prometheus.Counter
	cyclesSkipped prometheus.Counter
	decisions     *prometheus.CounterVec
	actuations    *prometheus.CounterVec
	deviceRunning prometheus.Gauge
	alarms        prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: reg,
		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irrigation_cycles_total",
			Help: "Scheduler cycles that ran to completion.",
		}),
		cycleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irrigation_cycle_failures_total",
			Help: "Scheduler cycles abandoned because of an error.",
		}),
		cyclesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irrigation_cycles_skipped_total",
			Help: "Ticks skipped because the previous cycle was still running.",
		}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irrigation_decisions_total",
			Help: "Decisions by control command.",
		}, []string{"command"}),
		actuations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irrigation_actuations_total",
			Help: "Device start/stop attempts by outcome.",
		}, []string{"op", "outcome"}),
		deviceRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irrigation_device_running",
			Help: "1 while the irrigation device is running.",
		}),
		alarms: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irrigation_alarms_triggered_total",
			Help: "Low-moisture alarms raised.",
		}),
	}
	reg.MustRegister(m.cyclesTotal, m.cycleFailures, m.cyclesSkipped,
		m.decisions, m.actuations, m.deviceRunning, m.alarms)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveCycle(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.cyclesTotal.Inc()
	} else {
		m.cycleFailures.Inc()
	}
}

func (m *Metrics) CycleSkipped() {
	if m == nil {
		return
	}
	m.cyclesSkipped.Inc()
}

func (m *Metrics) ObserveDecision(cmd model.ControlCommand) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(string(cmd)).Inc()
}

func (m *Metrics) ObserveActuation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.actuations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) SetDeviceRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.deviceRunning.Set(1)
	} else {
		m.deviceRunning.Set(0)
	}
}

func (m *Metrics) AlarmTriggered() {
	if m == nil {
		return
	}
	m.alarms.Inc()
}
