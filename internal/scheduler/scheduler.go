// Package scheduler runs the periodic acquire→combine→predict→decide→actuate
// cycle and offers the same cycle on demand to interactive callers.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jiahewang/smart-irrigation/internal/device"
	"github.com/jiahewang/smart-irrigation/internal/engine"
	"github.com/jiahewang/smart-irrigation/internal/logger"
	"github.com/jiahewang/smart-irrigation/internal/metrics"
	"github.com/jiahewang/smart-irrigation/internal/model"
	"github.com/jiahewang/smart-irrigation/internal/predictor"
	"github.com/jiahewang/smart-irrigation/internal/sensor"
	"github.com/jiahewang/smart-irrigation/internal/sink"
	"github.com/jiahewang/smart-irrigation/internal/weather"
)

// Options wires the collaborators of one control loop instance.
type Options struct {
	Interval  time.Duration
	Threshold float64
	Location  string

	Sensors    sensor.Source
	Weather    weather.Source // optional
	Predictor  predictor.Predictor
	Engine     *engine.Engine
	Controller *device.Controller
	Events     sink.EventSink
	Metrics    *metrics.Metrics
}

type Scheduler struct {
	opts Options

	// cycleMu enforces single-cycle-at-a-time across the timer loop and
	// interactive RunCycleNow callers.
	cycleMu sync.Mutex
}

func New(opts Options) *Scheduler {
	if opts.Events == nil {
		opts.Events = sink.Nop{}
	}
	return &Scheduler{opts: opts}
}

// Run executes a cycle every interval until ctx is cancelled. Cycles are
// isolated: an error inside one is logged and abandoned, never propagated,
// and never stops the timer. An in-flight cycle finishes before Run returns.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	logger.Infof("scheduler: automated irrigation check every %s", s.opts.Interval)
	for {
		select {
		case <-ctx.Done():
			logger.Infof("scheduler: stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one cycle unless a cycle is already in flight, in which case
// the tick is skipped rather than queued.
func (s *Scheduler) tick(ctx context.Context) bool {
	if !s.cycleMu.TryLock() {
		logger.Warnf("scheduler: previous cycle still running, tick skipped")
		s.opts.Metrics.CycleSkipped()
		return false
	}
	defer s.cycleMu.Unlock()

	if _, err := s.decideAndAct(ctx); err != nil {
		logger.Errorf("scheduler: cycle abandoned: %v", err)
		s.opts.Metrics.ObserveCycle(false)
		return true
	}
	s.opts.Metrics.ObserveCycle(true)
	return true
}

// RunCycleNow forces one synchronous cycle, waiting for any in-flight cycle
// first. Used by interactive predict/check-now commands; unlike the timer
// path the error is returned so the caller can render it.
func (s *Scheduler) RunCycleNow(ctx context.Context) (model.Decision, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	decision, err := s.decideAndAct(ctx)
	s.opts.Metrics.ObserveCycle(err == nil)
	return decision, err
}

func (s *Scheduler) decideAndAct(ctx context.Context) (model.Decision, error) {
	reading, err := s.opts.Sensors.Read(ctx)
	if err != nil {
		return model.Decision{}, err
	}
	reading = reading.Normalize(time.Now())

	// weather is advisory; absence never blocks the decision
	var snap *model.WeatherSnapshot
	if s.opts.Weather != nil {
		if w, werr := s.opts.Weather.Fetch(ctx, s.opts.Location); werr != nil {
			logger.Warnf("scheduler: weather unavailable: %v", werr)
		} else {
			snap = &w
		}
	}

	// degraded mode on prediction failure: decide on the current value only
	var predicted *float64
	if s.opts.Predictor != nil {
		if p, perr := s.opts.Predictor.Predict(model.NewPredictionInput(reading, snap)); perr != nil {
			logger.Warnf("scheduler: %v", &model.PredictionError{Err: perr})
		} else {
			predicted = &p
			logger.Infof("scheduler: %s current=%.1f%% predicted=%.1f%%", reading.SensorID, reading.SoilMoisture, p)
		}
	}

	decision := s.opts.Engine.Decide(reading.SoilMoisture, predicted, s.opts.Threshold)
	s.opts.Metrics.ObserveDecision(decision.Command)
	s.recordDecision(reading, predicted, decision)
	if decision.Alarm != "" {
		s.opts.Metrics.AlarmTriggered()
	}

	if err := s.actuate(ctx, decision); err != nil {
		return decision, err
	}
	return decision, nil
}

// actuate applies the control-synchronization rule: start only when not
// running, stop only when running and the decision is no_action. This
// mirrors the controller's own idempotency but avoids redundant actuation
// calls and warning noise.
func (s *Scheduler) actuate(ctx context.Context, decision model.Decision) error {
	status := s.opts.Controller.Status()
	switch {
	case decision.Command == model.CommandStartIrrigation && status.Status != model.DeviceRunning:
		logger.Infof("scheduler: starting irrigation: %s", decision.Reason)
		if _, err := s.opts.Controller.Start(ctx, 0); err != nil {
			return err
		}
	case decision.Command == model.CommandNoAction && status.Status == model.DeviceRunning:
		// TODO(hysteresis): stopping the moment moisture crosses back over
		// the threshold can oscillate near the boundary; a dead-band would
		// need a config knob and sign-off on the behavior change.
		logger.Infof("scheduler: moisture sufficient, stopping irrigation")
		if _, err := s.opts.Controller.Stop(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) recordDecision(reading model.SensorReading, predicted *float64, decision model.Decision) {
	fields := map[string]interface{}{
		"command":       string(decision.Command),
		"reason":        decision.Reason,
		"soil_moisture": reading.SoilMoisture,
		"threshold":     s.opts.Threshold,
	}
	if predicted != nil {
		fields["predicted_moisture"] = *predicted
	}
	s.opts.Events.Record(model.SystemEvent{
		EventType: model.EventDecision,
		Source:    "scheduler",
		SensorID:  reading.SensorID,
		Severity:  "info",
		Fields:    fields,
		Timestamp: time.Now(),
	})

	if decision.Alarm != "" {
		s.opts.Events.Record(model.SystemEvent{
			EventType: model.EventAlarmTriggered,
			Source:    "scheduler",
			SensorID:  reading.SensorID,
			Severity:  "warning",
			Fields: map[string]interface{}{
				"message":       decision.Alarm,
				"soil_moisture": reading.SoilMoisture,
			},
			Timestamp: time.Now(),
		})
	}
}
