// Package device owns the irrigation actuator state machine. The controller
// is the only writer of the device state; everything else reads snapshots.
package device

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jiahewang/smart-irrigation/internal/logger"
	"github.com/jiahewang/smart-irrigation/internal/metrics"
	"github.com/jiahewang/smart-irrigation/internal/model"
	"github.com/jiahewang/smart-irrigation/internal/sink"
)

// ResultStatus distinguishes an applied command from an idempotent no-op.
// Hard failures are reported through the error return instead.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusWarning ResultStatus = "warning"
)

// Result is the outcome of a start or stop call.
type Result struct {
	Status  ResultStatus       `json:"status"`
	Message string             `json:"message"`
	Device  model.DeviceStatus `json:"device_status"`
	Ticket  string             `json:"ticket_id,omitempty"`
}

// Controller serializes all start/stop transitions behind one mutex so the
// scheduled loop and interactive commands can never interleave inside a
// transition.
type Controller struct {
	mu sync.Mutex

	actuator        Actuator
	events          sink.EventSink
	metrics         *metrics.Metrics
	defaultDuration time.Duration

	status    model.DeviceStatus
	startedAt time.Time
	planned   time.Duration

	now func() time.Time
}

func NewController(actuator Actuator, events sink.EventSink, m *metrics.Metrics, defaultDurationMinutes int) *Controller {
	if events == nil {
		events = sink.Nop{}
	}
	return &Controller{
		actuator:        actuator,
		events:          events,
		metrics:         m,
		defaultDuration: time.Duration(defaultDurationMinutes) * time.Minute,
		status:          model.DeviceStopped,
		now:             time.Now,
	}
}

// Start turns the device on for durationMinutes (0 selects the configured
// default). Calling Start while running is an idempotent no-op warning: the
// running timer is never reset. An actuation failure moves the device to the
// error state and returns an ActuationError.
func (c *Controller) Start(ctx context.Context, durationMinutes int) (Result, error) {
	duration := time.Duration(durationMinutes) * time.Minute
	if durationMinutes <= 0 {
		duration = c.defaultDuration
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == model.DeviceRunning {
		logger.Warnf("device: irrigation already running, start ignored")
		return Result{Status: StatusWarning, Message: "irrigation is already running", Device: c.status}, nil
	}

	if err := c.actuator.TurnOn(ctx, duration); err != nil {
		c.status = model.DeviceError
		c.metrics.ObserveActuation("start", err)
		c.recordEvent(model.EventDeviceStartFailed, "error", map[string]interface{}{
			"error": err.Error(),
		})
		logger.Errorf("device: start failed: %v", err)
		return Result{}, &model.ActuationError{Op: "start", Err: err}
	}

	c.status = model.DeviceRunning
	c.startedAt = c.now()
	c.planned = duration
	c.metrics.ObserveActuation("start", nil)
	c.metrics.SetDeviceRunning(true)

	ticket := uuid.New().String()
	c.recordEvent(model.EventDeviceStart, "info", map[string]interface{}{
		"duration_planned_seconds": duration.Seconds(),
		"start_time":               c.startedAt,
		"ticket_id":                ticket,
	})
	logger.Infof("device: irrigation started for %d minutes", int(duration.Minutes()))

	return Result{
		Status:  StatusSuccess,
		Message: "irrigation started",
		Device:  c.status,
		Ticket:  ticket,
	}, nil
}

// Stop turns the device off. Calling Stop while stopped is an idempotent
// no-op warning. A successful stop from the error state acts as recovery.
func (c *Controller) Stop(ctx context.Context) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == model.DeviceStopped {
		logger.Warnf("device: irrigation already stopped, stop ignored")
		return Result{Status: StatusWarning, Message: "irrigation is already stopped", Device: c.status}, nil
	}

	previous := c.status
	if err := c.actuator.TurnOff(ctx); err != nil {
		c.status = model.DeviceError
		c.metrics.ObserveActuation("stop", err)
		c.recordEvent(model.EventDeviceStopFailed, "error", map[string]interface{}{
			"error": err.Error(),
		})
		logger.Errorf("device: stop failed: %v", err)
		return Result{}, &model.ActuationError{Op: "stop", Err: err}
	}

	now := c.now()
	fields := map[string]interface{}{"previous_status": string(previous)}
	if previous == model.DeviceRunning {
		fields["start_time"] = c.startedAt
		fields["end_time"] = now
		fields["duration_actual_seconds"] = now.Sub(c.startedAt).Seconds()
	}

	c.status = model.DeviceStopped
	c.startedAt = time.Time{}
	c.planned = 0
	c.metrics.ObserveActuation("stop", nil)
	c.metrics.SetDeviceRunning(false)

	c.recordEvent(model.EventDeviceStop, "info", fields)
	logger.Infof("device: irrigation stopped (was %s)", previous)

	return Result{Status: StatusSuccess, Message: "irrigation stopped", Device: c.status}, nil
}

// Status returns a fresh snapshot; elapsed and remaining minutes are
// computed per call so repeated polling reflects real time.
func (c *Controller) Status() model.StatusView {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := model.StatusView{Status: c.status}
	if c.status == model.DeviceRunning && !c.startedAt.IsZero() {
		started := c.startedAt
		elapsed := c.now().Sub(started).Minutes()
		remaining := math.Max(0, c.planned.Minutes()-elapsed)

		view.StartedAt = &started
		view.ElapsedMinutes = round1(elapsed)
		view.RemainingMinutes = round1(remaining)
		view.PlannedDurationMinutes = int(c.planned.Minutes())
	}
	return view
}

func (c *Controller) recordEvent(eventType, severity string, fields map[string]interface{}) {
	c.events.Record(model.SystemEvent{
		EventType: eventType,
		Source:    "device-controller",
		Severity:  severity,
		Fields:    fields,
		Timestamp: c.now(),
	})
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
