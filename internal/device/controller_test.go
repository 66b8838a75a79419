package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jiahewang/smart-irrigation/internal/model"
)

type fakeActuator struct {
	onCalls      int
	offCalls     int
	onErr        error
	offErr       error
	lastDuration time.Duration
}

func (f *fakeActuator) TurnOn(_ context.Context, duration time.Duration) error {
	f.onCalls++
	f.lastDuration = duration
	return f.onErr
}

func (f *fakeActuator) TurnOff(context.Context) error {
	f.offCalls++
	return f.offErr
}

type captureSink struct {
	events []model.SystemEvent
}

func (s *captureSink) Record(evt model.SystemEvent) {
	s.events = append(s.events, evt)
}

func (s *captureSink) byType(eventType string) []model.SystemEvent {
	var out []model.SystemEvent
	for _, evt := range s.events {
		if evt.EventType == eventType {
			out = append(out, evt)
		}
	}
	return out
}

func newTestController(act *fakeActuator, events *captureSink) *Controller {
	return NewController(act, events, nil, 30)
}

func TestStartUsesDefaultDuration(t *testing.T) {
	act := &fakeActuator{}
	events := &captureSink{}
	c := newTestController(act, events)

	res, err := c.Start(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.NotEmpty(t, res.Ticket)
	require.Equal(t, 30*time.Minute, act.lastDuration)

	view := c.Status()
	require.Equal(t, model.DeviceRunning, view.Status)
	require.Equal(t, 30, view.PlannedDurationMinutes)
	require.Len(t, events.byType(model.EventDeviceStart), 1)
}

func TestStartExplicitDuration(t *testing.T) {
	act := &fakeActuator{}
	c := newTestController(act, &captureSink{})

	_, err := c.Start(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 10*time.Minute, act.lastDuration)
}

func TestStartWhileRunningIsWarning(t *testing.T) {
	act := &fakeActuator{}
	c := newTestController(act, &captureSink{})

	_, err := c.Start(context.Background(), 10)
	require.NoError(t, err)
	before := c.Status()

	res, err := c.Start(context.Background(), 20)
	require.NoError(t, err)
	require.Equal(t, StatusWarning, res.Status)
	require.Equal(t, "irrigation is already running", res.Message)

	// no second actuation, no timer reset
	require.Equal(t, 1, act.onCalls)
	after := c.Status()
	require.Equal(t, before.StartedAt, after.StartedAt)
	require.Equal(t, before.PlannedDurationMinutes, after.PlannedDurationMinutes)
}

func TestStartFailureEntersErrorState(t *testing.T) {
	act := &fakeActuator{onErr: errors.New("valve jammed")}
	events := &captureSink{}
	c := newTestController(act, events)

	_, err := c.Start(context.Background(), 10)
	var devErr *model.ActuationError
	require.ErrorAs(t, err, &devErr)
	require.Equal(t, "start", devErr.Op)
	require.Equal(t, model.DeviceError, c.Status().Status)
	require.Len(t, events.byType(model.EventDeviceStartFailed), 1)
}

func TestStopWhileStoppedIsWarning(t *testing.T) {
	act := &fakeActuator{}
	c := newTestController(act, &captureSink{})

	res, err := c.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusWarning, res.Status)
	require.Equal(t, "irrigation is already stopped", res.Message)
	require.Zero(t, act.offCalls)
}

func TestStopRecordsActualDuration(t *testing.T) {
	act := &fakeActuator{}
	events := &captureSink{}
	c := newTestController(act, events)

	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	_, err := c.Start(context.Background(), 30)
	require.NoError(t, err)

	c.now = func() time.Time { return base.Add(12 * time.Minute) }
	res, err := c.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)

	stops := events.byType(model.EventDeviceStop)
	require.Len(t, stops, 1)
	require.Equal(t, "running", stops[0].Fields["previous_status"])
	require.Equal(t, (12 * time.Minute).Seconds(), stops[0].Fields["duration_actual_seconds"])
}

func TestStopFailureEntersErrorState(t *testing.T) {
	act := &fakeActuator{offErr: errors.New("valve stuck open")}
	events := &captureSink{}
	c := newTestController(act, events)

	_, err := c.Start(context.Background(), 10)
	require.NoError(t, err)

	_, err = c.Stop(context.Background())
	var devErr *model.ActuationError
	require.ErrorAs(t, err, &devErr)
	require.Equal(t, "stop", devErr.Op)
	require.Equal(t, model.DeviceError, c.Status().Status)
	require.Len(t, events.byType(model.EventDeviceStopFailed), 1)
}

func TestStopRecoversFromErrorState(t *testing.T) {
	act := &fakeActuator{onErr: errors.New("valve jammed")}
	events := &captureSink{}
	c := newTestController(act, events)

	_, err := c.Start(context.Background(), 10)
	require.Error(t, err)
	require.Equal(t, model.DeviceError, c.Status().Status)

	act.onErr = nil
	res, err := c.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, model.DeviceStopped, c.Status().Status)

	stops := events.byType(model.EventDeviceStop)
	require.Len(t, stops, 1)
	require.Equal(t, "error", stops[0].Fields["previous_status"])
	require.NotContains(t, stops[0].Fields, "duration_actual_seconds")
}

func TestStatusRuntimeMath(t *testing.T) {
	c := newTestController(&fakeActuator{}, &captureSink{})

	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	_, err := c.Start(context.Background(), 30)
	require.NoError(t, err)

	c.now = func() time.Time { return base.Add(10 * time.Minute) }
	view := c.Status()
	require.Equal(t, 10.0, view.ElapsedMinutes)
	require.Equal(t, 20.0, view.RemainingMinutes)
	require.NotNil(t, view.StartedAt)
	require.Equal(t, base, *view.StartedAt)

	// overrun never goes negative
	c.now = func() time.Time { return base.Add(45 * time.Minute) }
	view = c.Status()
	require.Equal(t, 45.0, view.ElapsedMinutes)
	require.Equal(t, 0.0, view.RemainingMinutes)
}

func TestStatusStoppedHasNoRuntimeFields(t *testing.T) {
	c := newTestController(&fakeActuator{}, &captureSink{})

	view := c.Status()
	require.Equal(t, model.DeviceStopped, view.Status)
	require.Nil(t, view.StartedAt)
	require.Zero(t, view.ElapsedMinutes)
	require.Zero(t, view.PlannedDurationMinutes)
}
