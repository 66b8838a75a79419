package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jiahewang/smart-irrigation/internal/alarm"
	"github.com/jiahewang/smart-irrigation/internal/device"
	"github.com/jiahewang/smart-irrigation/internal/engine"
	"github.com/jiahewang/smart-irrigation/internal/model"
)

type fakeSource struct {
	reading model.SensorReading
	err     error
	calls   int
}

func (f *fakeSource) Read(context.Context) (model.SensorReading, error) {
	f.calls++
	return f.reading, f.err
}

type fakePredictor struct {
	value float64
	err   error
}

func (f *fakePredictor) Predict(model.PredictionInput) (float64, error) {
	return f.value, f.err
}

type fakeActuator struct {
	onCalls  int
	offCalls int
}

func (f *fakeActuator) TurnOn(context.Context, time.Duration) error {
	f.onCalls++
	return nil
}

func (f *fakeActuator) TurnOff(context.Context) error {
	f.offCalls++
	return nil
}

type recordSink struct {
	events []model.SystemEvent
}

func (s *recordSink) Record(evt model.SystemEvent) {
	s.events = append(s.events, evt)
}

func reading(moisture float64) model.SensorReading {
	return model.SensorReading{
		SensorID:     "sensor_001",
		SoilMoisture: moisture,
		Temperature:  21,
		Timestamp:    time.Now(),
	}
}

type fixture struct {
	sched      *Scheduler
	source     *fakeSource
	predictor  *fakePredictor
	actuator   *fakeActuator
	controller *device.Controller
	events     *recordSink
}

func newFixture(t *testing.T, threshold float64) *fixture {
	t.Helper()
	f := &fixture{
		source:    &fakeSource{reading: reading(50)},
		predictor: &fakePredictor{value: 50},
		actuator:  &fakeActuator{},
		events:    &recordSink{},
	}
	f.controller = device.NewController(f.actuator, nil, nil, 30)
	f.sched = New(Options{
		Interval:   time.Minute,
		Threshold:  threshold,
		Sensors:    f.source,
		Predictor:  f.predictor,
		Engine:     engine.NewEngine(alarm.NewPolicy(25, true, nil)),
		Controller: f.controller,
		Events:     f.events,
	})
	return f
}

func (f *fixture) eventsByType(eventType string) []model.SystemEvent {
	var out []model.SystemEvent
	for _, evt := range f.events.events {
		if evt.EventType == eventType {
			out = append(out, evt)
		}
	}
	return out
}

func TestCycleStartsWhenDry(t *testing.T) {
	f := newFixture(t, 30)
	f.source.reading = reading(20)

	decision, err := f.sched.RunCycleNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.CommandStartIrrigation, decision.Command)
	require.Contains(t, decision.Reason, "current moisture")
	require.Equal(t, 1, f.actuator.onCalls)
	require.Equal(t, model.DeviceRunning, f.controller.Status().Status)

	decisions := f.eventsByType(model.EventDecision)
	require.Len(t, decisions, 1)
	require.Equal(t, "start_irrigation", decisions[0].Fields["command"])
}

func TestCycleStartsOnPrediction(t *testing.T) {
	f := newFixture(t, 30)
	f.source.reading = reading(40)
	f.predictor.value = 20

	decision, err := f.sched.RunCycleNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.CommandStartIrrigation, decision.Command)
	require.Contains(t, decision.Reason, "predicted moisture")
}

func TestPredictorFailureDegrades(t *testing.T) {
	f := newFixture(t, 30)
	f.source.reading = reading(40)
	f.predictor.err = errors.New("model unavailable")

	decision, err := f.sched.RunCycleNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.CommandNoAction, decision.Command)
	require.Zero(t, f.actuator.onCalls)
}

func TestNoRestartWhileRunning(t *testing.T) {
	f := newFixture(t, 30)
	f.source.reading = reading(20)

	for i := 0; i < 3; i++ {
		_, err := f.sched.RunCycleNow(context.Background())
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.actuator.onCalls)
}

func TestStopsWhenMoistureRecovers(t *testing.T) {
	f := newFixture(t, 30)
	f.source.reading = reading(20)

	_, err := f.sched.RunCycleNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.DeviceRunning, f.controller.Status().Status)

	f.source.reading = reading(55)
	decision, err := f.sched.RunCycleNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.CommandNoAction, decision.Command)
	require.Equal(t, 1, f.actuator.offCalls)
	require.Equal(t, model.DeviceStopped, f.controller.Status().Status)
}

func TestSensorErrorAbandonsCycle(t *testing.T) {
	f := newFixture(t, 30)
	f.source.err = &model.SensorError{Reason: "probe offline"}

	_, err := f.sched.RunCycleNow(context.Background())
	var sensorErr *model.SensorError
	require.ErrorAs(t, err, &sensorErr)
	require.Zero(t, f.actuator.onCalls)
	require.Empty(t, f.events.events)
}

func TestAlarmEventRecorded(t *testing.T) {
	f := newFixture(t, 30)
	f.source.reading = reading(20) // below the alarm threshold of 25

	decision, err := f.sched.RunCycleNow(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, decision.Alarm)

	alarms := f.eventsByType(model.EventAlarmTriggered)
	require.Len(t, alarms, 1)
	require.Equal(t, decision.Alarm, alarms[0].Fields["message"])
	require.Equal(t, "warning", alarms[0].Severity)
}

func TestTickSkippedWhileCycleInFlight(t *testing.T) {
	f := newFixture(t, 30)

	f.sched.cycleMu.Lock()
	defer f.sched.cycleMu.Unlock()

	require.False(t, f.sched.tick(context.Background()))
	require.Zero(t, f.source.calls)
}

func TestTickRunsCycle(t *testing.T) {
	f := newFixture(t, 30)

	require.True(t, f.sched.tick(context.Background()))
	require.Equal(t, 1, f.source.calls)
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t, 30)
	f.sched.opts.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.sched.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
