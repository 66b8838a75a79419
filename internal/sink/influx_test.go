package sink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jiahewang/smart-irrigation/internal/model"
)

func TestEventToPoint(t *testing.T) {
	ts := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	p := eventToPoint(model.SystemEvent{
		EventType: model.EventDecision,
		Source:    "scheduler",
		SensorID:  "sensor_001",
		Severity:  "info",
		Fields: map[string]interface{}{
			"command":       "start_irrigation",
			"soil_moisture": 20.5,
		},
		Timestamp: ts,
	})

	require.Equal(t, "system_event", p.Name())
	require.Equal(t, ts, p.Time())

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	require.Equal(t, map[string]string{
		"event_type":     model.EventDecision,
		"source_service": "scheduler",
		"severity":       "info",
		"sensor_id":      "sensor_001",
	}, tags)

	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	require.Equal(t, "start_irrigation", fields["command"])
	require.Equal(t, 20.5, fields["soil_moisture"])
	require.Equal(t, int64(1), fields["count"])
}

func TestEventToPointWithoutSensor(t *testing.T) {
	p := eventToPoint(model.SystemEvent{
		EventType: model.EventDeviceStop,
		Source:    "device-controller",
		Severity:  "info",
	})

	for _, tag := range p.TagList() {
		require.NotEqual(t, "sensor_id", tag.Key)
	}
	require.False(t, p.Time().IsZero())
}

func TestMultiFansOut(t *testing.T) {
	var a, b countSink
	m := Multi{&a, nil, &b}

	m.Record(model.SystemEvent{EventType: model.EventDeviceStart})
	m.Record(model.SystemEvent{EventType: model.EventDeviceStop})

	require.Equal(t, 2, a.n)
	require.Equal(t, 2, b.n)
}

type countSink struct {
	n int
}

func (s *countSink) Record(model.SystemEvent) { s.n++ }
