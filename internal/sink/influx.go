package sink

import (
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/jiahewang/smart-irrigation/internal/logger"
	"github.com/jiahewang/smart-irrigation/internal/model"
)

// InfluxSink writes system events to an InfluxDB bucket through the async
// write API and tracks the last write error for health reporting.
type InfluxSink struct {
	api api.WriteAPI

	mu      sync.RWMutex
	lastErr time.Time
}

func NewInfluxSink(writeAPI api.WriteAPI) *InfluxSink {
	s := &InfluxSink{
		api:     writeAPI,
		lastErr: time.Now().Add(-24 * time.Hour),
	}
	go func() {
		for err := range writeAPI.Errors() {
			if err != nil {
				s.mu.Lock()
				s.lastErr = time.Now()
				s.mu.Unlock()
				logger.Warnf("sink: influx write error: %v", err)
			}
		}
	}()
	return s
}

func (s *InfluxSink) Record(evt model.SystemEvent) {
	s.api.WritePoint(eventToPoint(evt))
}

// LastErrorAge reports how long ago the last write error happened.
func (s *InfluxSink) LastErrorAge() time.Duration {
	s.mu.RLock()
	t := s.lastErr
	s.mu.RUnlock()
	return time.Since(t)
}

// Flush forces buffered points out; call on shutdown.
func (s *InfluxSink) Flush() { s.api.Flush() }

// eventToPoint normalizes a SystemEvent into a single "system_event"
// measurement. Identity goes to tags, event values to fields.
func eventToPoint(evt model.SystemEvent) *write.Point {
	tags := map[string]string{
		"event_type":     evt.EventType,
		"source_service": evt.Source,
		"severity":       evt.Severity,
	}
	if evt.SensorID != "" {
		tags["sensor_id"] = evt.SensorID
	}

	fields := map[string]interface{}{}
	for k, v := range evt.Fields {
		fields[k] = v
	}
	// at least one field is required for a valid point
	if _, ok := fields["count"]; !ok {
		fields["count"] = int64(1)
	}

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return influxdb2.NewPoint("system_event", tags, fields, ts)
}
