package model

import "time"

// Event types recorded to the audit sink.
const (
	EventDeviceStart       = "device.start"
	EventDeviceStop        = "device.stop"
	EventDeviceStartFailed = "device.start_failed"
	EventDeviceStopFailed  = "device.stop_failed"
	EventDecision          = "irrigation.decision"
	EventAlarmTriggered    = "alarm.triggered"
)

// SystemEvent is the normalized audit record written for every lifecycle
// transition, decision and alarm. Fields carries event-specific values
// (durations, commands, moisture levels).
type SystemEvent struct {
	EventType string                 `json:"event_type"`
	Source    string                 `json:"source_service"`
	SensorID  string                 `json:"sensor_id,omitempty"`
	Severity  string                 `json:"severity"` // info | warning | error
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
