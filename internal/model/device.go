package model

import "time"

// DeviceStatus is the actuator state machine position.
type DeviceStatus string

const (
	DeviceStopped DeviceStatus = "stopped"
	DeviceRunning DeviceStatus = "running"
	DeviceError   DeviceStatus = "error"
)

// StatusView is a point-in-time snapshot of the device, computed fresh on
// every status call. Runtime fields are only set while running.
type StatusView struct {
	Status                 DeviceStatus `json:"device_status"`
	StartedAt              *time.Time   `json:"started_at,omitempty"`
	ElapsedMinutes         float64      `json:"elapsed_minutes,omitempty"`
	RemainingMinutes       float64      `json:"remaining_minutes,omitempty"`
	PlannedDurationMinutes int          `json:"duration_minutes,omitempty"`
}
