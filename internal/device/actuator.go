package device

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jiahewang/smart-irrigation/pkg/mqttclient"
)

// Actuator is the narrow hardware boundary. Implementations must be
// time-bounded: a hung valve surfaces as an error, it is never retried here.
type Actuator interface {
	TurnOn(ctx context.Context, duration time.Duration) error
	TurnOff(ctx context.Context) error
}

// SimulatedActuator models a valve that always responds. Used when no real
// hardware is attached.
type SimulatedActuator struct{}

func (SimulatedActuator) TurnOn(context.Context, time.Duration) error { return nil }

func (SimulatedActuator) TurnOff(context.Context) error { return nil }

// stateChange is the wire payload a remote valve controller consumes.
type stateChange struct {
	SensorID  string        `json:"sensor_id"`
	NewState  string        `json:"new_state"` // "on" | "off"
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// MQTTActuator drives a remote valve by publishing state-change commands at
// QoS 1. Publish failure is an actuation failure.
type MQTTActuator struct {
	publisher mqttclient.IPublisher
	sensorID  string
}

func NewMQTTActuator(publisher mqttclient.IPublisher, sensorID string) *MQTTActuator {
	return &MQTTActuator{publisher: publisher, sensorID: sensorID}
}

func (a *MQTTActuator) TurnOn(_ context.Context, duration time.Duration) error {
	return a.publish("on", duration)
}

func (a *MQTTActuator) TurnOff(context.Context) error {
	return a.publish("off", 0)
}

func (a *MQTTActuator) publish(state string, duration time.Duration) error {
	evt := stateChange{
		SensorID:  a.sensorID,
		NewState:  state,
		Duration:  duration,
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return a.publisher.PublishQos(1, false, payload)
}
