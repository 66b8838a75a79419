package sensor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jiahewang/smart-irrigation/internal/logger"
	"github.com/jiahewang/smart-irrigation/internal/model"
	"github.com/jiahewang/smart-irrigation/pkg/dedup"
	"github.com/jiahewang/smart-irrigation/pkg/mqttclient"
)

// MQTTSource caches the latest reading published by field probes. Read
// returns the cached reading as long as it is fresh; an empty or stale
// cache is a SensorError, never a silently reused value.
type MQTTSource struct {
	consumer mqttclient.IConsumer
	deduper  *dedup.Deduper
	staleAge time.Duration

	mu     sync.Mutex
	latest model.SensorReading
	have   bool

	nowFunc func() time.Time
}

func NewMQTTSource(client mqtt.Client, topic string, staleAge time.Duration) *MQTTSource {
	s := &MQTTSource{
		deduper:  dedup.New(10*time.Minute, 20000),
		staleAge: staleAge,
		nowFunc:  time.Now,
	}
	s.consumer = mqttclient.NewConsumer(client, topic, 1, s.handleMessage)
	return s
}

// Start runs the subscription until ctx is cancelled.
func (s *MQTTSource) Start(ctx context.Context) {
	s.consumer.Consume(ctx)
}

func (s *MQTTSource) handleMessage(topic string, msg mqtt.Message) error {
	// drop QoS1 redeliveries before decoding
	h := sha256.Sum256(msg.Payload())
	if !s.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		return nil
	}

	var reading model.SensorReading
	if err := json.Unmarshal(msg.Payload(), &reading); err != nil {
		logger.Warnf("sensor: bad payload on %s: %v", topic, err)
		return nil
	}
	reading = reading.Normalize(s.nowFunc())

	s.mu.Lock()
	s.latest = reading
	s.have = true
	s.mu.Unlock()

	logger.Debugf("sensor: %s moisture=%.1f%% at %s", reading.SensorID, reading.SoilMoisture, reading.Timestamp.Format(time.RFC3339))
	return nil
}

func (s *MQTTSource) Read(context.Context) (model.SensorReading, error) {
	s.mu.Lock()
	reading, have := s.latest, s.have
	s.mu.Unlock()

	if !have {
		return model.SensorReading{}, &model.SensorError{Reason: "no reading received yet"}
	}
	if age := s.nowFunc().Sub(reading.Timestamp); s.staleAge > 0 && age > s.staleAge {
		return model.SensorReading{}, &model.SensorError{
			Reason: fmt.Sprintf("reading from %s is stale (%s old)", reading.SensorID, age.Round(time.Second)),
		}
	}
	return reading, nil
}
