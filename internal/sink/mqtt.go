package sink

import (
	"encoding/json"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jiahewang/smart-irrigation/internal/logger"
	"github.com/jiahewang/smart-irrigation/internal/model"
)

// MQTTSink publishes events as JSON at QoS 1 so downstream consumers
// (dashboards, persistence) can subscribe. The topic template accepts
// {type} and {sensor} placeholders, e.g. "event/{type}/{sensor}".
type MQTTSink struct {
	client    mqtt.Client
	topicTmpl string
}

func NewMQTTSink(client mqtt.Client, topicTmpl string) *MQTTSink {
	if strings.TrimSpace(topicTmpl) == "" {
		topicTmpl = "event/{type}/{sensor}"
	}
	return &MQTTSink{client: client, topicTmpl: topicTmpl}
}

func (s *MQTTSink) Record(evt model.SystemEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		logger.Warnf("sink: marshal event %s: %v", evt.EventType, err)
		return
	}
	sensor := evt.SensorID
	if sensor == "" {
		sensor = "system"
	}
	topic := strings.NewReplacer("{type}", evt.EventType, "{sensor}", sensor).Replace(s.topicTmpl)

	token := s.client.Publish(topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		logger.Warnf("sink: publish event to %s: %v", topic, token.Error())
	}
}
