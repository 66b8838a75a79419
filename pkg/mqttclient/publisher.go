package mqttclient

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// IPublisher is the publishing side of an MQTT topic.
type IPublisher interface {
	Publish(payload []byte) error
	PublishQos(qos byte, retained bool, payload []byte) error
	Topic() string
}

// Publisher binds a shared MQTT client to a single topic.
type Publisher struct {
	client mqtt.Client
	topic  string
}

func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Publish sends payload at QoS 0 (at most once).
func (p *Publisher) Publish(payload []byte) error {
	return p.PublishQos(0, false, payload)
}

func (p *Publisher) PublishQos(qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(p.topic, qos, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, token.Error())
	}
	return nil
}

func (p *Publisher) Topic() string { return p.topic }
