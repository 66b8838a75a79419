package mqttclient

import (
	"context"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jiahewang/smart-irrigation/internal/logger"
)

// Handler processes one inbound message. Returned errors are logged, not
// propagated: a bad message must not take down the subscription.
type Handler func(topic string, message mqtt.Message) error

// IConsumer subscribes to a topic and feeds messages to a handler.
type IConsumer interface {
	Consume(ctx context.Context)
	SetHandler(h Handler)
}

// Consumer holds the shared client, subscription topic and QoS.
type Consumer struct {
	client  mqtt.Client
	topic   string
	qos     byte
	handler Handler
}

func NewConsumer(client mqtt.Client, topic string, qos byte, handler Handler) *Consumer {
	return &Consumer{client: client, topic: topic, qos: qos, handler: handler}
}

func (c *Consumer) SetHandler(h Handler) { c.handler = h }

// Consume subscribes and blocks until ctx is cancelled, then unsubscribes.
func (c *Consumer) Consume(ctx context.Context) {
	token := c.client.Subscribe(c.topic, c.qos, func(_ mqtt.Client, message mqtt.Message) {
		if c.handler == nil {
			logger.Warnf("mqtt: no handler set for topic %s", c.topic)
			return
		}
		if err := c.handler(message.Topic(), message); err != nil {
			logger.Warnf("mqtt: handler error on %s: %v", message.Topic(), err)
		}
	})
	if token.Wait() && token.Error() != nil {
		logger.Errorf("mqtt: subscribe to %s failed: %v", c.topic, token.Error())
		return
	}
	logger.Infof("mqtt: subscribed to %s (qos=%d)", c.topic, c.qos)

	<-ctx.Done()

	unsub := c.client.Unsubscribe(c.topic)
	unsub.Wait()
}
