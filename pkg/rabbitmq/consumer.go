package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Handler processes one message. topic is the concrete topic the message
// was published on, not the subscription filter.
type Handler func(topic string, message mqtt.Message) error

// IConsumer subscribes to a topic filter and dispatches messages to a handler.
type IConsumer interface {
	ConsumeMessage(ctx context.Context) error
	SetHandler(handler Handler)
}

var _ IConsumer = (*Consumer)(nil)

type Consumer struct {
	client mqtt.Client
	topic  string
	qos    byte
	logger *zap.Logger

	mu      sync.RWMutex
	handler Handler
}

func NewConsumer(client mqtt.Client, topic string, qos byte, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		client: client,
		topic:  topic,
		qos:    qos,
		logger: logger.With(zap.String("topic", topic)),
	}
}

func (c *Consumer) SetHandler(handler Handler) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

func (c *Consumer) dispatch(_ mqtt.Client, message mqtt.Message) {
	c.mu.RLock()
	h := c.handler
	c.mu.RUnlock()
	if h == nil {
		c.logger.Warn("no handler set, message dropped")
		return
	}
	if err := h(message.Topic(), message); err != nil {
		c.logger.Warn("error handling message", zap.String("message_topic", message.Topic()), zap.Error(err))
	}
}

// ConsumeMessage subscribes and blocks until ctx is done, then unsubscribes.
func (c *Consumer) ConsumeMessage(ctx context.Context) error {
	token := c.client.Subscribe(c.topic, c.qos, c.dispatch)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", c.topic, token.Error())
	}
	c.logger.Info("subscribed")

	<-ctx.Done()

	c.client.Unsubscribe(c.topic).Wait()
	return nil
}
