package service

import (
	"context"
	"encoding/json"
	"fmt"

	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ITurnEventPublisher puts domain events on the in-process bus. Publishing
// never waits for the downstream broker.
type ITurnEventPublisher interface {
	PublishTurnRecorded(ctx context.Context, event events.TurnRecorded) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventForwarder receives events relayed off the bus. *nats.Publisher
// implements it.
type EventForwarder interface {
	Publish(ctx context.Context, subject string, event events.Event) error
}

type turnEventPublisher struct {
	pubSub    *gochannel.GoChannel
	topicName string
}

func NewTurnEventPublisher(pubSub *gochannel.GoChannel, topicName string) ITurnEventPublisher {
	return &turnEventPublisher{pubSub: pubSub, topicName: topicName}
}

func (p *turnEventPublisher) PublishTurnRecorded(ctx context.Context, event events.TurnRecorded) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", event.EventType())
	msg.SetContext(ctx)

	return p.pubSub.Publish(p.topicName, msg)
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	forwarder EventForwarder
	subject   string
	logger    logger.ILogger
}

// NewConsumerService relays turn events from the bus to forwarder under
// subject. A nil forwarder only logs the events.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	forwarder EventForwarder,
	subject string,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		forwarder: forwarder,
		subject:   subject,
		logger:    logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.TurnRecorded
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("EVENTS", "Dropping malformed turn event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}

	if cs.forwarder == nil {
		cs.logger.Info("EVENTS", "Turn recorded", event.Payload())
		msg.Ack()
		return
	}

	// Events are best effort; a broker outage must not wedge the bus.
	if err := cs.forwarder.Publish(ctx, cs.subject, event); err != nil {
		cs.logger.Warn("EVENTS", "Failed to forward turn event", map[string]interface{}{
			"conversation_id": event.ConversationID,
			"sequence":        event.Sequence,
			"error":           err.Error(),
		})
	}
	msg.Ack()
}
