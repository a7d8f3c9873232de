package service

import (
	"context"
	"encoding/json"
	"time"

	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/pkg/logger"
	"leave-auth-be/internal/repository/unitofwork"
	"leave-auth-be/pkg/events"
	pktNats "leave-auth-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IAuditConsumerService interface {
	Consume(ctx context.Context) error
}

// auditConsumerService drains the audit topic into the audit_logs table
// and mirrors each entry onto the NATS bus for external subscribers.
type auditConsumerService struct {
	pubSub         *gochannel.GoChannel
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewAuditConsumerService(
	pubSub *gochannel.GoChannel,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IAuditConsumerService {
	return &auditConsumerService{
		pubSub:         pubSub,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (cs *auditConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, AuditTrailTopic)
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

func (cs *auditConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AuditTrailMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("audit", "failed to unmarshal audit message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed payloads are never going to parse, do not retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	entry := &entity.AuditLog{
		Id:              uuid.New(),
		Kind:            payload.Kind,
		Actor:           payload.Actor,
		AffectedSubject: payload.AffectedSubject,
		Detail:          payload.Detail,
		OriginIP:        payload.OriginIP,
		CreatedAt:       payload.OccurredAt,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := uow.AuditRepository().Create(ctx, entry); err != nil {
		cs.log.Error("audit", "failed to persist audit entry", map[string]interface{}{
			"kind":  payload.Kind,
			"error": err.Error(),
		})
		msg.Nack() // storage hiccup, retry
		return
	}

	// Best effort fan-out. The durable row is already written.
	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: payload.Kind,
			Data: map[string]interface{}{
				"actor":            payload.Actor,
				"affected_subject": payload.AffectedSubject,
				"detail":           payload.Detail,
			},
			OccurredAt: entry.CreatedAt,
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.log.Warn("audit", "failed to forward audit event to nats", map[string]interface{}{
				"kind":  payload.Kind,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
