package service

import (
	"encoding/json"
	"time"

	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const AuditTrailTopic = "AUDIT_TRAIL"

type IAuditPublisher interface {
	Emit(msg dto.AuditTrailMessage)
}

// auditPublisher pushes audit messages onto the in-process bus. Writing the
// row happens in the consumer, off the request path; a publish failure is
// logged but never fails the business operation that produced it.
type auditPublisher struct {
	pubSub *gochannel.GoChannel
	log    logger.ILogger
}

func NewAuditPublisher(pubSub *gochannel.GoChannel, log logger.ILogger) IAuditPublisher {
	return &auditPublisher{pubSub: pubSub, log: log}
}

func (p *auditPublisher) Emit(m dto.AuditTrailMessage) {
	if m.OccurredAt.IsZero() {
		m.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(m)
	if err != nil {
		p.log.Error("audit", "failed to marshal audit message", map[string]interface{}{
			"kind":  m.Kind,
			"error": err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubSub.Publish(AuditTrailTopic, msg); err != nil {
		p.log.Error("audit", "failed to publish audit message", map[string]interface{}{
			"kind":  m.Kind,
			"error": err.Error(),
		})
	}
}
