package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/gallery-service/internal/events"
)

// AuditService writes auth audit events to the structured log. Event
// payloads contain identifiers only; secrets and token strings never reach
// the dispatcher.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to all auth audit events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventAdminBootstrapped,
		events.EventAdminLoggedIn,
		events.EventAdminLoginFailed,
		events.EventSessionRefreshed,
		events.EventSessionDestroyed,
		events.EventPasswordChanged,
		events.EventPasswordReset,
		events.EventAlbumUnlocked,
		events.EventAlbumUnlockFailed,
	} {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

func (a *AuditService) record(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload),
	)
	return nil
}
