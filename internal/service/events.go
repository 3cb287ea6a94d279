package service

import (
	"context"
	"strings"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"go.uber.org/zap"
)

const defaultSubjectPrefix = "ghost"

// eventSink publishes engine events when a publisher is configured.
// Publishing is best effort.
type eventSink struct {
	publisher domain.EventPublisher
	prefix    string
	logger    *zap.Logger
}

func (s *eventSink) subject(parts ...string) string {
	if s == nil {
		return ""
	}
	prefix := s.prefix
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}
	return prefix + "." + strings.Join(parts, ".")
}

func (s *eventSink) emit(ctx context.Context, subject string, payload any) {
	if s == nil || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("subject", subject),
			zap.Error(err))
	}
}

func (s *eventSink) mutation(ctx context.Context, e *domain.MutationEvent) {
	if s == nil {
		return
	}
	s.emit(ctx, s.subject("mutation", strings.ToLower(string(e.EventType))), e)
}
