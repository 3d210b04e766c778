package service

import (
	"context"

	commonredis "pmp-reports/common/redis"

	"go.uber.org/zap"
)

const (
	EventReportGenerated = "report.generated"
	EventReportDeleted   = "report.deleted"
)

// EventPublisher best-effort notification sink for report lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// ReportEvent payload of report lifecycle events
type ReportEvent struct {
	ReportID    string `json:"reportId"`
	ProjectID   string `json:"projectId"`
	ReportMonth int    `json:"reportMonth"`
	ReportYear  int    `json:"reportYear"`
	Version     int    `json:"version,omitempty"`
	UserID      string `json:"userId,omitempty"`
}

// StreamEventPublisher publishes to a redis stream
type StreamEventPublisher struct {
	client *commonredis.Client
	stream string
	logger *zap.Logger
}

func NewStreamEventPublisher(client *commonredis.Client, stream string, logger *zap.Logger) *StreamEventPublisher {
	return &StreamEventPublisher{client: client, stream: stream, logger: logger}
}

func (p *StreamEventPublisher) Publish(ctx context.Context, eventType string, data any) error {
	id, err := commonredis.PublishJSONToStream(ctx, p.client, p.stream, eventType, data)
	if err != nil {
		return err
	}
	p.logger.Debug("Published report event",
		zap.String("stream", p.stream),
		zap.String("type", eventType),
		zap.String("message_id", id),
	)
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }
