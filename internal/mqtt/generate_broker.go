package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pmp-reports/internal/service"

	"go.uber.org/zap"
)

const defaultGenerateTimeout = 2 * time.Minute

// Generator the part of service.ReportService the broker drives
type Generator interface {
	GenerateReport(ctx context.Context, req service.GenerateReportRequest) (*service.GenerateReportResponse, error)
}

// GenerateMessage payload on the generate topic
//
//	{"projectId":"...","reportMonth":3,"reportYear":2025,"userId":"..."}
type GenerateMessage struct {
	ProjectID   string `json:"projectId"`
	ReportMonth int    `json:"reportMonth"`
	ReportYear  int    `json:"reportYear"`
	UserID      string `json:"userId"`
}

// GenerateBroker turns generate messages into report generations
type GenerateBroker struct {
	generator Generator
	timeout   time.Duration
	logger    *zap.Logger
}

func NewGenerateBroker(generator Generator, timeout time.Duration, logger *zap.Logger) *GenerateBroker {
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &GenerateBroker{generator: generator, timeout: timeout, logger: logger}
}

// HandleMessage matches common/mqtt.MessageHandler. Malformed messages are
// logged and dropped; generation errors are returned for the client to log.
func (b *GenerateBroker) HandleMessage(topic string, payload []byte) error {
	var msg GenerateMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		b.logger.Warn("Dropping malformed generate message",
			zap.String("topic", topic),
			zap.Int("payload_size", len(payload)),
			zap.Error(err),
		)
		return nil
	}
	if strings.TrimSpace(msg.ProjectID) == "" {
		b.logger.Warn("Dropping generate message without projectId", zap.String("topic", topic))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	resp, err := b.generator.GenerateReport(ctx, service.GenerateReportRequest{
		ProjectID:   msg.ProjectID,
		ReportMonth: msg.ReportMonth,
		ReportYear:  msg.ReportYear,
		UserID:      msg.UserID,
	})
	if err != nil {
		return fmt.Errorf("generate report for project %s: %w", msg.ProjectID, err)
	}

	b.logger.Info("Report generated from MQTT trigger",
		zap.String("topic", topic),
		zap.String("report_id", resp.Report.ReportID),
		zap.String("project_id", msg.ProjectID),
		zap.Int("version", resp.Report.Version),
	)
	return nil
}
