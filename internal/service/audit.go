package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/scorekeep/server/internal/domain"
	"github.com/scorekeep/server/internal/infra"
	"github.com/scorekeep/server/internal/repository"
)

// AuditLog records admin actions: one append-only row inside the caller's
// transaction, plus a best-effort event published to Kafka after commit.
type AuditLog struct {
	repo     repository.AuditRepository
	producer *infra.KafkaProducer
	topic    string
	logger   *slog.Logger
}

// NewAuditLog creates an AuditLog.
func NewAuditLog(repo repository.AuditRepository, producer *infra.KafkaProducer, topic string, logger *slog.Logger) *AuditLog {
	return &AuditLog{repo: repo, producer: producer, topic: topic, logger: logger}
}

// Record inserts the audit row within the caller's transaction. The mutation
// and its audit entry commit or roll back together.
func (a *AuditLog) Record(ctx context.Context, db repository.DBTX, action *domain.AdminAction) error {
	return a.repo.Insert(ctx, db, action)
}

// Publish emits the audit event after the transaction committed. The row is
// the source of truth; a publish failure is logged, never surfaced.
func (a *AuditLog) Publish(action domain.AdminAction) {
	event := domain.NewAuditEvent(action)
	value, err := json.Marshal(event)
	if err != nil {
		a.logger.Error("marshal audit event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.producer.Publish(ctx, a.topic, event.PartitionKey(), value); err != nil {
		a.logger.Error("publish audit event", "error", err, "action", action.ActionType)
	}
}
