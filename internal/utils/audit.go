package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qcbd/app-beneficiary/internal/config"
	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action     string             `bson:"action" json:"action"`
	Resource   string             `bson:"resource" json:"resource"`
	ResourceID string             `bson:"resource_id" json:"resource_id"`
	OldValue   interface{}        `bson:"old_value,omitempty" json:"old_value,omitempty"`
	NewValue   interface{}        `bson:"new_value,omitempty" json:"new_value,omitempty"`
	UserID     string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	IPAddress  string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	RequestID  string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
	Metadata   map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Audit constants
const (
	AuditActionCreate       = "CREATE"
	AuditActionUpdate       = "UPDATE"
	AuditActionDelete       = "DELETE"
	AuditActionStatusChange = "STATUS_CHANGE"
	AuditActionUpload       = "UPLOAD"
	AuditActionExport       = "EXPORT"

	AuditResourceApplication = "orphan_application"
	AuditResourceDocument    = "orphan_document"
	AuditResourceUser        = "user"
	AuditResourceMedia       = "user_media"
)

// AuditContext contains context information for audit logging
type AuditContext struct {
	UserID    string
	IPAddress string
	UserAgent string
	RequestID string
}

// AuditWriter persists batches of audit logs
type AuditWriter interface {
	WriteAuditLogs(ctx context.Context, logs []AuditLog) error
}

// MongoAuditWriter writes audit logs into a MongoDB collection
type MongoAuditWriter struct {
	collection *mongo.Collection
}

// NewMongoAuditWriter creates an audit writer backed by collection
func NewMongoAuditWriter(collection *mongo.Collection) *MongoAuditWriter {
	return &MongoAuditWriter{collection: collection}
}

// WriteAuditLogs bulk inserts logs, unordered
func (w *MongoAuditWriter) WriteAuditLogs(ctx context.Context, logs []AuditLog) error {
	if len(logs) == 0 {
		return nil
	}

	operations := make([]mongo.WriteModel, 0, len(logs))
	for _, log := range logs {
		operations = append(operations, mongo.NewInsertOneModel().SetDocument(log))
	}

	if _, err := w.collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to insert audit logs: %w", err)
	}
	return nil
}

// AuditWorker manages asynchronous audit logging
type AuditWorker struct {
	auditChan chan AuditLog
	writer    AuditWriter
	workers   int
	wg        sync.WaitGroup
}

var (
	auditWorker *AuditWorker
	auditWriter AuditWriter
	auditMu     sync.RWMutex
)

const (
	auditBatchSize     = 100
	auditBatchInterval = 100 * time.Millisecond
	auditWriteTimeout  = 5 * time.Second
)

// InitAuditWorker starts the audit worker pool over writer. Calling it again
// while a worker is running is a no-op.
func InitAuditWorker(writer AuditWriter, workers int, bufferSize int) {
	auditMu.Lock()
	defer auditMu.Unlock()

	auditWriter = writer
	if auditWorker != nil {
		return
	}
	if workers < 1 {
		workers = 1
	}

	auditWorker = &AuditWorker{
		auditChan: make(chan AuditLog, bufferSize),
		writer:    writer,
		workers:   workers,
	}
	auditWorker.start()
}

func (aw *AuditWorker) start() {
	aw.wg.Add(aw.workers)
	for i := 0; i < aw.workers; i++ {
		go func() {
			defer aw.wg.Done()
			aw.processAuditLogs()
		}()
	}

	logging.Logger.Info("audit worker started with batched processing",
		zap.Int("workers", aw.workers),
		zap.Int("buffer_size", cap(aw.auditChan)))
}

func (aw *AuditWorker) processAuditLogs() {
	ticker := time.NewTicker(auditBatchInterval)
	defer ticker.Stop()

	batch := make([]AuditLog, 0, auditBatchSize)

	for {
		select {
		case auditLog, ok := <-aw.auditChan:
			if !ok {
				aw.flushBatch(batch)
				return
			}
			batch = append(batch, auditLog)
			if len(batch) >= auditBatchSize {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (aw *AuditWorker) flushBatch(batch []AuditLog) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := aw.writer.WriteAuditLogs(ctx, batch); err != nil {
		logging.Logger.Error("failed to insert audit log batch",
			zap.Error(err),
			zap.Int("batch_size", len(batch)))
		return
	}

	logging.Logger.Debug("audit log batch inserted", zap.Int("batch_size", len(batch)))
}

// StopAuditWorker drains pending entries and stops the worker pool
func StopAuditWorker() {
	auditMu.Lock()
	aw := auditWorker
	auditWorker = nil
	auditWriter = nil
	auditMu.Unlock()

	if aw == nil {
		return
	}
	close(aw.auditChan)
	aw.wg.Wait()
}

// LogAuditEvent records an audit event asynchronously. It falls back to a
// synchronous write when the worker is absent or its buffer is full.
func LogAuditEvent(ctx context.Context, auditCtx AuditContext, action, resource, resourceID string, oldValue, newValue interface{}, metadata map[string]string) error {
	if config.AppConfig == nil || !config.AppConfig.AuditLogsEnabled {
		return nil
	}

	auditMu.RLock()
	defer auditMu.RUnlock()

	if auditWriter == nil {
		return nil
	}

	auditLog := AuditLog{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValue:   oldValue,
		NewValue:   newValue,
		UserID:     auditCtx.UserID,
		IPAddress:  auditCtx.IPAddress,
		UserAgent:  auditCtx.UserAgent,
		RequestID:  auditCtx.RequestID,
		Timestamp:  time.Now().UTC(),
		Metadata:   metadata,
	}

	if auditWorker != nil {
		select {
		case auditWorker.auditChan <- auditLog:
			return nil
		default:
			logging.Logger.Warn("audit channel full, falling back to synchronous logging",
				zap.String("action", action),
				zap.String("resource", resource))
		}
	}

	dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if err := auditWriter.WriteAuditLogs(dbCtx, []AuditLog{auditLog}); err != nil {
		logging.Logger.Error("failed to insert audit log",
			zap.Error(err),
			zap.String("action", action),
			zap.String("resource_id", resourceID))
		return err
	}
	return nil
}

// GetAuditContextFromGin extracts audit context from the Gin context
func GetAuditContextFromGin(c *gin.Context) AuditContext {
	auditCtx := AuditContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString(models.RequestIDContextKey),
	}
	if auditCtx.RequestID == "" {
		auditCtx.RequestID = c.GetHeader("X-Request-ID")
	}
	if value, exists := c.Get(models.PrincipalContextKey); exists {
		if principal, ok := value.(*models.Principal); ok && principal != nil {
			auditCtx.UserID = principal.UserID
		}
	}
	return auditCtx
}

type auditContextKey struct{}

// WithAuditContext returns a copy of ctx carrying auditCtx
func WithAuditContext(ctx context.Context, auditCtx AuditContext) context.Context {
	return context.WithValue(ctx, auditContextKey{}, auditCtx)
}

// AuditContextFrom returns the audit context stored in ctx, if any
func AuditContextFrom(ctx context.Context) AuditContext {
	if auditCtx, ok := ctx.Value(auditContextKey{}).(AuditContext); ok {
		return auditCtx
	}
	return AuditContext{}
}
