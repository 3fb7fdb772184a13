package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/storefront/gateway/internal/core/ports"
)

const requestLogCollection = "request_log"

// RequestLogRepository appends request records. Nothing ever reads them
// back through the application; the collection is an audit trail.
type RequestLogRepository struct {
	col *mongo.Collection
}

func NewRequestLogRepository(db *mongo.Database) *RequestLogRepository {
	return &RequestLogRepository{col: db.Collection(requestLogCollection)}
}

type requestLogDoc struct {
	Time      time.Time `bson:"time"`
	RequestID string    `bson:"request_id,omitempty"`
	Method    string    `bson:"method"`
	Path      string    `bson:"path"`
	Status    int       `bson:"status"`
	Principal string    `bson:"principal,omitempty"`
	Payload   string    `bson:"payload,omitempty"`
	LatencyMS int64     `bson:"latency_ms"`
}

func (r *RequestLogRepository) Append(ctx context.Context, rec ports.RequestRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := requestLogDoc{
		Time:      rec.Time.UTC(),
		RequestID: rec.RequestID,
		Method:    rec.Method,
		Path:      rec.Path,
		Status:    rec.Status,
		Principal: rec.Principal,
		Payload:   rec.Payload,
		LatencyMS: rec.Latency.Milliseconds(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("append request log: %w", err)
	}
	return nil
}

func (r *RequestLogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "time", Value: -1}},
	})
	return err
}
