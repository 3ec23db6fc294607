// Package audit records one summary document per handled gateway request
// to MongoDB. The store is observability only: nothing in the request path
// reads it back, so request semantics stay stateless.
package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/stringerc/syncscript-gateway/internal/logger"
)

const (
	collectionName = "gateway-requests"
	insertTimeout  = 5 * time.Second
)

// Record is one audited gateway request
type Record struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID       string             `bson:"request_id" json:"request_id"`
	CorrelationID   string             `bson:"correlation_id,omitempty" json:"correlation_id,omitempty"`
	Endpoint        string             `bson:"endpoint" json:"endpoint"`
	Method          string             `bson:"method" json:"method"`
	StatusCode      int                `bson:"status_code" json:"status_code"`
	UpstreamService string             `bson:"upstream_service,omitempty" json:"upstream_service,omitempty"`
	UpstreamOutcome string             `bson:"upstream_outcome,omitempty" json:"upstream_outcome,omitempty"`
	UpstreamStatus  int                `bson:"upstream_status,omitempty" json:"upstream_status,omitempty"`
	DurationMS      int64              `bson:"duration_ms" json:"duration_ms"`
	Environment     string             `bson:"environment" json:"environment"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// Store writes audit records. A disabled store accepts and drops records,
// so callers never branch on whether auditing is configured.
type Store struct {
	client      *mongo.Client
	collection  *mongo.Collection
	environment string
	enabled     bool
}

// NewDisabledStore returns a store that accepts and drops records
func NewDisabledStore() *Store {
	return &Store{enabled: false}
}

// NewStore connects to MongoDB when auditing is enabled; otherwise it
// returns a disabled store and no error.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	if !cfg.Enabled {
		return &Store{enabled: false}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI).SetAppName(cfg.AppName)

	logger.Info("Connecting to audit database",
		"database", cfg.DatabaseName,
		"uri", cfg.MaskedURI(),
	)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	collection := client.Database(cfg.DatabaseName).Collection(collectionName)

	store := &Store{
		client:      client,
		collection:  collection,
		environment: cfg.Environment,
		enabled:     true,
	}

	if err := store.ensureIndexes(ctx); err != nil {
		logger.Warn("Failed to create audit indexes", "error", err)
	}

	logger.Info("Audit store connected", "database", cfg.DatabaseName)
	return store, nil
}

// Enabled reports whether records are actually persisted
func (s *Store) Enabled() bool {
	return s.enabled
}

// Save persists one record asynchronously. Audit failures are logged and
// dropped; they must never affect the client response.
func (s *Store) Save(rec Record) {
	if !s.enabled {
		return
	}

	rec.CreatedAt = time.Now().UTC()
	rec.Environment = s.environment

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		defer cancel()

		if _, err := s.collection.InsertOne(ctx, rec); err != nil {
			logger.Warn("Failed to insert audit record",
				"endpoint", rec.Endpoint,
				"error", err,
			)
		}
	}()
}

// HealthCheck pings the audit database
func (s *Store) HealthCheck(ctx context.Context) error {
	if !s.enabled {
		return fmt.Errorf("audit store disabled")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from the audit database
func (s *Store) Close(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// ensureIndexes creates the query indexes used by operations dashboards
func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
		{Keys: bson.D{{Key: "endpoint", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := s.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
