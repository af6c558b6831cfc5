// Package relay moves audit events from the Postgres outbox to Kafka.
// It completes the transactional outbox pattern: the gate writes events in
// the request path, the relay publishes them in the background, and Kafka
// is the source of truth for downstream consumers.
package relay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = time.Second
)

// Relay polls the gate_audit_outbox table and produces unpublished rows to
// a Kafka topic, marking each row published on acknowledgement.
type Relay struct {
	db     *sql.DB
	client *kgo.Client
	topic  string
	logger *slog.Logger

	batchSize    int
	pollInterval time.Duration
}

// Option configures a Relay.
type Option func(*Relay)

// WithBatchSize caps how many outbox rows one poll publishes.
func WithBatchSize(n int) Option {
	return func(r *Relay) { r.batchSize = n }
}

// WithPollInterval sets the idle sleep between outbox polls.
func WithPollInterval(d time.Duration) Option {
	return func(r *Relay) { r.pollInterval = d }
}

// New connects to Kafka and ensures the audit topic exists.
func New(ctx context.Context, db *sql.DB, brokers []string, topic string, logger *slog.Logger, opts ...Option) (*Relay, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	r := &Relay{
		db:           db,
		client:       client,
		topic:        topic,
		logger:       logger,
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}

// Run polls until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.publishBatch(ctx); err != nil {
				r.logger.WarnContext(ctx, "outbox publish failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id          string
	aggregateID string
	payload     []byte
}

func (r *Relay) publishBatch(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, payload
		FROM gate_audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, r.batchSize)
	if err != nil {
		return fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var pending []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.aggregateID, &row.payload); err != nil {
			return fmt.Errorf("scan outbox row: %w", err)
		}
		pending = append(pending, row)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate outbox rows: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	for _, row := range pending {
		record := &kgo.Record{
			Topic: r.topic,
			Key:   []byte(row.aggregateID),
			Value: row.payload,
		}
		// Synchronous produce keeps ordering per key and makes the
		// published_at update safe.
		if err := r.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			return fmt.Errorf("produce outbox event %s: %w", row.id, err)
		}
		if _, err := r.db.ExecContext(ctx, `
			UPDATE gate_audit_outbox SET published_at = $1 WHERE id = $2
		`, time.Now(), row.id); err != nil {
			// The event may be re-published on the next poll. Consumers
			// must treat the event ID as idempotency key.
			return fmt.Errorf("mark outbox row published: %w", err)
		}
	}

	r.logger.DebugContext(ctx, "outbox batch published", "count", len(pending))
	return nil
}

// Close flushes and releases the Kafka client.
func (r *Relay) Close() {
	r.client.Close()
}
