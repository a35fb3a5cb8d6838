// Package worker consumes analytics events off JetStream and persists
// them into an audit table for offline analysis.
package worker

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/clipstream/internal/platform/analytics"
)

// StartAuditConsumer pulls analytics.* events and appends them to the
// analytics_events table. Event ids deduplicate redeliveries, so a
// crashed batch can be safely replayed.
func StartAuditConsumer(ctx context.Context, nc *nats.Conn, log *zap.Logger) {
	js, err := nc.JetStream()
	if err != nil {
		log.Error("audit consumer: jetstream", zap.Error(err))
		return
	}

	sub, err := js.PullSubscribe("analytics.>", "content_audit")
	if err != nil {
		log.Error("audit consumer: subscribe", zap.Error(err))
		return
	}

	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		log.Warn("audit consumer: DATABASE_URL not set, consumer disabled")
		return
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Error("audit consumer: pgxpool", zap.Error(err))
		return
	}
	defer pool.Close()

	batchSize := envInt("WORKER_BATCH_SIZE", 100)
	maxWait := time.Duration(envInt("WORKER_BATCH_INTERVAL_MS", 2000)) * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := sub.Fetch(batchSize, nats.MaxWait(maxWait))
		if err != nil {
			if err == nats.ErrTimeout {
				continue
			}
			log.Error("audit consumer: fetch", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, m := range msgs {
			if err := storeEvent(ctx, pool, m); err != nil {
				log.Error("audit consumer: store", zap.String("subject", m.Subject), zap.Error(err))
				if err := m.Nak(); err != nil {
					log.Error("audit consumer: nak", zap.Error(err))
				}
				continue
			}
			if err := m.Ack(); err != nil {
				log.Error("audit consumer: ack", zap.Error(err))
			}
		}
	}
}

func storeEvent(ctx context.Context, pool *pgxpool.Pool, m *nats.Msg) error {
	var ev analytics.Event
	if err := json.Unmarshal(m.Data, &ev); err != nil {
		// Malformed payloads are dropped, not retried.
		return nil
	}
	_, err := pool.Exec(ctx, `
		INSERT INTO analytics_events (event_id, event_name, subject, viewer_id, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING`,
		ev.EventID, ev.EventName, m.Subject, ev.ViewerID, ev.OccurredAt, m.Data)
	return err
}

func envInt(key string, def int) int {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return def
}
