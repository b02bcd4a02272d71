// Package nats implements the workflow notification dispatcher on NATS
// JetStream. Events are published asynchronously; delivery is best-effort
// and a broker outage never blocks or fails a workflow transition.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/medwave/review-backend/internal/config"
	"github.com/medwave/review-backend/internal/domain"
)

// Notifier publishes workflow events to subjects of the form
// "<prefix>.workflow.<event_type>".
type Notifier struct {
	log    *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	prefix string
}

// NewNotifier connects to NATS and returns a ready notifier. The connection
// retries in the background on initial failure, so a broker that is still
// starting up does not fail application boot.
func NewNotifier(logger *slog.Logger, cfg config.NATSConfig) (*Notifier, error) {
	log := logger.With("component", "nats_notifier")

	conn, err := nats.Connect(cfg.URL,
		nats.Name("review-backend"),
		nats.Timeout(cfg.ConnectWait),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(conn,
		jetstream.WithPublishAsyncErrHandler(func(_ jetstream.JetStream, msg *nats.Msg, err error) {
			log.Warn("async publish failed", "subject", msg.Subject, "error", err)
		}),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	return &Notifier{
		log:    log,
		conn:   conn,
		js:     js,
		prefix: cfg.SubjectPrefix,
	}, nil
}

// Publish hands the event to JetStream without waiting for the ack. Ack
// failures are reported through the async error handler; the caller only
// sees marshalling and enqueue errors.
func (n *Notifier) Publish(_ context.Context, event domain.WorkflowEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := Subject(n.prefix, event.EventType)
	if _, err := n.js.PublishAsync(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	return nil
}

// Connected reports whether the underlying connection is currently up.
func (n *Notifier) Connected() bool {
	return n.conn.IsConnected()
}

// Close drains the connection, flushing pending async publishes.
func (n *Notifier) Close() error {
	if err := n.conn.Drain(); err != nil {
		return fmt.Errorf("nats drain: %w", err)
	}
	return nil
}

// Subject builds the publish subject for an event type, e.g.
// "medwave.workflow.publish_video".
func Subject(prefix, eventType string) string {
	return prefix + ".workflow." + strings.ToLower(eventType)
}
