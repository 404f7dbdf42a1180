package app

import (
	"context"
	"fmt"
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"fleetflow/internal/config"
)

// RabbitMQ holds the broker connection events are published on.
type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	log     logrus.FieldLogger
}

// NewRabbitMQ dials the broker, retrying with exponential backoff up to
// cfg.Retries times.
func NewRabbitMQ(ctx context.Context, cfg config.RabbitMQConfig, log logrus.FieldLogger) (*RabbitMQ, error) {
	retries := max(cfg.Retries, 1)

	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(cfg.URL)
		if err == nil {
			ch, chErr := conn.Channel()
			if chErr != nil {
				_ = conn.Close()
				return nil, fmt.Errorf("failed to open channel: %w", chErr)
			}
			return &RabbitMQ{Conn: conn, Channel: ch, log: log}, nil
		}

		log.WithError(err).WithField("attempt", attempt).Warn("rabbitmq connect failed")
		if attempt == retries {
			break
		}

		backoff := time.Second * time.Duration(math.Pow(2, float64(attempt-1)))
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("failed to connect to rabbitmq after %d attempts: %w", retries, err)
}

// Close closes the channel and the connection.
func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		_ = r.Channel.Close()
	}
	if r.Conn != nil {
		_ = r.Conn.Close()
	}
	r.log.Info("rabbitmq connection closed")
}
