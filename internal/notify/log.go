package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSink writes events to a structured logger.
type LogSink struct {
	log logrus.FieldLogger
}

// NewLogSink creates a sink logging through log.
func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{log: log}
}

// Publish logs the event at info level.
func (s *LogSink) Publish(ctx context.Context, event Event) error {
	s.log.WithFields(logrus.Fields{
		"event_id":     event.ID,
		"event_type":   event.Type,
		"actor":        event.Actor,
		"subject_type": event.SubjectType,
		"subject_id":   event.SubjectID,
	}).Info(event.Message)
	return nil
}
