// Package notify delivers FleetFlow audit events to log, message broker and
// test sinks.
package notify

import (
	"context"
	"time"
)

// EventType identifies an audit event. It doubles as the AMQP routing key.
type EventType string

const (
	EventTripDispatched       EventType = "trip.dispatched"
	EventTripCompleted        EventType = "trip.completed"
	EventTripCancelled        EventType = "trip.cancelled"
	EventTripReset            EventType = "trip.reset"
	EventVehicleInShop        EventType = "vehicle.in_shop"
	EventMaintenanceCompleted EventType = "maintenance.completed"
)

// Event is a human-readable message attached to a trip, vehicle or
// maintenance record.
type Event struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Actor       string         `json:"actor"`
	SubjectType string         `json:"subject_type"`
	SubjectID   string         `json:"subject_id"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Sink receives events after the originating transaction has committed.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
