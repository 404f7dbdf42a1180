package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fleetflow/internal/domain"
	"fleetflow/internal/notify"
)

// NotificationService posts audit messages on trips, vehicles and service
// records. It is only called after the originating transaction commits, and
// a delivery failure never fails the operation.
type NotificationService struct {
	sink  notify.Sink
	clock domain.Clock
	log   logrus.FieldLogger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(sink notify.Sink, clock domain.Clock, log logrus.FieldLogger) *NotificationService {
	if sink == nil {
		sink = notify.Discard{}
	}
	return &NotificationService{sink: sink, clock: clock, log: log}
}

// NotifyTripDispatched posts the dispatch message on the trip.
func (s *NotificationService) NotifyTripDispatched(ctx context.Context, trip *domain.Trip) {
	s.send(ctx, notify.Event{
		Type:        notify.EventTripDispatched,
		SubjectType: "trip",
		SubjectID:   trip.ID,
		Message:     fmt.Sprintf("Trip dispatched: %s → %s", trip.Origin, trip.Destination),
		Data: map[string]any{
			"reference":  trip.Reference,
			"vehicle_id": trip.VehicleID,
			"driver_id":  trip.DriverID,
		},
	})
}

// NotifyTripCompleted posts the completion message with the driven distance.
func (s *NotificationService) NotifyTripCompleted(ctx context.Context, trip *domain.Trip) {
	s.send(ctx, notify.Event{
		Type:        notify.EventTripCompleted,
		SubjectType: "trip",
		SubjectID:   trip.ID,
		Message:     fmt.Sprintf("Trip completed. Distance: %.1f km", trip.DistanceKm),
		Data: map[string]any{
			"reference":   trip.Reference,
			"vehicle_id":  trip.VehicleID,
			"distance_km": trip.DistanceKm,
			"revenue":     trip.Revenue,
		},
	})
}

// NotifyTripCancelled posts the cancellation message.
func (s *NotificationService) NotifyTripCancelled(ctx context.Context, trip *domain.Trip, from domain.TripState) {
	s.send(ctx, notify.Event{
		Type:        notify.EventTripCancelled,
		SubjectType: "trip",
		SubjectID:   trip.ID,
		Message:     "Trip cancelled.",
		Data: map[string]any{
			"reference":  trip.Reference,
			"from_state": from,
		},
	})
}

// NotifyTripReset posts the reset message.
func (s *NotificationService) NotifyTripReset(ctx context.Context, trip *domain.Trip) {
	s.send(ctx, notify.Event{
		Type:        notify.EventTripReset,
		SubjectType: "trip",
		SubjectID:   trip.ID,
		Message:     "Trip reset to draft.",
		Data:        map[string]any{"reference": trip.Reference},
	})
}

// NotifyVehicleInShop posts on the vehicle that a service record sent it to the shop.
func (s *NotificationService) NotifyVehicleInShop(ctx context.Context, vehicle *domain.Vehicle, m *domain.Maintenance) {
	s.send(ctx, notify.Event{
		Type:        notify.EventVehicleInShop,
		SubjectType: "vehicle",
		SubjectID:   vehicle.ID,
		Message:     fmt.Sprintf("Vehicle sent to shop: %s (%s)", m.Name, m.Type.Label()),
		Data: map[string]any{
			"maintenance_id": m.ID,
			"vehicle_name":   vehicle.Name,
		},
	})
}

// NotifyMaintenanceCompleted posts on the service record that its vehicle is available again.
func (s *NotificationService) NotifyMaintenanceCompleted(ctx context.Context, m *domain.Maintenance) {
	s.send(ctx, notify.Event{
		Type:        notify.EventMaintenanceCompleted,
		SubjectType: "maintenance",
		SubjectID:   m.ID,
		Message:     "Maintenance completed. Vehicle is now Available.",
		Data:        map[string]any{"vehicle_id": m.VehicleID},
	})
}

func (s *NotificationService) send(ctx context.Context, event notify.Event) {
	event.ID = uuid.New().String()
	event.Actor = ActorFromContext(ctx)
	event.Timestamp = s.clock.Now()

	if err := s.sink.Publish(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event_type": event.Type,
			"subject_id": event.SubjectID,
		}).Error("failed to deliver notification")
	}
}
