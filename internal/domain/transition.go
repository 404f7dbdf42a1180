package domain

import "time"

// TripTransition is the joint result of a trip lifecycle action. The trip,
// vehicle and driver states are computed together and must be committed
// together.
type TripTransition struct {
	Trip    Trip
	Vehicle Vehicle
	Driver  Driver
}

// Dispatch moves a draft trip out, marking its vehicle on trip and its driver
// on duty. The vehicle must still be available.
func Dispatch(t Trip, v Vehicle, d Driver) (TripTransition, error) {
	if t.State != TripStateDraft {
		return TripTransition{}, &InvalidStateTransitionError{
			Entity: "trip", ID: t.ID, From: string(t.State), Action: "dispatch",
			Message: "only draft trips can be dispatched",
		}
	}
	if v.State != VehicleStateAvailable {
		return TripTransition{}, &ResourceUnavailableError{VehicleID: v.ID, VehicleName: v.Name, CurrentState: v.State}
	}
	v.State = VehicleStateOnTrip
	d.Status = DriverStatusOnDuty
	t.State = TripStateDispatched
	return TripTransition{Trip: t, Vehicle: v, Driver: d}, nil
}

// Complete closes a dispatched trip, updates the odometer and releases the
// vehicle and driver.
func Complete(t Trip, v Vehicle, d Driver, now time.Time) (TripTransition, error) {
	if t.State != TripStateDispatched {
		return TripTransition{}, &InvalidStateTransitionError{
			Entity: "trip", ID: t.ID, From: string(t.State), Action: "complete",
			Message: "only dispatched trips can be completed",
		}
	}
	if t.OdometerEnd != nil {
		if *t.OdometerEnd < v.Odometer {
			return TripTransition{}, &InvalidAttributeError{
				Entity: "trip", Field: "odometer_end", Value: *t.OdometerEnd,
				Reason: "must not be below the vehicle odometer",
			}
		}
		v.Odometer = *t.OdometerEnd
		t.DeriveDistance()
	}
	completed := Date(now)
	v.State = VehicleStateAvailable
	d.Status = DriverStatusOffDuty
	t.State = TripStateCompleted
	t.CompletedDate = &completed
	return TripTransition{Trip: t, Vehicle: v, Driver: d}, nil
}

// Cancel aborts a trip that has not completed. A dispatched trip hands its
// vehicle and driver back.
func Cancel(t Trip, v Vehicle, d Driver) (TripTransition, error) {
	if t.State == TripStateCompleted || t.State == TripStateCancelled {
		msg := "completed trips cannot be cancelled"
		if t.State == TripStateCancelled {
			msg = "trip is already cancelled"
		}
		return TripTransition{}, &InvalidStateTransitionError{
			Entity: "trip", ID: t.ID, From: string(t.State), Action: "cancel", Message: msg,
		}
	}
	if t.State == TripStateDispatched {
		v.State = VehicleStateAvailable
		d.Status = DriverStatusOffDuty
	}
	t.State = TripStateCancelled
	return TripTransition{Trip: t, Vehicle: v, Driver: d}, nil
}

// ResetToDraft reopens a cancelled trip.
func ResetToDraft(t Trip) (Trip, error) {
	if t.State != TripStateCancelled {
		return Trip{}, &InvalidStateTransitionError{
			Entity: "trip", ID: t.ID, From: string(t.State), Action: "reset to draft",
			Message: "only cancelled trips can be reset to draft",
		}
	}
	t.State = TripStateDraft
	return t, nil
}

// MaintenanceTransition is the joint result of a maintenance action.
// Restored reports whether the vehicle was released from the shop.
type MaintenanceTransition struct {
	Maintenance Maintenance
	Vehicle     Vehicle
	Restored    bool
}

// OpenMaintenance sends the vehicle to the shop regardless of its prior state.
func OpenMaintenance(m Maintenance, v Vehicle) MaintenanceTransition {
	m.State = MaintenanceStateOpen
	m.CompletedDate = nil
	v.State = VehicleStateInShop
	return MaintenanceTransition{Maintenance: m, Vehicle: v}
}

// CompleteMaintenance closes an open service record. The vehicle is restored
// to available whenever no other open record exists for it, including after
// a manual override moved it out of the shop.
func CompleteMaintenance(m Maintenance, v Vehicle, otherOpen int, now time.Time) (MaintenanceTransition, error) {
	if m.State != MaintenanceStateOpen {
		return MaintenanceTransition{}, &InvalidStateTransitionError{
			Entity: "maintenance", ID: m.ID, From: string(m.State), Action: "complete",
			Message: "only open maintenance can be completed",
		}
	}
	completed := Date(now)
	m.State = MaintenanceStateDone
	m.CompletedDate = &completed
	v, restored := releaseFromShop(v, otherOpen)
	return MaintenanceTransition{Maintenance: m, Vehicle: v, Restored: restored}, nil
}

// RemoveMaintenance computes the vehicle state after a service record is
// deleted. Removing the last open record releases the vehicle like completion.
func RemoveMaintenance(m Maintenance, v Vehicle, otherOpen int) MaintenanceTransition {
	restored := false
	if m.State == MaintenanceStateOpen {
		v, restored = releaseFromShop(v, otherOpen)
	}
	return MaintenanceTransition{Maintenance: m, Vehicle: v, Restored: restored}
}

func releaseFromShop(v Vehicle, otherOpen int) (Vehicle, bool) {
	if otherOpen > 0 {
		return v, false
	}
	v.State = VehicleStateAvailable
	return v, true
}
