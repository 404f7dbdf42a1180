package domain

import "time"

// MaintenanceType classifies a service record.
type MaintenanceType string

const (
	MaintenanceTypePreventive MaintenanceType = "preventive"
	MaintenanceTypeCorrective MaintenanceType = "corrective"
	MaintenanceTypeInspection MaintenanceType = "inspection"
	MaintenanceTypeTyre       MaintenanceType = "tyre"
	MaintenanceTypeOilChange  MaintenanceType = "oil_change"
	MaintenanceTypeOther      MaintenanceType = "other"
)

var maintenanceTypeLabels = map[MaintenanceType]string{
	MaintenanceTypePreventive: "Preventive",
	MaintenanceTypeCorrective: "Corrective / Repair",
	MaintenanceTypeInspection: "Inspection",
	MaintenanceTypeTyre:       "Tyre Change",
	MaintenanceTypeOilChange:  "Oil Change",
	MaintenanceTypeOther:      "Other",
}

// Valid reports whether t is a known maintenance type.
func (t MaintenanceType) Valid() bool {
	_, ok := maintenanceTypeLabels[t]
	return ok
}

// Label returns the human-readable name of the type.
func (t MaintenanceType) Label() string {
	if label, ok := maintenanceTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// MaintenanceState represents the state of a service record.
type MaintenanceState string

const (
	MaintenanceStateOpen MaintenanceState = "open"
	MaintenanceStateDone MaintenanceState = "done"
)

// Maintenance is a service record that keeps its vehicle in the shop while open.
type Maintenance struct {
	ID                string
	VehicleID         string
	Name              string // service description
	Type              MaintenanceType
	ServiceDate       time.Time
	CompletedDate     *time.Time
	Cost              float64
	OdometerAtService float64
	Vendor            string
	Notes             string
	State             MaintenanceState
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks the static invariants of a service record.
func (m *Maintenance) Validate() error {
	if m.VehicleID == "" {
		return &InvalidAttributeError{Entity: "maintenance", Field: "vehicle_id", Reason: "is required"}
	}
	if m.Name == "" {
		return &InvalidAttributeError{Entity: "maintenance", Field: "name", Reason: "is required"}
	}
	if !m.Type.Valid() {
		return &InvalidAttributeError{Entity: "maintenance", Field: "maintenance_type", Value: m.Type, Reason: "unknown type"}
	}
	if m.Cost < 0 {
		return &InvalidAttributeError{Entity: "maintenance", Field: "cost", Value: m.Cost, Reason: "must not be negative"}
	}
	return nil
}
