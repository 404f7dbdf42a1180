package domain

import (
	"sort"
	"strings"
)

// LicenseCategory authorizes a driver to operate one type of vehicle.
type LicenseCategory struct {
	Code        string      `yaml:"code"`
	Name        string      `yaml:"name"`
	VehicleType VehicleType `yaml:"vehicle_type"`
}

// DefaultLicenseCategories is the built-in registry: one category per vehicle type.
var DefaultLicenseCategories = []LicenseCategory{
	{Code: "truck", Name: "Truck", VehicleType: VehicleTypeTruck},
	{Code: "van", Name: "Van", VehicleType: VehicleTypeVan},
	{Code: "bike", Name: "Bike", VehicleType: VehicleTypeBike},
}

// LicenseRegistry is a static lookup from category code to vehicle type.
// It is immutable after construction and safe for concurrent use.
type LicenseRegistry struct {
	byCode map[string]LicenseCategory
}

// NewLicenseRegistry builds a registry. Codes are matched case-insensitively;
// later entries override earlier ones with the same code.
func NewLicenseRegistry(categories []LicenseCategory) *LicenseRegistry {
	r := &LicenseRegistry{byCode: make(map[string]LicenseCategory, len(categories))}
	for _, c := range categories {
		r.byCode[normalizeCode(c.Code)] = c
	}
	return r
}

// DefaultLicenseRegistry returns a registry of DefaultLicenseCategories.
func DefaultLicenseRegistry() *LicenseRegistry {
	return NewLicenseRegistry(DefaultLicenseCategories)
}

// Lookup returns the category registered under code.
func (r *LicenseRegistry) Lookup(code string) (LicenseCategory, bool) {
	c, ok := r.byCode[normalizeCode(code)]
	return c, ok
}

// All returns every registered category ordered by code.
func (r *LicenseRegistry) All() []LicenseCategory {
	out := make([]LicenseCategory, 0, len(r.byCode))
	for _, c := range r.byCode {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return normalizeCode(out[i].Code) < normalizeCode(out[j].Code) })
	return out
}

// AllowedVehicleTypes returns the union of vehicle types authorized by codes.
// Unknown codes authorize nothing.
func (r *LicenseRegistry) AllowedVehicleTypes(codes []string) []VehicleType {
	seen := make(map[VehicleType]bool)
	var out []VehicleType
	for _, code := range codes {
		c, ok := r.Lookup(code)
		if !ok || c.VehicleType == "" || seen[c.VehicleType] {
			continue
		}
		seen[c.VehicleType] = true
		out = append(out, c.VehicleType)
	}
	return out
}

// Authorizes reports whether a driver holding codes may operate vehicleType.
// A driver without categories is not restricted.
func (r *LicenseRegistry) Authorizes(codes []string, vehicleType VehicleType) bool {
	if len(codes) == 0 {
		return true
	}
	for _, t := range r.AllowedVehicleTypes(codes) {
		if t == vehicleType {
			return true
		}
	}
	return false
}

// ValidateCodes rejects codes that are not registered.
func (r *LicenseRegistry) ValidateCodes(codes []string) error {
	for _, code := range codes {
		if _, ok := r.Lookup(code); !ok {
			return &InvalidAttributeError{Entity: "driver", Field: "license_categories", Value: code, Reason: "unknown license category"}
		}
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
