package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fleetflow/internal/domain"
)

// licenseCategoriesFile is the YAML layout of a license category registry:
//
//	categories:
//	  - code: hmv
//	    name: Heavy Motor Vehicle
//	    vehicle_type: truck
type licenseCategoriesFile struct {
	Categories []domain.LicenseCategory `yaml:"categories"`
}

// LoadLicenseRegistry builds the license category registry. An empty path
// yields the built-in registry.
func LoadLicenseRegistry(path string) (*domain.LicenseRegistry, error) {
	if path == "" {
		return domain.DefaultLicenseRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read license categories: %w", err)
	}

	return ParseLicenseCategories(data)
}

// ParseLicenseCategories parses a YAML registry and validates every entry.
func ParseLicenseCategories(data []byte) (*domain.LicenseRegistry, error) {
	var file licenseCategoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse license categories: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("license categories file defines no categories")
	}

	for i, c := range file.Categories {
		if c.Code == "" {
			return nil, fmt.Errorf("license category %d: code is required", i)
		}
		if !c.VehicleType.Valid() {
			return nil, fmt.Errorf("license category %q: unknown vehicle type %q", c.Code, c.VehicleType)
		}
	}

	return domain.NewLicenseRegistry(file.Categories), nil
}
