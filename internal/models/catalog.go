package models

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog holds the canonical enumerations driving the edit form and the
// statistics reducer: department list, per-category activity checklists,
// health-condition labels and the substrings that mark a device as broken.
type Catalog struct {
	Version          int                 `yaml:"version"`
	Departments      []string            `yaml:"departments"`
	DepartmentOther  string              `yaml:"department_other"`
	DeviceStatuses   []string            `yaml:"device_statuses"`
	BrokenIndicators []string            `yaml:"broken_indicators"`
	Activities       map[string][]string `yaml:"activities"`
}

// DefaultCatalog parses the embedded catalog document. The embedded document
// is part of the build, so a parse failure here is a programming error.
func DefaultCatalog() *Catalog {
	c, err := parseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog override from disk, falling back to the
// embedded document when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Departments) == 0 {
		return nil, fmt.Errorf("catalog has no departments")
	}
	if len(c.Activities[DeviceComputer]) == 0 || len(c.Activities[DevicePrinter]) == 0 {
		return nil, fmt.Errorf("catalog missing activity checklist for a device category")
	}
	return &c, nil
}

// ChecklistFor returns the standard activity checklist for a device category.
func (c *Catalog) ChecklistFor(device string) []string {
	return c.Activities[device]
}

// KnownDepartment reports whether d is one of the canonical departments.
func (c *Catalog) KnownDepartment(d string) bool {
	for _, dept := range c.Departments {
		if dept == d {
			return true
		}
	}
	return false
}

// ResolveDepartment applies the free-text override: when the chosen
// department is the "Others" sentinel, the override value (or a plain
// "Others") takes its place.
func (c *Catalog) ResolveDepartment(chosen, override string) string {
	if chosen != c.DepartmentOther {
		return chosen
	}
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	return "Others"
}

// IsBroken reports whether a health-condition label marks the device as
// broken. Labels are free-form localized text, so detection is substring
// containment, not equality.
func (c *Catalog) IsBroken(deviceStatus string) bool {
	health := strings.ToLower(deviceStatus)
	for _, ind := range c.BrokenIndicators {
		if strings.Contains(health, strings.ToLower(ind)) {
			return true
		}
	}
	return false
}
