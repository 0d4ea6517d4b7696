// Package resource describes the service instance producing telemetry.
package resource

import (
	"github.com/GriffinCanCode/minitel/internal/telemetry/attr"
	"github.com/google/uuid"
)

// Resource identifies the source of telemetry data so downstream
// consumers can filter and group by service, version and environment.
type Resource struct {
	Service     string   `json:"service"`
	Version     string   `json:"version"`
	Environment string   `json:"environment"`
	InstanceID  string   `json:"instance_id"`
	Attributes  attr.Map `json:"attributes,omitempty"`
}

// New creates a resource descriptor. Version and environment default to
// "0.0.0" and "development"; the instance id is minted per process.
func New(service, version, environment string, attributes map[string]interface{}) Resource {
	if version == "" {
		version = "0.0.0"
	}
	if environment == "" {
		environment = "development"
	}
	return Resource{
		Service:     service,
		Version:     version,
		Environment: environment,
		InstanceID:  uuid.NewString(),
		Attributes:  attr.From(attributes),
	}
}
