package model

type ResourceType string

const (
	ResourceEmployee ResourceType = "employee"
	ResourceProject  ResourceType = "project"
)

// Employee is a directory record from the employee API.
type Employee struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Active bool   `json:"aktiv" yaml:"aktiv"`
}

// Project is a directory record from the project API.
type Project struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
}

// Resource is one row of the planning board in either grouping.
type Resource struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Type   ResourceType `json:"type"`
	Active bool         `json:"active"`
	Status string       `json:"status,omitempty"`
}
