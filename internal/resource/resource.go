// Package resource implements the generic resource CRUD API served by the
// sample service.
package resource

import (
	"time"

	"github.com/cityservices/api"
	"github.com/cityservices/api/internal/store"
)

// Status is the lifecycle state of a resource.
type Status string

// Resource statuses.
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

// Resource is a named record with free-form tags.
type Resource struct {
	ID          string    `json:"id" format:"uuid" required:"true"`
	Name        string    `json:"name" minLength:"1" required:"true"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status" enum:"active,inactive,pending" required:"true"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt" required:"true"`
	UpdatedAt   time.Time `json:"updatedAt" required:"true"`
}

// Filter selects a page of resources, optionally by name substring.
type Filter struct {
	Name string
	Page store.Page
}

// ListRequest is the query of GET /resources. Unknown keys are rejected.
type ListRequest struct {
	Page     int    `query:"page" minimum:"0" maximum:"1000000" doc:"Page number, starting at 1"`
	PageSize int    `query:"page_size" minimum:"1" maximum:"100" doc:"Number of items per page"`
	Name     string `query:"name" doc:"Case-insensitive name filter"`
}

// ListResponse is one page of resources.
type ListResponse struct {
	Items    []Resource `json:"items" required:"true"`
	Total    int        `json:"total" minimum:"0" required:"true"`
	Page     int        `json:"page" minimum:"1" required:"true"`
	PageSize int        `json:"page_size" minimum:"1" required:"true"`
}

// CreateInput is the body of POST /resources.
type CreateInput struct {
	Name        string   `json:"name" minLength:"1" required:"true" doc:"Display name"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status,omitempty" enum:"active,inactive,pending" doc:"Defaults to pending"`
	Tags        []string `json:"tags,omitempty"`
}

// CreateRequest wraps the create body.
type CreateRequest struct {
	Body CreateInput
}

// Validate rejects a create without a name. A request with no body at all
// skips the body schema and is stopped here.
func (r *CreateRequest) Validate() error {
	if r.Body.Name != "" {
		return nil
	}
	return &api.ValidationError{
		Source:  api.SourceBody,
		Details: []api.Issue{{Path: "name", Message: "name is required"}},
	}
}

// UpdateInput is the body of PUT /resources/{id}. Absent fields are left
// unchanged.
type UpdateInput struct {
	Name        *string   `json:"name,omitempty" minLength:"1"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty" enum:"active,inactive,pending"`
	Tags        *[]string `json:"tags,omitempty"`
}

// UpdateRequest addresses a resource and carries the changes.
type UpdateRequest struct {
	ID   string `path:"id" format:"uuid"`
	Body UpdateInput
}

// IDRequest addresses a single resource.
type IDRequest struct {
	ID string `path:"id" format:"uuid" doc:"Resource ID"`
}
