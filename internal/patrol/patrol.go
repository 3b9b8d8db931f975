// Package patrol implements the police patrol CRUD API.
package patrol

import (
	"time"

	"github.com/cityservices/api"
	"github.com/cityservices/api/internal/store"
)

// Type is how a patrol is carried out.
type Type string

// Patrol types.
const (
	TypeCar   Type = "car"
	TypeFoot  Type = "foot"
	TypeBike  Type = "bike"
	TypeHorse Type = "horse"
)

// Patrol is a single patrol shift, optionally linked to a case.
type Patrol struct {
	ID         string     `json:"id" format:"uuid" required:"true"`
	CaseID     string     `json:"caseId,omitempty"`
	Location   string     `json:"location" minLength:"1" required:"true"`
	StartedAt  time.Time  `json:"startedAt" required:"true"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
	PatrolType Type       `json:"patrolType" enum:"car,foot,bike,horse" required:"true"`
	CallType   string     `json:"callType,omitempty"`
	CreatedAt  time.Time  `json:"createdAt" required:"true"`
	UpdatedAt  time.Time  `json:"updatedAt" required:"true"`
}

// Filter selects a page of patrols, optionally by location substring.
type Filter struct {
	Location string
	Page     store.Page
}

// ListRequest is the query of GET /patrols. Unknown keys are rejected.
type ListRequest struct {
	Page     int    `query:"page" minimum:"0" maximum:"1000000" doc:"Page number, starting at 1"`
	PageSize int    `query:"page_size" minimum:"1" maximum:"100" doc:"Number of items per page"`
	Location string `query:"location" doc:"Case-insensitive location filter"`
}

// ListResponse is one page of patrols.
type ListResponse struct {
	Items    []Patrol `json:"items" required:"true"`
	Total    int      `json:"total" minimum:"0" required:"true"`
	Page     int      `json:"page" minimum:"1" required:"true"`
	PageSize int      `json:"page_size" minimum:"1" required:"true"`
}

// CreateInput is the body of POST /patrols.
type CreateInput struct {
	CaseID     string     `json:"caseId,omitempty" doc:"Related case, if any"`
	Location   string     `json:"location" minLength:"1" required:"true"`
	StartedAt  time.Time  `json:"startedAt" required:"true"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
	PatrolType Type       `json:"patrolType" enum:"car,foot,bike,horse" required:"true"`
	CallType   string     `json:"callType,omitempty"`
}

// CreateRequest wraps the create body.
type CreateRequest struct {
	Body CreateInput
}

// Validate rejects a patrol missing a required field or ending before it
// starts. A request with no body at all skips the body schema and is
// stopped here.
func (r *CreateRequest) Validate() error {
	in := r.Body

	var missing []api.Issue
	if in.Location == "" {
		missing = append(missing, api.Issue{Path: "location", Message: "location is required"})
	}
	if in.StartedAt.IsZero() {
		missing = append(missing, api.Issue{Path: "startedAt", Message: "startedAt is required"})
	}
	if in.PatrolType == "" {
		missing = append(missing, api.Issue{Path: "patrolType", Message: "patrolType is required"})
	}
	if len(missing) > 0 {
		return &api.ValidationError{Source: api.SourceBody, Details: missing}
	}

	return checkInterval(in.StartedAt, in.EndedAt)
}

// UpdateInput is the body of PUT /patrols/{id}. Absent fields are left
// unchanged.
type UpdateInput struct {
	CaseID     *string    `json:"caseId,omitempty"`
	Location   *string    `json:"location,omitempty" minLength:"1"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
	PatrolType *Type      `json:"patrolType,omitempty" enum:"car,foot,bike,horse"`
	CallType   *string    `json:"callType,omitempty"`
}

// UpdateRequest addresses a patrol and carries the changes.
type UpdateRequest struct {
	ID   string `path:"id" format:"uuid"`
	Body UpdateInput
}

// IDRequest addresses a single patrol.
type IDRequest struct {
	ID string `path:"id" format:"uuid" doc:"Patrol ID"`
}

func checkInterval(started time.Time, ended *time.Time) error {
	if ended == nil || !ended.Before(started) {
		return nil
	}
	return &api.ValidationError{
		Source: api.SourceBody,
		Details: []api.Issue{{
			Path:    "endedAt",
			Message: "must not be before startedAt",
		}},
	}
}
