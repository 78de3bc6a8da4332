package store

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle of a work item.
type Status string

const (
	// StatusActive items are moving through the workflow.
	StatusActive Status = "active"
	// StatusReturned items were sent back to their submitter.
	StatusReturned Status = "returned"
	// StatusArchived items completed every step.
	StatusArchived Status = "archived"
)

// ParseStatus converts a textual status into a Status value.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusActive, StatusReturned, StatusArchived:
		return Status(value), true
	default:
		return "", false
	}
}

// AnonymousGroupID identifies the built-in group every visitor belongs to.
var AnonymousGroupID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Item is a submission moving through the approval workflow.
type Item struct {
	ID          int64
	SubmitterID uuid.UUID
	Title       string
	Step        string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Person is an authenticated identity.
type Person struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// DisplayName returns the name when set and the email otherwise.
func (p *Person) DisplayName() string {
	if p == nil {
		return "anonymous"
	}
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

// Group is a named set of people. Special groups are built into the system.
type Group struct {
	ID      uuid.UUID
	Name    string
	Special bool
}

// RoleAssignment binds a named role on an item to exactly one person or group.
type RoleAssignment struct {
	ID       int64
	ItemID   int64
	RoleID   string
	PersonID *uuid.UUID
	GroupID  *uuid.UUID
}

// AdminScope is the level at which a person administers the repository.
type AdminScope string

const (
	AdminSite       AdminScope = "site"
	AdminCommunity  AdminScope = "community"
	AdminCollection AdminScope = "collection"
)

// ParseAdminScope converts a textual scope into an AdminScope value.
func ParseAdminScope(value string) (AdminScope, bool) {
	switch AdminScope(value) {
	case AdminSite, AdminCommunity, AdminCollection:
		return AdminScope(value), true
	default:
		return "", false
	}
}

// MetadataValue is a single stored metadata record.
type MetadataValue struct {
	Field    string
	Language string
	Value    string
}
