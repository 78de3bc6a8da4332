package action

import (
	"context"

	"github.com/google/uuid"

	"reviewflow/internal/metadata"
	"reviewflow/internal/store"
)

// MetadataStore reads and writes multi-valued metadata on an item.
type MetadataStore interface {
	GetMetadata(ctx context.Context, itemID int64, field metadata.Field, lang string) ([]string, error)
	AddMetadata(ctx context.Context, itemID int64, field metadata.Field, lang string, values ...string) error
	ClearMetadata(ctx context.Context, itemID int64, field metadata.Field, lang string) error
	TouchItem(ctx context.Context, itemID int64) error
}

// IdentityStore resolves people and groups. Lookups return nil without error
// when nothing matches.
type IdentityStore interface {
	FindPerson(ctx context.Context, id uuid.UUID) (*store.Person, error)
	FindGroup(ctx context.Context, id uuid.UUID) (*store.Group, error)
	FindGroupByName(ctx context.Context, name string) (*store.Group, error)
	IsMember(ctx context.Context, personID, groupID uuid.UUID) (bool, error)
	GroupMembers(ctx context.Context, groupID uuid.UUID) ([]store.Person, error)
	CreateGroup(ctx context.Context, name string) (*store.Group, error)
	AddMember(ctx context.Context, groupID, personID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, personID uuid.UUID) error
	SetGroupName(ctx context.Context, groupID uuid.UUID, name string) error
}

// RoleStore manages role assignments on items.
type RoleStore interface {
	RolesForItem(ctx context.Context, itemID int64) ([]store.RoleAssignment, error)
	CreateRole(ctx context.Context, role *store.RoleAssignment) error
	UpdateRole(ctx context.Context, role *store.RoleAssignment) error
}

// Workflow exposes the engine operations an action may trigger.
type Workflow interface {
	SendBackToSubmitter(ctx context.Context, item *store.Item, actor *store.Person, prefix, message string) error
}

// ConfigProvider reads dotted configuration keys.
type ConfigProvider interface {
	String(key string) string
	Bool(key string, fallback bool) bool
}

// ProvenanceStart returns the prefix used for provenance notes written at step.
func ProvenanceStart(step Step, actionID string) string {
	return "Step: " + step.ID + " - action:" + actionID
}
