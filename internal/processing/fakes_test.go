package processing_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"reviewflow/internal/metadata"
	"reviewflow/internal/privilege"
	"reviewflow/internal/store"
)

var errStoreDown = errors.New("store down")

type metaEntry struct {
	field metadata.Field
	lang  string
	value string
}

type fakeMetadata struct {
	mu      sync.Mutex
	entries map[int64][]metaEntry
	touched int
	failGet bool
	failAdd bool
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{entries: map[int64][]metaEntry{}}
}

func (f *fakeMetadata) GetMetadata(_ context.Context, itemID int64, field metadata.Field, lang string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, errStoreDown
	}
	var values []string
	for _, e := range f.entries[itemID] {
		if e.field == field && (lang == metadata.AnyLanguage || e.lang == lang) {
			values = append(values, e.value)
		}
	}
	return values, nil
}

func (f *fakeMetadata) AddMetadata(ctx context.Context, itemID int64, field metadata.Field, lang string, values ...string) error {
	if field == metadata.Provenance {
		if err := privilege.Require(ctx, "add provenance"); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd {
		return errStoreDown
	}
	for _, v := range values {
		f.entries[itemID] = append(f.entries[itemID], metaEntry{field: field, lang: lang, value: v})
	}
	return nil
}

func (f *fakeMetadata) ClearMetadata(_ context.Context, itemID int64, field metadata.Field, lang string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.entries[itemID][:0]
	for _, e := range f.entries[itemID] {
		if e.field == field && (lang == metadata.AnyLanguage || e.lang == lang) {
			continue
		}
		kept = append(kept, e)
	}
	f.entries[itemID] = kept
	return nil
}

func (f *fakeMetadata) TouchItem(context.Context, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched++
	return nil
}

func (f *fakeMetadata) values(itemID int64, field metadata.Field) []string {
	v, _ := f.GetMetadata(context.Background(), itemID, field, metadata.AnyLanguage)
	return v
}

type fakeIdentity struct {
	mu            sync.Mutex
	persons       map[uuid.UUID]*store.Person
	groups        map[uuid.UUID]*store.Group
	members       map[uuid.UUID]map[uuid.UUID]bool
	nameLookups   int
	failFindGroup bool
	failFind      bool
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		persons: map[uuid.UUID]*store.Person{},
		groups:  map[uuid.UUID]*store.Group{},
		members: map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (f *fakeIdentity) addPerson(email string) *store.Person {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &store.Person{ID: uuid.New(), Email: email}
	f.persons[p.ID] = p
	return p
}

func (f *fakeIdentity) addGroup(name string, members ...*store.Person) *store.Group {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := &store.Group{ID: uuid.New(), Name: name}
	f.groups[g.ID] = g
	f.members[g.ID] = map[uuid.UUID]bool{}
	for _, m := range members {
		f.members[g.ID][m.ID] = true
	}
	return g
}

func (f *fakeIdentity) FindPerson(_ context.Context, id uuid.UUID) (*store.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFind {
		return nil, errStoreDown
	}
	return f.persons[id], nil
}

func (f *fakeIdentity) FindGroup(_ context.Context, id uuid.UUID) (*store.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFindGroup {
		return nil, errStoreDown
	}
	return f.groups[id], nil
}

func (f *fakeIdentity) FindGroupByName(_ context.Context, name string) (*store.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nameLookups++
	if f.failFindGroup {
		return nil, errStoreDown
	}
	for _, g := range f.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentity) IsMember(_ context.Context, personID, groupID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[groupID][personID], nil
}

func (f *fakeIdentity) GroupMembers(_ context.Context, groupID uuid.UUID) ([]store.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Person
	for id := range f.members[groupID] {
		out = append(out, *f.persons[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeIdentity) CreateGroup(ctx context.Context, name string) (*store.Group, error) {
	if err := privilege.Require(ctx, "create group"); err != nil {
		return nil, err
	}
	return f.addGroup(name), nil
}

func (f *fakeIdentity) AddMember(ctx context.Context, groupID, personID uuid.UUID) error {
	if err := privilege.Require(ctx, "add member"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[groupID][personID] = true
	return nil
}

func (f *fakeIdentity) RemoveMember(ctx context.Context, groupID, personID uuid.UUID) error {
	if err := privilege.Require(ctx, "remove member"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members[groupID], personID)
	return nil
}

func (f *fakeIdentity) SetGroupName(ctx context.Context, groupID uuid.UUID, name string) error {
	if err := privilege.Require(ctx, "rename group"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[groupID].Name = name
	return nil
}

func (f *fakeIdentity) memberIDs(groupID uuid.UUID) []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for id := range f.members[groupID] {
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeIdentity) groupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.groups)
}

type fakeRoles struct {
	mu      sync.Mutex
	nextID  int64
	roles   []store.RoleAssignment
	creates int
	updates int
}

func (f *fakeRoles) RolesForItem(_ context.Context, itemID int64) ([]store.RoleAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.RoleAssignment
	for _, r := range f.roles {
		if r.ItemID == itemID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRoles) CreateRole(_ context.Context, role *store.RoleAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.ItemID == role.ItemID && r.RoleID == role.RoleID {
			return errors.New("duplicate role")
		}
	}
	f.nextID++
	role.ID = f.nextID
	f.roles = append(f.roles, *role)
	f.creates++
	return nil
}

func (f *fakeRoles) UpdateRole(_ context.Context, role *store.RoleAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.roles {
		if f.roles[i].ID == role.ID {
			f.roles[i] = *role
			f.updates++
			return nil
		}
	}
	return errors.New("role not found")
}

func (f *fakeRoles) byRole(itemID int64, roleID string) []store.RoleAssignment {
	roles, _ := f.RolesForItem(context.Background(), itemID)
	var out []store.RoleAssignment
	for _, r := range roles {
		if r.RoleID == roleID {
			out = append(out, r)
		}
	}
	return out
}

type sendBackCall struct {
	item    *store.Item
	actor   *store.Person
	prefix  string
	message string
}

type fakeWorkflow struct {
	calls []sendBackCall
}

func (f *fakeWorkflow) SendBackToSubmitter(_ context.Context, item *store.Item, actor *store.Person, prefix, message string) error {
	f.calls = append(f.calls, sendBackCall{item: item, actor: actor, prefix: prefix, message: message})
	return nil
}

type fakeProps map[string]string

func (p fakeProps) String(key string) string { return p[key] }

func (p fakeProps) Bool(key string, fallback bool) bool {
	switch p[key] {
	case "true":
		return true
	case "false":
		return false
	default:
		return fallback
	}
}

type countingObserver struct {
	modes []string
}

func (o *countingObserver) ObserveAssignment(mode string) {
	o.modes = append(o.modes, mode)
}
