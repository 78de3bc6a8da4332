package authz_test

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"reviewflow/internal/store"
)

var errStoreDown = errors.New("store down")

type fakeDirectory struct {
	groups  map[uuid.UUID]*store.Group
	members map[uuid.UUID]map[uuid.UUID]bool
	persons map[uuid.UUID]store.Person
	admins  map[uuid.UUID][]store.AdminScope
	active  map[uuid.UUID]int

	failFindGroup bool
	failIsMember  bool
	failActive    bool
	itemLookups   int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		groups:  map[uuid.UUID]*store.Group{},
		members: map[uuid.UUID]map[uuid.UUID]bool{},
		persons: map[uuid.UUID]store.Person{},
		admins:  map[uuid.UUID][]store.AdminScope{},
		active:  map[uuid.UUID]int{},
	}
}

func (d *fakeDirectory) person(email string) *store.Person {
	p := store.Person{ID: uuid.New(), Email: email}
	d.persons[p.ID] = p
	return &p
}

func (d *fakeDirectory) group(name string, members ...*store.Person) *store.Group {
	g := &store.Group{ID: uuid.New(), Name: name}
	d.groups[g.ID] = g
	d.members[g.ID] = map[uuid.UUID]bool{}
	for _, m := range members {
		d.members[g.ID][m.ID] = true
	}
	return g
}

func (d *fakeDirectory) FindGroup(_ context.Context, id uuid.UUID) (*store.Group, error) {
	if d.failFindGroup {
		return nil, errStoreDown
	}
	return d.groups[id], nil
}

func (d *fakeDirectory) FindGroupByName(_ context.Context, name string) (*store.Group, error) {
	if d.failFindGroup {
		return nil, errStoreDown
	}
	for _, g := range d.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) IsMember(_ context.Context, personID, groupID uuid.UUID) (bool, error) {
	if d.failIsMember {
		return false, errStoreDown
	}
	return d.members[groupID][personID], nil
}

func (d *fakeDirectory) IsAdmin(_ context.Context, personID uuid.UUID, scope store.AdminScope) (bool, error) {
	for _, s := range d.admins[personID] {
		if s == scope {
			return true, nil
		}
	}
	return false, nil
}

func (d *fakeDirectory) ActiveItemsBySubmitter(_ context.Context, personID uuid.UUID) ([]*store.Item, error) {
	d.itemLookups++
	if d.failActive {
		return nil, errStoreDown
	}
	items := make([]*store.Item, d.active[personID])
	for i := range items {
		items[i] = &store.Item{ID: int64(i + 1), SubmitterID: personID, Status: store.StatusActive}
	}
	return items, nil
}

func (d *fakeDirectory) GroupMembers(_ context.Context, groupID uuid.UUID) ([]store.Person, error) {
	var out []store.Person
	for id := range d.members[groupID] {
		out = append(out, d.persons[id])
	}
	return out, nil
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
