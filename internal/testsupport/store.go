package testsupport

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"reviewflow/internal/config"
	"reviewflow/internal/privilege"
	"reviewflow/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewPerson registers a person with a unique email derived from name.
func NewPerson(t testing.TB, st *store.Store, name string) *store.Person {
	t.Helper()

	person, err := st.CreatePerson(context.Background(), fmt.Sprintf("%s-%s@example.org", name, uuid.NewString()[:8]), name)
	if err != nil {
		t.Fatalf("store.CreatePerson: %v", err)
	}
	return person
}

// NewGroup creates a group containing members.
func NewGroup(t testing.TB, st *store.Store, name string, members ...*store.Person) *store.Group {
	t.Helper()

	var group *store.Group
	err := privilege.Run(context.Background(), func(ctx context.Context) error {
		var err error
		if group, err = st.CreateGroup(ctx, name); err != nil {
			return err
		}
		for _, member := range members {
			if err := st.AddMember(ctx, group.ID, member.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("create group %s: %v", name, err)
	}
	return group
}

// NewItem creates an active item submitted by submitter.
func NewItem(t testing.TB, st *store.Store, submitter *store.Person, title string) *store.Item {
	t.Helper()

	item, err := st.CreateItem(context.Background(), submitter.ID, title)
	if err != nil {
		t.Fatalf("store.CreateItem: %v", err)
	}
	return item
}
