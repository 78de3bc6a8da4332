package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"reviewflow/internal/services"
	"reviewflow/internal/store"
)

// resolvePerson finds a person by UUID or email.
func resolvePerson(ctx context.Context, st *store.Store, ref string) (*store.Person, error) {
	ref = strings.TrimSpace(ref)
	var (
		person *store.Person
		err    error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		person, err = st.FindPerson(ctx, id)
	} else {
		person, err = st.FindPersonByEmail(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, services.Wrap(services.ErrNotFound, "cli", "resolve person", ref, nil)
	}
	return person, nil
}

// resolveGroup finds a group by UUID or name.
func resolveGroup(ctx context.Context, st *store.Store, ref string) (*store.Group, error) {
	ref = strings.TrimSpace(ref)
	var (
		group *store.Group
		err   error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		group, err = st.FindGroup(ctx, id)
	} else {
		group, err = st.FindGroupByName(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, services.Wrap(services.ErrNotFound, "cli", "resolve group", ref, nil)
	}
	return group, nil
}

func parseItemID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, services.Wrap(services.ErrValidation, "cli", "parse item id", fmt.Sprintf("invalid item id %q", raw), nil)
	}
	return id, nil
}
