package processing_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewflow/internal/config"
	"reviewflow/internal/logging"
	"reviewflow/internal/processing"
)

func TestReviewerPoolResolvesOnce(t *testing.T) {
	identity := newFakeIdentity()
	group := identity.addGroup("Professores")
	pool := processing.NewReviewerPool(identity, fakeProps{config.KeyReviewerGroup: "Professores"}, logging.NewNop())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := pool.Resolve(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, group, got)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, identity.nameLookups)

	pool.Invalidate()
	_, err := pool.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, identity.nameLookups)
}

func TestReviewerPoolFallsBackToIdentifier(t *testing.T) {
	identity := newFakeIdentity()
	group := identity.addGroup("Reviewers")
	pool := processing.NewReviewerPool(identity, fakeProps{config.KeyReviewerGroup: group.ID.String()}, logging.NewNop())

	got, err := pool.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, group, got)
}

func TestReviewerPoolCachesMissingGroup(t *testing.T) {
	identity := newFakeIdentity()
	pool := processing.NewReviewerPool(identity, fakeProps{config.KeyReviewerGroup: "Ghosts"}, logging.NewNop())

	for range 3 {
		got, err := pool.Resolve(context.Background())
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, 1, identity.nameLookups)

	identity.addGroup("Ghosts")
	got, _ := pool.Resolve(context.Background())
	assert.Nil(t, got, "cached until invalidated")
	pool.Invalidate()
	got, _ = pool.Resolve(context.Background())
	assert.NotNil(t, got)
}

func TestReviewerPoolDoesNotCacheStoreErrors(t *testing.T) {
	identity := newFakeIdentity()
	group := identity.addGroup("Professores")
	pool := processing.NewReviewerPool(identity, fakeProps{config.KeyReviewerGroup: "Professores"}, logging.NewNop())

	identity.failFindGroup = true
	_, err := pool.Resolve(context.Background())
	require.ErrorIs(t, err, errStoreDown)

	identity.failFindGroup = false
	got, err := pool.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, group, got)
}

func TestReviewerPoolUnconfigured(t *testing.T) {
	identity := newFakeIdentity()
	pool := processing.NewReviewerPool(identity, fakeProps{config.KeyReviewerGroup: ""}, logging.NewNop())

	got, err := pool.Resolve(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, identity.nameLookups)
	assert.Empty(t, pool.Configured())

	var nilPool *processing.ReviewerPool
	got, err = nilPool.Resolve(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, got)
}
