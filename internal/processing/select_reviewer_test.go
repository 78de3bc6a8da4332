package processing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewflow/internal/action"
	"reviewflow/internal/config"
	"reviewflow/internal/logging"
	"reviewflow/internal/processing"
	"reviewflow/internal/store"
)

type selectFixture struct {
	identity *fakeIdentity
	roles    *fakeRoles
	observer *countingObserver
	action   *processing.SelectReviewer
}

func newSelectFixture(t *testing.T, props fakeProps) *selectFixture {
	t.Helper()
	identity := newFakeIdentity()
	roles := &fakeRoles{}
	observer := &countingObserver{}
	pool := processing.NewReviewerPool(identity, props, logging.NewNop())
	a := processing.NewSelectReviewer(processing.SelectReviewerDeps{
		Identity: identity,
		Roles:    roles,
		Pool:     pool,
		Props:    props,
		Observer: observer,
		Logger:   logging.NewNop(),
	})
	return &selectFixture{identity: identity, roles: roles, observer: observer, action: a}
}

func selectRequest(reviewers []*store.Person, advisor string) action.Params {
	params := action.Params{action.OptionSubmitSelectReviewer: {""}}
	for _, r := range reviewers {
		params["eperson"] = append(params["eperson"], r.ID.String())
	}
	if advisor != "" {
		params["advisor"] = []string{advisor}
	}
	return params
}

func TestSelectReviewerBindsSinglePerson(t *testing.T) {
	f := newSelectFixture(t, nil)
	reviewer := f.identity.addPerson("r1@example.org")
	item := &store.Item{ID: 11}

	outcome, err := f.action.Execute(context.Background(), item, action.Step{}, selectRequest([]*store.Person{reviewer}, ""))
	require.NoError(t, err)
	assert.Equal(t, action.Complete(), outcome)

	roles := f.roles.byRole(item.ID, processing.RoleReviewer)
	require.Len(t, roles, 1)
	require.NotNil(t, roles[0].PersonID)
	assert.Equal(t, reviewer.ID, *roles[0].PersonID)
	assert.Nil(t, roles[0].GroupID)
	assert.Equal(t, 0, f.identity.groupCount())
	assert.Equal(t, []string{"person"}, f.observer.modes)
}

func TestSelectReviewerBindsGroupForSeveralReviewers(t *testing.T) {
	f := newSelectFixture(t, nil)
	r1 := f.identity.addPerson("r1@example.org")
	r2 := f.identity.addPerson("r2@example.org")
	item := &store.Item{ID: 12}

	outcome, err := f.action.Execute(context.Background(), item, action.Step{}, selectRequest([]*store.Person{r1, r2, r1}, ""))
	require.NoError(t, err)
	assert.Equal(t, action.TypeOutcome, outcome.Type())

	group, err := f.identity.FindGroupByName(context.Background(), "selectedReviewsGroup_12")
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.ElementsMatch(t, []uuid.UUID{r1.ID, r2.ID}, f.identity.memberIDs(group.ID))

	roles := f.roles.byRole(item.ID, processing.RoleReviewer)
	require.Len(t, roles, 1)
	assert.Nil(t, roles[0].PersonID)
	require.NotNil(t, roles[0].GroupID)
	assert.Equal(t, group.ID, *roles[0].GroupID)
	assert.Equal(t, []string{"group"}, f.observer.modes)
}

func TestSelectReviewerRerunSyncsGroupMembership(t *testing.T) {
	f := newSelectFixture(t, nil)
	r1 := f.identity.addPerson("r1@example.org")
	r2 := f.identity.addPerson("r2@example.org")
	r3 := f.identity.addPerson("r3@example.org")
	item := &store.Item{ID: 13}
	ctx := context.Background()

	_, err := f.action.Execute(ctx, item, action.Step{}, selectRequest([]*store.Person{r1, r2}, ""))
	require.NoError(t, err)
	_, err = f.action.Execute(ctx, item, action.Step{}, selectRequest([]*store.Person{r2, r3}, ""))
	require.NoError(t, err)

	assert.Equal(t, 1, f.identity.groupCount(), "reviewer group is reused")
	group, _ := f.identity.FindGroupByName(ctx, processing.ReviewerGroupName(item.ID))
	require.NotNil(t, group)
	assert.ElementsMatch(t, []uuid.UUID{r2.ID, r3.ID}, f.identity.memberIDs(group.ID))

	assert.Len(t, f.roles.byRole(item.ID, processing.RoleReviewer), 1)
	assert.Equal(t, 1, f.roles.creates)
	assert.Equal(t, 1, f.roles.updates)
}

func TestSelectReviewerSwitchesFromGroupToPerson(t *testing.T) {
	f := newSelectFixture(t, nil)
	r1 := f.identity.addPerson("r1@example.org")
	r2 := f.identity.addPerson("r2@example.org")
	item := &store.Item{ID: 14}
	ctx := context.Background()

	_, err := f.action.Execute(ctx, item, action.Step{}, selectRequest([]*store.Person{r1, r2}, ""))
	require.NoError(t, err)
	_, err = f.action.Execute(ctx, item, action.Step{}, selectRequest([]*store.Person{r2}, ""))
	require.NoError(t, err)

	roles := f.roles.byRole(item.ID, processing.RoleReviewer)
	require.Len(t, roles, 1)
	require.NotNil(t, roles[0].PersonID)
	assert.Equal(t, r2.ID, *roles[0].PersonID)
	assert.Nil(t, roles[0].GroupID)
}

func TestSelectReviewerFailsWhenNothingResolves(t *testing.T) {
	f := newSelectFixture(t, nil)
	item := &store.Item{ID: 15}
	params := action.Params{
		action.OptionSubmitSelectReviewer: {""},
		"eperson":                         {"not-a-uuid", uuid.NewString()},
	}

	outcome, err := f.action.Execute(context.Background(), item, action.Step{}, params)
	require.NoError(t, err)
	assert.Equal(t, action.TypeError, outcome.Type())
	assert.Empty(t, f.roles.byRole(item.ID, processing.RoleReviewer))

	outcome, err = f.action.Execute(context.Background(), item, action.Step{}, action.Params{action.OptionSubmitSelectReviewer: {""}})
	require.NoError(t, err)
	assert.Equal(t, action.TypeError, outcome.Type())
	assert.Empty(t, f.observer.modes)
}

func TestSelectReviewerRejectsReviewerOutsidePool(t *testing.T) {
	props := fakeProps{config.KeyReviewerGroup: "Professores"}
	f := newSelectFixture(t, props)
	inside := f.identity.addPerson("inside@example.org")
	outside := f.identity.addPerson("outside@example.org")
	f.identity.addGroup("Professores", inside)
	item := &store.Item{ID: 16}

	outcome, err := f.action.Execute(context.Background(), item, action.Step{}, selectRequest([]*store.Person{inside, outside}, ""))
	require.NoError(t, err)
	failure, ok := outcome.(action.Failure)
	require.True(t, ok)
	assert.Contains(t, failure.Reason, "outside@example.org")
	assert.Empty(t, f.roles.byRole(item.ID, processing.RoleReviewer))
	assert.Equal(t, 1, f.identity.groupCount(), "no reviewer group is created")

	outcome, err = f.action.Execute(context.Background(), item, action.Step{}, selectRequest([]*store.Person{inside}, ""))
	require.NoError(t, err)
	assert.Equal(t, action.TypeOutcome, outcome.Type())
}

func TestSelectReviewerAdvisorIsIdempotent(t *testing.T) {
	f := newSelectFixture(t, nil)
	reviewer := f.identity.addPerson("r1@example.org")
	advisor := f.identity.addPerson("advisor@example.org")
	item := &store.Item{ID: 17}
	ctx := context.Background()

	_, err := f.action.Execute(ctx, item, action.Step{}, selectRequest([]*store.Person{reviewer}, advisor.ID.String()))
	require.NoError(t, err)
	updatesAfterFirst := f.roles.updates

	_, err = f.action.Execute(ctx, item, action.Step{}, selectRequest([]*store.Person{reviewer}, advisor.ID.String()))
	require.NoError(t, err)

	roles := f.roles.byRole(item.ID, processing.RoleAdvisor)
	require.Len(t, roles, 1)
	assert.Equal(t, advisor.ID, *roles[0].PersonID)
	// The reviewer role is rebound on the second run; the advisor role is untouched.
	assert.Equal(t, updatesAfterFirst+1, f.roles.updates)
}

func TestSelectReviewerAdvisorReplaced(t *testing.T) {
	f := newSelectFixture(t, nil)
	reviewer := f.identity.addPerson("r1@example.org")
	first := f.identity.addPerson("a1@example.org")
	second := f.identity.addPerson("a2@example.org")
	item := &store.Item{ID: 18}
	ctx := context.Background()

	_, err := f.action.Execute(ctx, item, action.Step{}, selectRequest([]*store.Person{reviewer}, first.ID.String()))
	require.NoError(t, err)
	_, err = f.action.Execute(ctx, item, action.Step{}, selectRequest([]*store.Person{reviewer}, second.ID.String()))
	require.NoError(t, err)

	roles := f.roles.byRole(item.ID, processing.RoleAdvisor)
	require.Len(t, roles, 1)
	assert.Equal(t, second.ID, *roles[0].PersonID)
}

func TestSelectReviewerIgnoresBadAdvisor(t *testing.T) {
	for _, advisor := range []string{"garbage", uuid.NewString(), "   "} {
		f := newSelectFixture(t, nil)
		reviewer := f.identity.addPerson("r1@example.org")
		item := &store.Item{ID: 19}

		outcome, err := f.action.Execute(context.Background(), item, action.Step{}, selectRequest([]*store.Person{reviewer}, advisor))
		require.NoError(t, err, "advisor %q", advisor)
		assert.Equal(t, action.TypeOutcome, outcome.Type())
		assert.Empty(t, f.roles.byRole(item.ID, processing.RoleAdvisor))
		assert.Len(t, f.roles.byRole(item.ID, processing.RoleReviewer), 1)
	}
}

func TestSelectReviewerCancelAndUnknownButtons(t *testing.T) {
	f := newSelectFixture(t, nil)
	reviewer := f.identity.addPerson("r1@example.org")
	item := &store.Item{ID: 20}

	outcome, err := f.action.Execute(context.Background(), item, action.Step{}, action.Params{
		action.OptionCancel: {""},
		"eperson":           {reviewer.ID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, action.Cancel{}, outcome)

	outcome, err = f.action.Execute(context.Background(), item, action.Step{}, action.Params{"eperson": {reviewer.ID.String()}})
	require.NoError(t, err)
	assert.Equal(t, action.Cancel{}, outcome, "no button means cancel")

	outcome, err = f.action.Execute(context.Background(), item, action.Step{}, action.Params{"submit_other": {""}})
	require.NoError(t, err)
	assert.Equal(t, action.TypeError, outcome.Type())
	assert.Empty(t, f.roles.byRole(item.ID, processing.RoleReviewer))
}

func TestSelectReviewerPropagatesStoreErrors(t *testing.T) {
	f := newSelectFixture(t, nil)
	reviewer := f.identity.addPerson("r1@example.org")
	f.identity.failFind = true

	_, err := f.action.Execute(context.Background(), &store.Item{ID: 21}, action.Step{}, selectRequest([]*store.Person{reviewer}, ""))
	assert.ErrorIs(t, err, errStoreDown)
}

func TestSelectReviewerAdvancedInfo(t *testing.T) {
	props := fakeProps{config.KeyReviewerGroup: "Professores", config.KeyAdvisorRequired: "true"}
	f := newSelectFixture(t, props)
	pool := f.identity.addGroup("Professores")

	infos, err := f.action.AdvancedInfo(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, action.OptionSubmitSelectReviewer, infos[0].Option())

	want := action.SelectReviewerInfo{Group: pool.ID.String(), AdvisorRequired: true}
	assert.Equal(t, action.Fingerprint(want), action.Fingerprint(infos[0]))

	bare := newSelectFixture(t, nil)
	bareInfos, err := bare.action.AdvancedInfo(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, action.Fingerprint(infos[0]), action.Fingerprint(bareInfos[0]))
	assert.Equal(t, []string{action.OptionSubmitSelectReviewer, action.OptionReturnToPool}, bare.action.Options())
}

func TestSelectReviewerHealthCheck(t *testing.T) {
	unconfigured := newSelectFixture(t, nil)
	assert.True(t, unconfigured.action.HealthCheck(context.Background()).Ready)

	missing := newSelectFixture(t, fakeProps{config.KeyReviewerGroup: "Nowhere"})
	health := missing.action.HealthCheck(context.Background())
	assert.False(t, health.Ready)
	assert.Contains(t, health.Detail, "Nowhere")

	failing := newSelectFixture(t, fakeProps{config.KeyReviewerGroup: "Professores"})
	failing.identity.failFindGroup = true
	assert.False(t, failing.action.HealthCheck(context.Background()).Ready)
}
