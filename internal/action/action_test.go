package action_test

import (
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewflow/internal/action"
)

func TestOutcomeTags(t *testing.T) {
	cases := []struct {
		outcome action.Outcome
		want    action.OutcomeType
		text    string
	}{
		{action.Complete(), action.TypeOutcome, "outcome:complete"},
		{action.Cancel{}, action.TypeCancel, "cancel"},
		{action.Fail("bad score"), action.TypeError, "error:bad score"},
		{action.Failure{}, action.TypeError, "error"},
		{action.SubmissionPage{}, action.TypeSubmissionPage, "submission_page"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.outcome.Type())
		assert.Equal(t, tc.text, action.Describe(tc.outcome))
	}
}

func TestSubmitButtonPicksFirstSortedSubmitParam(t *testing.T) {
	req := action.Params{
		"score":         {"8"},
		"submit_score":  {""},
		"submit_cancel": {""},
	}
	assert.Equal(t, "submit_cancel", action.SubmitButton(req, "none"))
	assert.Equal(t, "fallback", action.SubmitButton(action.Params{"score": {"1"}}, "fallback"))
	assert.Equal(t, "fallback", action.SubmitButton(nil, "fallback"))
}

func TestParseParamsAccumulatesValues(t *testing.T) {
	params := action.ParseParams([]string{"eperson=a", "eperson=b", "submit_select_reviewer", "=ignored", "review=x=y"})

	assert.Equal(t, []string{"a", "b"}, params.Values("eperson"))
	assert.Equal(t, "a", params.Param("eperson"))
	assert.Equal(t, "x=y", params.Param("review"))
	assert.Equal(t, []string{"eperson", "review", "submit_select_reviewer"}, params.Names())
	assert.Equal(t, "", params.Param("missing"))
}

func TestParamsValuesReturnsCopy(t *testing.T) {
	params := action.Params{"eperson": {"a"}}
	values := params.Values("eperson")
	values[0] = "mutated"
	assert.Equal(t, "a", params.Param("eperson"))
}

func TestFingerprintMatchesCanonicalString(t *testing.T) {
	info := action.ScoreReviewInfo{DescriptionRequired: true, MaxValue: 10}
	sum := md5.Sum([]byte("submit_score;descriptionRequired,true;maxValue,10.00"))
	assert.Equal(t, hex.EncodeToString(sum[:]), action.Fingerprint(info))
}

func TestFingerprintRoundsMaxValueHalfUp(t *testing.T) {
	info := action.ScoreReviewInfo{MaxValue: 10.125}
	sum := md5.Sum([]byte("submit_score;descriptionRequired,false;maxValue,10.13"))
	assert.Equal(t, hex.EncodeToString(sum[:]), action.Fingerprint(info))
}

func TestFingerprintDeterministic(t *testing.T) {
	a := action.ScoreReviewInfo{DescriptionRequired: false, MaxValue: 10}
	b := action.ScoreReviewInfo{DescriptionRequired: false, MaxValue: 10.000}
	assert.Equal(t, action.Fingerprint(a), action.Fingerprint(b))

	c := action.ScoreReviewInfo{DescriptionRequired: false, MaxValue: 5}
	assert.NotEqual(t, action.Fingerprint(a), action.Fingerprint(c))

	d := action.ScoreReviewInfo{DescriptionRequired: true, MaxValue: 10}
	assert.NotEqual(t, action.Fingerprint(a), action.Fingerprint(d))
}

func TestSelectReviewerFingerprintUsesNonePlaceholder(t *testing.T) {
	info := action.SelectReviewerInfo{}
	sum := md5.Sum([]byte("submit_select_reviewer;group,none;advisor,none;advisorRequired,false"))
	require.Equal(t, hex.EncodeToString(sum[:]), action.Fingerprint(info))

	withGroup := action.SelectReviewerInfo{Group: "6f1c"}
	assert.NotEqual(t, action.Fingerprint(info), action.Fingerprint(withGroup))
}

func TestProvenanceStart(t *testing.T) {
	got := action.ProvenanceStart(action.Step{ID: "evaluation"}, "scoreevaluation")
	assert.Equal(t, "Step: evaluation - action:scoreevaluation", got)
}
