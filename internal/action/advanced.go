package action

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"reviewflow/internal/metadata"
)

// InfoField is one named configuration fact inside AdvancedInfo.
type InfoField struct {
	Name  string
	Value string
}

// AdvancedInfo describes configuration an action exposes for one advanced option.
type AdvancedInfo interface {
	// Option returns the advanced option this info belongs to.
	Option() string
	// Fields returns the configuration facts in their fixed canonical order.
	Fields() []InfoField
}

// Fingerprint returns a deterministic MD5 hex digest over the option type and the
// canonical field list. It is a cache key for clients, not a security token.
func Fingerprint(info AdvancedInfo) string {
	sum := md5.Sum([]byte(canonical(info)))
	return hex.EncodeToString(sum[:])
}

func canonical(info AdvancedInfo) string {
	var b strings.Builder
	b.WriteString(info.Option())
	for _, field := range info.Fields() {
		b.WriteByte(';')
		b.WriteString(field.Name)
		b.WriteByte(',')
		b.WriteString(field.Value)
	}
	return b.String()
}

// ScoreReviewInfo describes the limits applied to score intake.
type ScoreReviewInfo struct {
	DescriptionRequired bool
	MaxValue            float64
}

func (ScoreReviewInfo) Option() string { return OptionSubmitScore }

func (i ScoreReviewInfo) Fields() []InfoField {
	return []InfoField{
		{Name: "descriptionRequired", Value: strconv.FormatBool(i.DescriptionRequired)},
		{Name: "maxValue", Value: metadata.FormatFixed(i.MaxValue)},
	}
}

// SelectReviewerInfo describes the reviewer pool and advisor settings.
type SelectReviewerInfo struct {
	// Group is the reviewer pool id, empty when unrestricted.
	Group           string
	Advisor         string
	AdvisorRequired bool
}

func (SelectReviewerInfo) Option() string { return OptionSubmitSelectReviewer }

func (i SelectReviewerInfo) Fields() []InfoField {
	return []InfoField{
		{Name: "group", Value: orNone(i.Group)},
		{Name: "advisor", Value: orNone(i.Advisor)},
		{Name: "advisorRequired", Value: strconv.FormatBool(i.AdvisorRequired)},
	}
}

func orNone(value string) string {
	if value == "" {
		return "none"
	}
	return value
}
