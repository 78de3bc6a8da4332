package config

import (
	"strconv"
	"strings"
)

// Well-known property keys understood by the processing actions and the
// authorization delegate.
const (
	KeyReviewerGroup          = "action.selectrevieweraction.group"
	KeyReviewManagersGroup    = "action.selectrevieweraction.managers-group"
	KeyReviewerFileEdit       = "workflow.reviewer.file-edit"
	KeyAdvisorRequired        = "workflow.advisor-required"
	KeyCommunityAdminAccounts = "core.authorization.community-admin.manage-accounts"
	KeyCollectionAdminAccount = "core.authorization.collection-admin.manage-accounts"
)

// Properties is a read-only dotted-key view over a Config.
type Properties struct {
	values map[string]string
}

// Properties returns the dotted-key view of the configuration. Typed fields take
// precedence over entries in the [properties] table.
func (c *Config) Properties() *Properties {
	values := make(map[string]string, len(c.Extra)+6)
	for key, value := range c.Extra {
		values[strings.TrimSpace(key)] = value
	}
	if c.Review.ReviewerGroup != "" {
		values[KeyReviewerGroup] = c.Review.ReviewerGroup
	}
	if c.Review.ReviewManagersGroup != "" {
		values[KeyReviewManagersGroup] = c.Review.ReviewManagersGroup
	}
	values[KeyReviewerFileEdit] = strconv.FormatBool(c.Review.ReviewerFileEdit)
	values[KeyAdvisorRequired] = strconv.FormatBool(c.Review.AdvisorRequired)
	values[KeyCommunityAdminAccounts] = strconv.FormatBool(c.Authorization.CommunityAdminManageAccounts)
	values[KeyCollectionAdminAccount] = strconv.FormatBool(c.Authorization.CollectionAdminManageAccounts)
	return &Properties{values: values}
}

// NewProperties builds a property view from raw key/value pairs.
func NewProperties(values map[string]string) *Properties {
	cp := make(map[string]string, len(values))
	for key, value := range values {
		cp[strings.TrimSpace(key)] = value
	}
	return &Properties{values: cp}
}

// String returns the trimmed value for key, or "" when unset.
func (p *Properties) String(key string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.values[key])
}

// Bool returns the boolean value for key, or fallback when unset or unparsable.
func (p *Properties) Bool(key string, fallback bool) bool {
	raw := p.String(key)
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "true", "yes", "on", "1":
		return true
	case "false", "no", "off", "0":
		return false
	default:
		return fallback
	}
}
