// Package authz decides supplemental read access to groups.
//
// The default rule elsewhere is deny unless an explicit relationship exists.
// GroupReadEvaluator adds the relationships the review workflow needs: members
// and account-managing administrators may read a group, and review managers or
// submitters with active items may read the reviewer pool so they can choose
// reviewers. Every decision is recomputed from live membership; nothing is
// cached across requests.
package authz
