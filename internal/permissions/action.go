package permissions

import (
	"math/bits"
	"strings"
)

// Action enumerates the button grants a menu entry can carry. The zero value
// is not a grantable action.
type Action uint8

const (
	ActionUnknown Action = iota
	ActionCreate
	ActionView
	ActionUpdate
	ActionDelete
	ActionExport
	ActionApprove
	ActionReview

	actionCount
)

// Labels used by the menu configuration.
const (
	LabelCreate  = "新增"
	LabelView    = "查看"
	LabelUpdate  = "修改"
	LabelDelete  = "删除"
	LabelExport  = "导出"
	LabelApprove = "审批"
	LabelReview  = "审核"
)

var actionLabels = [actionCount]string{
	ActionCreate:  LabelCreate,
	ActionView:    LabelView,
	ActionUpdate:  LabelUpdate,
	ActionDelete:  LabelDelete,
	ActionExport:  LabelExport,
	ActionApprove: LabelApprove,
	ActionReview:  LabelReview,
}

var actionNames = [actionCount]string{
	ActionUnknown: "unknown",
	ActionCreate:  "create",
	ActionView:    "view",
	ActionUpdate:  "update",
	ActionDelete:  "delete",
	ActionExport:  "export",
	ActionApprove: "approve",
	ActionReview:  "review",
}

var actionsByToken = func() map[string]Action {
	out := make(map[string]Action, 2*int(actionCount))
	for a := ActionCreate; a < actionCount; a++ {
		out[actionLabels[a]] = a
		out[actionNames[a]] = a
	}
	return out
}()

var actionsByLabel = func() map[string]Action {
	out := make(map[string]Action, int(actionCount))
	for a := ActionCreate; a < actionCount; a++ {
		out[actionLabels[a]] = a
	}
	return out
}()

// ActionForLabel resolves an exact configured label ("新增"). English names,
// case variants and padded labels are not labels and yield false.
func ActionForLabel(label string) (Action, bool) {
	a, ok := actionsByLabel[label]
	return a, ok
}

// ParseAction resolves a configured label ("新增") or its English name
// ("create") for typed internal use. Authorization queries over labels go
// through ActionForLabel. Unknown input yields ActionUnknown and false.
func ParseAction(token string) (Action, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ActionUnknown, false
	}
	if a, ok := actionsByToken[token]; ok {
		return a, true
	}
	if a, ok := actionsByToken[strings.ToLower(token)]; ok {
		return a, true
	}
	return ActionUnknown, false
}

// AllActions lists every grantable action in declaration order.
func AllActions() []Action {
	out := make([]Action, 0, int(actionCount)-1)
	for a := ActionCreate; a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}

// Valid reports whether a is a grantable action.
func (a Action) Valid() bool {
	return a > ActionUnknown && a < actionCount
}

// Label returns the configuration label, or "" for invalid actions.
func (a Action) Label() string {
	if !a.Valid() {
		return ""
	}
	return actionLabels[a]
}

func (a Action) String() string {
	if a >= actionCount {
		return actionNames[ActionUnknown]
	}
	return actionNames[a]
}

// MarshalText encodes the English name so API payloads stay ASCII.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText accepts either a label or an English name. Unknown tokens
// decode to ActionUnknown rather than failing, so they can never grant.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, _ := ParseAction(string(text))
	*a = parsed
	return nil
}

// ActionSet is a bitmask of granted actions.
type ActionSet uint16

// NewActionSet builds a set from the supplied actions, ignoring invalid ones.
func NewActionSet(actions ...Action) ActionSet {
	var s ActionSet
	for _, a := range actions {
		s = s.With(a)
	}
	return s
}

// With returns a copy of s including a.
func (s ActionSet) With(a Action) ActionSet {
	if !a.Valid() {
		return s
	}
	return s | 1<<a
}

// Has reports whether a is granted. Invalid actions are never granted.
func (s ActionSet) Has(a Action) bool {
	if !a.Valid() {
		return false
	}
	return s&(1<<a) != 0
}

// Union merges two sets.
func (s ActionSet) Union(other ActionSet) ActionSet {
	return s | other
}

// Len counts granted actions.
func (s ActionSet) Len() int {
	return bits.OnesCount16(uint16(s))
}

// Actions lists the granted actions in declaration order.
func (s ActionSet) Actions() []Action {
	out := make([]Action, 0, s.Len())
	for a := ActionCreate; a < actionCount; a++ {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// Labels lists the configuration labels of the granted actions.
func (s ActionSet) Labels() []string {
	actions := s.Actions()
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Label()
	}
	return out
}
