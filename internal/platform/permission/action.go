package permission

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action is a single permission bit.
type Action uint8

const (
	ActionView Action = 1 << iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

var allActions = []Action{ActionView, ActionCreate, ActionUpdate, ActionDelete}

func (a Action) String() string {
	switch a {
	case ActionView:
		return "VIEW"
	case ActionCreate:
		return "CREATE"
	case ActionUpdate:
		return "UPDATE"
	case ActionDelete:
		return "DELETE"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// IsWrite reports whether the action changes state.
func (a Action) IsWrite() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

// ParseAction parses "VIEW", "CREATE", "UPDATE" or "DELETE" case-insensitively.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VIEW":
		return ActionView, nil
	case "CREATE":
		return ActionCreate, nil
	case "UPDATE":
		return ActionUpdate, nil
	case "DELETE":
		return ActionDelete, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ActionSet is a bitset of actions.
type ActionSet uint8

// NewActionSet builds a set from actions.
func NewActionSet(actions ...Action) ActionSet {
	var s ActionSet
	for _, a := range actions {
		s = s.With(a)
	}
	return s
}

// Has reports whether a is in the set.
func (s ActionSet) Has(a Action) bool {
	return s&ActionSet(a) != 0
}

// With returns the set plus a.
func (s ActionSet) With(a Action) ActionSet {
	return s | ActionSet(a)
}

// List returns the actions in VIEW, CREATE, UPDATE, DELETE order.
func (s ActionSet) List() []Action {
	out := make([]Action, 0, len(allActions))
	for _, a := range allActions {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// Strings returns the action names in canonical order.
func (s ActionSet) Strings() []string {
	list := s.List()
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.String()
	}
	return out
}
