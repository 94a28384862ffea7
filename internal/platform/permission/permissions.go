package permission

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// PagePermissions maps each page to the actions granted on it.
// Stored and serialized as an ordered list of {page, permissions} entries.
type PagePermissions map[Page]ActionSet

// PageEntry is the wire form of one page's grant.
type PageEntry struct {
	Page        string   `json:"page" bson:"page"`
	Permissions []string `json:"permissions" bson:"permissions"`
}

// DefaultPermissions grants VIEW on every page.
func DefaultPermissions() PagePermissions {
	perms := make(PagePermissions, len(AllPages))
	for _, p := range AllPages {
		perms[p] = NewActionSet(ActionView)
	}
	return perms
}

// FullPermissions grants every action on every page.
func FullPermissions() PagePermissions {
	perms := make(PagePermissions, len(AllPages))
	for _, p := range AllPages {
		perms[p] = NewActionSet(allActions...)
	}
	return perms
}

// Allows reports whether action is granted on page.
func (pp PagePermissions) Allows(page Page, action Action) bool {
	return pp[page].Has(action)
}

// Entries returns the grant as an ordered list, skipping empty pages.
func (pp PagePermissions) Entries() []PageEntry {
	pages := make([]Page, 0, len(pp))
	for p, set := range pp {
		if set != 0 {
			pages = append(pages, p)
		}
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].index() < pages[j].index() })

	entries := make([]PageEntry, 0, len(pages))
	for _, p := range pages {
		entries = append(entries, PageEntry{Page: string(p), Permissions: pp[p].Strings()})
	}
	return entries
}

// FromEntries builds PagePermissions from wire entries, rejecting unknown
// pages and actions.
func FromEntries(entries []PageEntry) (PagePermissions, error) {
	perms := make(PagePermissions, len(entries))
	for _, e := range entries {
		page, err := ParsePage(e.Page)
		if err != nil {
			return nil, err
		}
		set := perms[page]
		for _, name := range e.Permissions {
			a, err := ParseAction(name)
			if err != nil {
				return nil, fmt.Errorf("page %s: %w", page, err)
			}
			set = set.With(a)
		}
		perms[page] = set
	}
	return perms, nil
}

func (pp PagePermissions) MarshalJSON() ([]byte, error) {
	return json.Marshal(pp.Entries())
}

func (pp *PagePermissions) UnmarshalJSON(data []byte) error {
	var entries []PageEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	parsed, err := FromEntries(entries)
	if err != nil {
		return err
	}
	*pp = parsed
	return nil
}

func (pp PagePermissions) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(pp.Entries())
}

// UnmarshalBSONValue skips entries for pages that no longer exist so that
// stored profiles survive a page being retired.
func (pp *PagePermissions) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var entries []PageEntry
	raw := bson.RawValue{Type: t, Value: data}
	if err := raw.Unmarshal(&entries); err != nil {
		return err
	}
	perms := make(PagePermissions, len(entries))
	for _, e := range entries {
		page, err := ParsePage(e.Page)
		if err != nil {
			continue
		}
		for _, name := range e.Permissions {
			if a, err := ParseAction(name); err == nil {
				perms[page] = perms[page].With(a)
			}
		}
	}
	*pp = perms
	return nil
}
