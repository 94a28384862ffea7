// Package permission models what a delegated administrator may do: a closed
// set of admin pages, a bitset of actions per page, and the decision function
// that maps a role, page and action to allow, deny or requires-approval.
package permission

import (
	"fmt"
	"strings"
)

// Page is an administrative section that permissions are scoped to.
type Page string

const (
	PageProfile    Page = "profile"
	PageSkills     Page = "skills"
	PageProjects   Page = "projects"
	PageEducation  Page = "education"
	PageExperience Page = "experience"
	PageFAQs       Page = "faqs"
	PageMessages   Page = "messages"
)

// AllPages lists every page in display order.
var AllPages = []Page{
	PageProfile,
	PageSkills,
	PageProjects,
	PageEducation,
	PageExperience,
	PageFAQs,
	PageMessages,
}

// Valid reports whether p is one of the known pages.
func (p Page) Valid() bool {
	for _, known := range AllPages {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePage parses a page name case-insensitively.
func ParsePage(s string) (Page, error) {
	p := Page(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown page %q", s)
	}
	return p, nil
}

func (p Page) index() int {
	for i, known := range AllPages {
		if p == known {
			return i
		}
	}
	return len(AllPages)
}
