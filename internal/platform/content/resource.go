// Package content describes the portfolio collections served by the
// pass-through content endpoints and maps each one to its permission page.
package content

import (
	"sort"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/execution"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
)

// MessagesCollection holds contact form submissions.
const MessagesCollection = "messages"

// Resource is one generic content collection.
type Resource struct {
	Collection string
	Kind       string
	Page       permission.Page

	// Private collections are readable only with VIEW on the page.
	Private bool

	OrderBy string
	Desc    bool
}

// Resources returns the generic collections that have a permission page,
// in collection order.
func Resources() []Resource {
	var out []Resource
	for kind, g := range execution.DefaultGenericKinds {
		page, err := permission.ParsePage(g.Collection)
		if err != nil {
			continue
		}
		res := Resource{Collection: g.Collection, Kind: kind, Page: page, OrderBy: "order"}
		if g.Collection == MessagesCollection {
			res.Private = true
			res.OrderBy = "createdAt"
			res.Desc = true
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Collection < out[j].Collection })
	return out
}

// DisplayName picks a human label for a document from its usual title fields.
func DisplayName(doc map[string]any) string {
	for _, key := range []string{"title", "name", "question", "institution", "company"} {
		if s, ok := doc[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
