package content

import (
	"testing"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
)

func TestResources(t *testing.T) {
	resources := Resources()
	if len(resources) != 6 {
		t.Fatalf("Expected 6 resources, got %d", len(resources))
	}

	byCollection := map[string]Resource{}
	for i, res := range resources {
		if i > 0 && resources[i-1].Collection >= res.Collection {
			t.Errorf("Resources not sorted at %d: %s >= %s", i, resources[i-1].Collection, res.Collection)
		}
		byCollection[res.Collection] = res
	}

	projects := byCollection["projects"]
	if projects.Kind != "project" || projects.Page != permission.PageProjects || projects.Private {
		t.Errorf("Unexpected projects resource: %+v", projects)
	}

	messages := byCollection[MessagesCollection]
	if !messages.Private || messages.OrderBy != "createdAt" || !messages.Desc {
		t.Errorf("Messages should be private and newest first: %+v", messages)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		doc  map[string]any
		want string
	}{
		{map[string]any{"title": "Portfolio", "name": "ignored"}, "Portfolio"},
		{map[string]any{"name": "Go"}, "Go"},
		{map[string]any{"question": "Why?"}, "Why?"},
		{map[string]any{"title": ""}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.doc); got != tt.want {
			t.Errorf("DisplayName(%v) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}
