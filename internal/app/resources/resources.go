// internal/app/resources/resources.go
package resources

import (
	"embed"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

// FS holds the page chrome every feature template wraps itself in
// (layout_head, layout_foot).
//
//go:embed templates/*.gohtml
var FS embed.FS

var registerOnce sync.Once

// LoadSharedTemplates registers the layout set. Safe to call more than once.
func LoadSharedTemplates() {
	registerOnce.Do(func() {
		templates.Register(templates.Set{
			Name:     "layout",
			FS:       FS,
			Patterns: []string{"templates/*.gohtml"},
		})
	})
}
