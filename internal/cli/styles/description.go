package styles

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Cache Glamour renderers by width to avoid expensive re-creation
var (
	rendererCache sync.Map   // map[int]*glamour.TermRenderer
	renderMu      sync.Mutex // a TermRenderer reuses its buffer
)

// getRenderer returns a cached renderer for the given width
func getRenderer(width int) (*glamour.TermRenderer, error) {
	if cached, ok := rendererCache.Load(width); ok {
		return cached.(*glamour.TermRenderer), nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}

	rendererCache.Store(width, renderer)
	return renderer, nil
}

// RenderDescription renders a card description as markdown. Rendering
// failures fall back to the raw text.
func RenderDescription(description string, width int) string {
	if description == "" {
		return SubtitleStyle.Italic(true).Render("No description")
	}
	renderer, err := getRenderer(width)
	if err != nil {
		return description
	}
	renderMu.Lock()
	rendered, err := renderer.Render(description)
	renderMu.Unlock()
	if err != nil {
		return description
	}
	return strings.TrimSpace(rendered)
}
