// Package render provides markdown rendering and color themes for terminal output.
package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Options selects how a quiz answer is rendered.
type Options struct {
	Width            int
	Style            string // glamour style name or JSON style path
	EnableEmoji      bool
	PreserveNewLines bool // keeps each answer line, such as a numbered choice, on its own row
}

// The renderer for the last option set is kept; glamour.TermRenderer is not
// safe for concurrent use.
var (
	mu         sync.Mutex
	renderer   *glamour.TermRenderer
	rendererOf Options
)

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	r, err := rendererFor(opts)
	if err != nil {
		return "", err
	}
	out, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

func rendererFor(opts Options) (*glamour.TermRenderer, error) {
	if renderer != nil && rendererOf == opts {
		return renderer, nil
	}

	termOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
	}
	if opts.EnableEmoji {
		termOpts = append(termOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		termOpts = append(termOpts, glamour.WithPreservedNewLines())
	}

	r, err := glamour.NewTermRenderer(termOpts...)
	if err != nil {
		return nil, err
	}
	renderer, rendererOf = r, opts
	return r, nil
}
