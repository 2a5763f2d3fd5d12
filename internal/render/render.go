// Package render converts markdown replies to styled terminal output.
package render

import (
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/diogo/gemchat/internal/config"
)

// Options configures the terminal markdown renderer.
type Options struct {
	// Width is the maximum output width in cells
	Width int

	// Style is a built-in glamour style name ("dark", "light", "auto",
	// "notty") or a path to a JSON style file
	Style string

	// Emoji converts :emoji: codes to unicode characters
	Emoji bool

	// PreserveNewLines keeps single line breaks instead of reflowing
	PreserveNewLines bool
}

// DefaultOptions returns the default renderer configuration
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		Emoji:            true,
		PreserveNewLines: true,
	}
}

// FromConfig builds renderer options from the user's markdown settings
func FromConfig(cfg config.MarkdownConfig, width int) Options {
	opts := DefaultOptions()
	if cfg.Style != "" {
		opts.Style = cfg.Style
	}
	opts.Emoji = cfg.EnableEmoji
	opts.PreserveNewLines = cfg.PreserveNewLines
	if width > 0 {
		opts.Width = width
	}
	return opts
}

// glamour's TermRenderer is not safe for concurrent Render calls, so
// renderers are pooled per option set rather than shared.
var (
	poolMu sync.Mutex
	pools  = map[Options]*sync.Pool{}
)

func poolFor(opts Options) *sync.Pool {
	poolMu.Lock()
	defer poolMu.Unlock()

	if pool, ok := pools[opts]; ok {
		return pool
	}
	pool := &sync.Pool{
		New: func() interface{} {
			renderer, err := newRenderer(opts)
			if err != nil {
				return nil
			}
			return renderer
		},
	}
	pools[opts] = pool
	return pool
}

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithWordWrap(opts.Width),
	}

	if opts.Style == "auto" {
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	} else {
		rendererOpts = append(rendererOpts, glamour.WithStylePath(opts.Style))
	}
	if opts.Emoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}

	return glamour.NewTermRenderer(rendererOpts...)
}

// Markdown renders markdown content for terminal display. Identical input
// and options always produce identical output.
func Markdown(content string, opts Options) (string, error) {
	pool := poolFor(opts)

	var renderer *glamour.TermRenderer
	if pooled := pool.Get(); pooled != nil {
		renderer = pooled.(*glamour.TermRenderer)
	} else {
		created, err := newRenderer(opts)
		if err != nil {
			return "", err
		}
		renderer = created
	}
	defer pool.Put(renderer)

	return renderer.Render(content)
}
