package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Package-level renderer cache to avoid expensive recreation when
// rendering message after message.
var mdRendererCache struct {
	sync.Mutex
	renderer *glamour.TermRenderer
	width    int
}

// RenderMarkdown renders markdown content using glamour. On error the
// original content is returned unchanged, so rendering problems never
// hide interviewer text.
func RenderMarkdown(content string, width int) string {
	if content == "" {
		return ""
	}

	mdRendererCache.Lock()
	defer mdRendererCache.Unlock()

	if mdRendererCache.renderer == nil || mdRendererCache.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		mdRendererCache.renderer = renderer
		mdRendererCache.width = width
	}

	rendered, err := mdRendererCache.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(rendered)
}
