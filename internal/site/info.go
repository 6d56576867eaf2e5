package site

import (
	"context"
	"io"
	"strings"

	"github.com/jojobot/website/internal/website/components"
	"github.com/jojobot/website/pkg/core"
)

// InfoView renders one of the static text pages.
type InfoView struct {
	core.BaseComponent

	page   components.InfoPage
	chrome Chrome
}

// NewInfoView returns a factory for InfoView components.
func NewInfoView(page components.InfoPage, chrome Chrome) func() core.Component {
	return func() core.Component {
		return &InfoView{page: page, chrome: chrome}
	}
}

func (v *InfoView) Name() string {
	return "info:" + v.page.Key
}

func (v *InfoView) Render(ctx context.Context) core.Renderer {
	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString(v.chrome.navbar())
		sb.WriteString(`<main>`)
		sb.WriteString("\n")
		sb.WriteString(components.RenderInfo(v.page))
		sb.WriteString(`</main>`)
		sb.WriteString("\n")
		sb.WriteString(v.chrome.footer())
		_, err := io.WriteString(w, sb.String())
		return err
	})
}
