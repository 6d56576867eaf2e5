package components

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/jojobot/website/internal/website"
)

// RenderFounder generates the "Meet the Founder" card.
func RenderFounder(founder website.FounderConfig) string {
	if founder.Name == "" {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(`<section class="section" aria-labelledby="founder-title">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="card">`)
	sb.WriteString("\n")
	sb.WriteString(`<h2 id="founder-title">Meet the Founder</h2>`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="founder">`)
	sb.WriteString("\n")

	if founder.Avatar != "" {
		sb.WriteString(fmt.Sprintf(`<img src="%s" alt="%s" class="avatar">`,
			html.EscapeString(founder.Avatar), html.EscapeString(founder.Name)))
	} else {
		initial, _ := utf8.DecodeRuneInString(founder.Name)
		sb.WriteString(fmt.Sprintf(`<div class="avatar" aria-hidden="true">%s</div>`,
			html.EscapeString(strings.ToUpper(string(initial)))))
	}
	sb.WriteString("\n")

	sb.WriteString(`<div>`)
	sb.WriteString(`<h3 class="founder-name">`)
	sb.WriteString(html.EscapeString(founder.Name))
	sb.WriteString(`</h3>`)
	if founder.Blurb != "" {
		sb.WriteString(`<p>`)
		sb.WriteString(html.EscapeString(founder.Blurb))
		sb.WriteString(`</p>`)
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}
