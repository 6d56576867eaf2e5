package components

import (
	"fmt"
	"html"
	"strings"
)

// HeroOptions configures the hero section.
type HeroOptions struct {
	Title    string
	Subtitle string
	// Button is an optional call to action below the subtitle
	Button HeroButton
}

// HeroButton represents a hero section button.
type HeroButton struct {
	Text string
	URL  string
}

// RenderHero generates the hero banner.
func RenderHero(opts HeroOptions) string {
	var sb strings.Builder

	sb.WriteString(`<section class="hero" aria-labelledby="hero-title">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")

	sb.WriteString(`<h1 id="hero-title" class="animate-fade-in">`)
	sb.WriteString(html.EscapeString(opts.Title))
	sb.WriteString(`</h1>`)
	sb.WriteString("\n")

	if opts.Subtitle != "" {
		sb.WriteString(`<p class="hero-subtitle">`)
		sb.WriteString(html.EscapeString(opts.Subtitle))
		sb.WriteString(`</p>`)
		sb.WriteString("\n")
	}

	if opts.Button.URL != "" {
		sb.WriteString(fmt.Sprintf(`<a href="%s" class="btn btn-lg">%s</a>`,
			html.EscapeString(opts.Button.URL), html.EscapeString(opts.Button.Text)))
		sb.WriteString("\n")
	}

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}
