// Package components provides the UI pieces of the documentation site.
package components

import (
	"fmt"
	"html"
	"strings"
)

// NavbarOptions configures the navbar component.
type NavbarOptions struct {
	// Logo is the logo text (usually the bot name)
	Logo string
	// InviteURL is the "Add to Discord" target
	InviteURL  string
	InviteText string
}

// RenderNavbar generates the top bar with the logo and the invite button.
func RenderNavbar(opts NavbarOptions) string {
	var sb strings.Builder

	sb.WriteString(`<a href="#main-content" class="skip-link">Skip to main content</a>`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")
	sb.WriteString(`<header class="nav" role="navigation" aria-label="Main navigation">`)
	sb.WriteString("\n")

	sb.WriteString(`<a href="/" class="logo" aria-label="Home">`)
	sb.WriteString(BotSVG())
	sb.WriteString(`<span>`)
	sb.WriteString(html.EscapeString(opts.Logo))
	sb.WriteString(`</span></a>`)
	sb.WriteString("\n")

	if opts.InviteURL != "" {
		text := opts.InviteText
		if text == "" {
			text = "Add to Discord"
		}
		sb.WriteString(fmt.Sprintf(`<a href="%s" class="btn">%s</a>`,
			html.EscapeString(opts.InviteURL), html.EscapeString(text)))
		sb.WriteString("\n")
	}

	sb.WriteString(`</header>`)
	sb.WriteString("\n")
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	return sb.String()
}
