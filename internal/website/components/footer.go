package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/jojobot/website/internal/website"
)

// FooterOptions configures the footer component.
type FooterOptions struct {
	Links     []website.NavLink
	Copyright string
}

// DefaultFooterLinks are the legal and about pages.
func DefaultFooterLinks() []website.NavLink {
	return []website.NavLink{
		{Label: "Privacy Policy", URL: "/privacy"},
		{Label: "Terms of Service", URL: "/terms"},
		{Label: "About Us", URL: "/about"},
	}
}

// RenderFooter generates the page footer.
func RenderFooter(opts FooterOptions) string {
	var sb strings.Builder

	sb.WriteString(`<footer class="footer" role="contentinfo">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")

	sb.WriteString(`<nav class="footer-links" aria-label="Footer navigation">`)
	sb.WriteString("\n")
	for _, link := range opts.Links {
		extra := ""
		if link.External {
			extra = ` target="_blank" rel="noopener noreferrer"`
		}
		sb.WriteString(fmt.Sprintf(`<a href="%s"%s>%s</a>`,
			html.EscapeString(link.URL), extra, html.EscapeString(link.Label)))
		sb.WriteString("\n")
	}
	sb.WriteString(`</nav>`)
	sb.WriteString("\n")

	if opts.Copyright != "" {
		sb.WriteString(`<p>`)
		sb.WriteString(html.EscapeString(opts.Copyright))
		sb.WriteString(`</p>`)
		sb.WriteString("\n")
	}

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</footer>`)
	sb.WriteString("\n")

	return sb.String()
}
