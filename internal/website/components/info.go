package components

import (
	"html"
	"strconv"
	"strings"
)

// InfoPage is a static text page such as About or Privacy.
type InfoPage struct {
	Key        string
	Title      string
	Paragraphs []string
}

// DefaultInfoPages returns the About, Privacy and Terms pages keyed by path segment.
func DefaultInfoPages(siteName string) map[string]InfoPage {
	return map[string]InfoPage{
		"about": {
			Key:   "about",
			Title: "About Us",
			Paragraphs: []string{
				siteName + " is a feature-rich Discord bot created to provide entertainment, moderation, and utility features " +
					"for Discord servers. Started as a fun project, it has grown into a powerful tool used by thousands " +
					"of users. The bot is constantly being improved and updated with new features.",
			},
		},
		"privacy": {
			Key:   "privacy",
			Title: "Privacy Policy",
			Paragraphs: []string{
				"We take privacy seriously. This Privacy Policy outlines how we collect, use, and protect your data.",
			},
		},
		"terms": {
			Key:   "terms",
			Title: "Terms of Service",
			Paragraphs: []string{
				"By using " + siteName + ", you agree to our Terms of Service which outline the rules and guidelines for using " +
					"the bot in your Discord server.",
			},
		},
	}
}

// RenderInfo generates a titled card of paragraphs.
func RenderInfo(page InfoPage) string {
	var sb strings.Builder

	sb.WriteString(`<section class="section" id="main-content" aria-labelledby="info-title">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")
	sb.WriteString(`<h2 id="info-title">`)
	sb.WriteString(html.EscapeString(page.Title))
	sb.WriteString(`</h2>`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="card">`)
	sb.WriteString("\n")
	for _, p := range page.Paragraphs {
		sb.WriteString(`<p>`)
		sb.WriteString(html.EscapeString(p))
		sb.WriteString(`</p>`)
		sb.WriteString("\n")
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

// RenderError generates the body of an error page.
func RenderError(status int, title, message string) string {
	var sb strings.Builder

	sb.WriteString(`<section class="section text-center" id="main-content">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")
	sb.WriteString(`<p class="error-code">`)
	sb.WriteString(strconv.Itoa(status))
	sb.WriteString(`</p>`)
	sb.WriteString("\n")
	sb.WriteString(`<h2>`)
	sb.WriteString(html.EscapeString(title))
	sb.WriteString(`</h2>`)
	sb.WriteString("\n")
	if message != "" {
		sb.WriteString(`<p>`)
		sb.WriteString(html.EscapeString(message))
		sb.WriteString(`</p>`)
		sb.WriteString("\n")
	}
	sb.WriteString(`<p><a href="/" class="btn">Back to the commands</a></p>`)
	sb.WriteString("\n")
	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}
