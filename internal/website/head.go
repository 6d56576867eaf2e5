package website

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// RenderHead generates the <head> section with SEO, Open Graph and JSON-LD.
func RenderHead(cfg PageConfig) string {
	var sb strings.Builder

	themeColor := cfg.ThemeColor
	if themeColor == "" {
		themeColor = Colors["bg"]
	}

	sb.WriteString("<head>\n")
	sb.WriteString(`<meta charset="UTF-8">` + "\n")
	sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(cfg.Title)))

	if cfg.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta name="description" content="%s">`+"\n", html.EscapeString(cfg.Description)))
	}
	if len(cfg.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf(`<meta name="keywords" content="%s">`+"\n", html.EscapeString(strings.Join(cfg.Keywords, ", "))))
	}
	if cfg.URL != "" {
		sb.WriteString(fmt.Sprintf(`<link rel="canonical" href="%s">`+"\n", html.EscapeString(cfg.URL)))
	}
	sb.WriteString(fmt.Sprintf(`<meta name="theme-color" content="%s">`+"\n", html.EscapeString(themeColor)))
	sb.WriteString(`<meta name="robots" content="index, follow">` + "\n")

	sb.WriteString(renderOpenGraph(cfg))
	sb.WriteString(renderJSONLD(cfg))

	sb.WriteString(`<link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>🤖</text></svg>">` + "\n")

	sb.WriteString("<style" + nonceAttr(cfg.Nonce) + ">\n")
	sb.WriteString(RenderStyles())
	sb.WriteString("\n</style>\n")

	sb.WriteString("</head>\n")
	return sb.String()
}

func renderOpenGraph(cfg PageConfig) string {
	var sb strings.Builder

	sb.WriteString(`<meta property="og:type" content="website">` + "\n")
	if cfg.SiteName != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:site_name" content="%s">`+"\n", html.EscapeString(cfg.SiteName)))
	}
	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:title" content="%s">`+"\n", html.EscapeString(cfg.Title)))
	}
	if cfg.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:description" content="%s">`+"\n", html.EscapeString(cfg.Description)))
	}
	if cfg.URL != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:url" content="%s">`+"\n", html.EscapeString(cfg.URL)))
	}
	sb.WriteString(`<meta name="twitter:card" content="summary">` + "\n")

	return sb.String()
}

// renderJSONLD describes the bot as a schema.org SoftwareApplication.
// json.Marshal escapes '<' so the payload cannot close the script element.
func renderJSONLD(cfg PageConfig) string {
	ld := map[string]any{
		"@context":            "https://schema.org",
		"@type":               "SoftwareApplication",
		"name":                cfg.SiteName,
		"description":         cfg.Description,
		"applicationCategory": "CommunicationApplication",
		"operatingSystem":     "Discord",
		"offers": map[string]any{
			"@type": "Offer",
			"price": "0",
		},
	}
	if cfg.URL != "" {
		ld["url"] = cfg.URL
	}
	if cfg.InviteURL != "" {
		ld["installUrl"] = cfg.InviteURL
	}

	data, err := json.Marshal(ld)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(`<script type="application/ld+json"%s>%s</script>`+"\n", nonceAttr(cfg.Nonce), data)
}

// RenderDocument wraps content in a complete HTML document. The content
// lives inside #live-root, which the live client replaces on join.
func RenderDocument(cfg PageConfig, bodyContent string) string {
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString(fmt.Sprintf(`<html lang="%s">`+"\n", html.EscapeString(lang)))
	sb.WriteString(RenderHead(cfg))
	sb.WriteString("<body>\n")
	sb.WriteString(`<div id="live-root" data-live-root>` + "\n")
	sb.WriteString(bodyContent)
	sb.WriteString("</div>\n")
	if cfg.ScriptSrc != "" {
		sb.WriteString(fmt.Sprintf(`<script src="%s" defer%s></script>`+"\n",
			html.EscapeString(cfg.ScriptSrc), nonceAttr(cfg.Nonce)))
	}
	sb.WriteString("</body>\n</html>")
	return sb.String()
}

func nonceAttr(nonce string) string {
	if nonce == "" {
		return ""
	}
	return ` nonce="` + html.EscapeString(nonce) + `"`
}
