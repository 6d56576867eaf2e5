package website

import (
	"fmt"
	"sort"
	"strings"
)

// Colors is the Jojo palette.
var Colors = map[string]string{
	"bg":        "#394738", // page background
	"card":      "#2c2f2f", // cards, active sidebar item, buttons
	"cardHover": "#2f3130",
	"code":      "#1d1f21", // usage blocks

	"text":      "#FFFFFF",
	"textMuted": "#a0a0a0",

	"prefix":   "#7ec699", // !!command
	"required": "#f8c555", // <arg>
	"optional": "#67cdcc", // [arg]
	"mention":  "#cc99cd", // @member, #channel

	"border": "#4a5a48",
}

var FontFamily = `system-ui, -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif`
var FontMono = `'SF Mono', SFMono-Regular, ui-monospace, 'DejaVu Sans Mono', Menlo, Consolas, monospace`

// RenderStyles generates the site stylesheet.
func RenderStyles() string {
	var sb strings.Builder

	sb.WriteString(cssReset())
	sb.WriteString(cssVariables(Colors))
	sb.WriteString(cssBase())
	sb.WriteString(cssLayout())
	sb.WriteString(cssNav())
	sb.WriteString(cssButtons())
	sb.WriteString(cssDocs())
	sb.WriteString(cssCode())
	sb.WriteString(cssCards())
	sb.WriteString(cssAnimations())
	sb.WriteString(cssAccessibility())
	sb.WriteString(cssResponsive())

	return sb.String()
}

func cssReset() string {
	return `
*,*::before,*::after{box-sizing:border-box;margin:0;padding:0}
html{-webkit-text-size-adjust:100%;tab-size:4;scroll-behavior:smooth}
body{line-height:1.6;-webkit-font-smoothing:antialiased}
img,svg{display:block;max-width:100%}
button{font:inherit}
a{color:inherit;text-decoration:none}
ul,ol{list-style:none}
`
}

// cssVariables emits the palette sorted by name so the stylesheet is stable.
func cssVariables(colors map[string]string) string {
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make([]string, 0, len(names))
	for _, name := range names {
		vars = append(vars, fmt.Sprintf("--color-%s:%s", name, colors[name]))
	}
	return fmt.Sprintf(`:root{%s;--font-sans:%s;--font-mono:%s}`, strings.Join(vars, ";"), FontFamily, FontMono)
}

func cssBase() string {
	return `
body{font-family:var(--font-sans);background:var(--color-bg);color:var(--color-text);min-height:100vh}
h1{font-size:clamp(2.25rem,6vw,3.75rem);font-weight:800;line-height:1.1}
h2{font-size:1.875rem;font-weight:700;margin-bottom:2rem}
h3{font-size:1.25rem;font-weight:600}
p{color:var(--color-textMuted)}
code{font-family:var(--font-mono)}
`
}

func cssLayout() string {
	return `
.container{width:100%;max-width:1200px;margin:0 auto;padding:0 1rem}
.section{padding:4rem 0}
.docs{display:flex;flex-direction:column;gap:2rem}
.docs-main{flex:1;min-width:0}
.text-center{text-align:center}
`
}

func cssNav() string {
	return `
.nav{display:flex;justify-content:space-between;align-items:center;padding:4rem 0 0;margin-bottom:4rem}
.logo{display:flex;align-items:center;gap:0.5rem;font-size:1.5rem;font-weight:700}
.logo svg{width:2rem;height:2rem}
.hero{text-align:center}
.hero h1{margin-bottom:1.5rem}
.hero-subtitle{font-size:1.25rem;max-width:42rem;margin:0 auto 3rem}
.sidebar{display:flex;flex-direction:column;gap:0.5rem}
.sidebar-item{display:flex;align-items:center;gap:0.75rem;padding:0.75rem 1rem;border-radius:0.5rem;color:var(--color-textMuted);transition:all 0.3s ease}
.sidebar-item:hover{background:var(--color-cardHover)}
.sidebar-item.active{background:var(--color-card);color:var(--color-text)}
.sidebar-item svg{width:1.25rem;height:1.25rem;flex-shrink:0}
`
}

func cssButtons() string {
	return `
.btn{display:inline-flex;align-items:center;gap:0.5rem;background:var(--color-card);color:var(--color-text);font-weight:700;padding:0.5rem 1.5rem;border-radius:9999px;transition:all 0.3s ease}
.btn:hover{background:var(--color-cardHover)}
.btn-lg{padding:0.75rem 2rem;font-size:1.125rem}
`
}

func cssDocs() string {
	return `
.docs-header{display:flex;justify-content:space-between;align-items:center;margin-bottom:1.5rem;gap:1rem;flex-wrap:wrap}
.docs-subtitle{font-size:1.5rem;font-weight:700}
.pager{display:flex;align-items:center;gap:1rem;color:var(--color-textMuted)}
.pager-btn{display:inline-flex;padding:0.5rem;border-radius:0.5rem;color:var(--color-text)}
.pager-btn:hover{background:var(--color-cardHover)}
.pager-btn.disabled{opacity:0.5;pointer-events:none}
.pager-btn svg{width:1.25rem;height:1.25rem}
.command-list{display:flex;flex-direction:column;gap:1rem}
.command{background:var(--color-card);padding:1.5rem;border-radius:0.5rem;box-shadow:0 4px 6px rgba(0,0,0,0.2);transition:box-shadow 0.3s ease}
.command:hover{box-shadow:0 10px 15px rgba(0,0,0,0.3)}
.command-name{font-size:1.125rem;font-weight:600;margin-bottom:0.5rem}
.command-desc{margin-bottom:0.75rem}
.empty{color:var(--color-textMuted)}
`
}

func cssCode() string {
	return `
.code-block{background:var(--color-code);border-radius:0.375rem;padding:1rem;overflow-x:auto;font-size:0.875rem;line-height:1.6}
.code-block code{color:var(--color-text);white-space:pre}
.token-prefix{color:var(--color-prefix)}
.token-required{color:var(--color-required)}
.token-optional{color:var(--color-optional)}
.token-mention{color:var(--color-mention)}
`
}

func cssCards() string {
	return `
.card{background:var(--color-card);border-radius:1rem;padding:2rem}
.card p{line-height:1.7}
.founder{display:flex;flex-direction:column;align-items:center;gap:2rem}
.avatar{width:8rem;height:8rem;border-radius:50%;border:4px solid var(--color-text);object-fit:cover;display:flex;align-items:center;justify-content:center;font-size:3rem;font-weight:800;background:var(--color-bg);flex-shrink:0}
.founder-name{margin-bottom:1rem}
.footer{padding:2rem 0;text-align:center}
.footer-links{display:flex;flex-wrap:wrap;justify-content:center;gap:2rem}
.footer-links a{color:var(--color-textMuted);transition:color 0.3s ease}
.footer-links a:hover{color:var(--color-text)}
.footer p{margin-top:1rem}
.error-code{font-size:4rem;font-weight:800;color:var(--color-textMuted)}
`
}

func cssAnimations() string {
	return `
@keyframes fadeIn{from{opacity:0;transform:translateY(10px)}to{opacity:1;transform:translateY(0)}}
.animate-fade-in{animation:fadeIn 0.4s ease forwards}
@media(prefers-reduced-motion:reduce){*{animation-duration:0.01ms!important;transition-duration:0.01ms!important}}
`
}

func cssAccessibility() string {
	return `
.sr-only{position:absolute;width:1px;height:1px;padding:0;margin:-1px;overflow:hidden;clip:rect(0,0,0,0);white-space:nowrap;border:0}
.skip-link{position:absolute;top:-40px;left:0;background:var(--color-card);padding:0.5rem 1rem;z-index:1000;font-weight:600}
.skip-link:focus{top:0}
:focus-visible{outline:2px solid var(--color-text);outline-offset:2px}
`
}

func cssResponsive() string {
	return `
@media(min-width:768px){
.docs{flex-direction:row}
.sidebar{width:16rem;flex-shrink:0}
.founder{flex-direction:row}
}
`
}
