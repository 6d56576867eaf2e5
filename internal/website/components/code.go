package components

import (
	"html"
	"strings"
)

// RenderUsage renders a usage string as a bash code block. Multi-line
// usages keep their line breaks.
func RenderUsage(usage string) string {
	var sb strings.Builder

	sb.WriteString(`<pre class="code-block"><code class="language-bash">`)
	for i, line := range strings.Split(usage, "\n") {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(highlightUsage(line))
	}
	sb.WriteString(`</code></pre>`)

	return sb.String()
}

// highlightUsage marks the !!command, <required> and [optional] arguments
// and @member / #channel placeholders. Every token is escaped on its own.
func highlightUsage(line string) string {
	var sb strings.Builder

	for i := 0; i < len(line); {
		var j int
		class := ""

		switch c := line[i]; {
		case strings.HasPrefix(line[i:], "!!"):
			j = wordEnd(line, i+2)
			class = "token-prefix"
		case c == '<':
			j = closingIndex(line, i, '>')
			class = "token-required"
		case c == '[':
			j = closingIndex(line, i, ']')
			class = "token-optional"
		case (c == '@' || c == '#') && isTokenStart(line, i):
			j = wordEnd(line, i+1)
			class = "token-mention"
		default:
			j = i + 1
			for j < len(line) && !isTokenStart(line, j) {
				j++
			}
		}

		if class == "" {
			sb.WriteString(html.EscapeString(line[i:j]))
		} else {
			sb.WriteString(`<span class="` + class + `">`)
			sb.WriteString(html.EscapeString(line[i:j]))
			sb.WriteString(`</span>`)
		}
		i = j
	}

	return sb.String()
}

func isTokenStart(line string, i int) bool {
	switch line[i] {
	case '<', '[':
		return true
	case '!':
		return strings.HasPrefix(line[i:], "!!")
	case '@', '#':
		return i == 0 || line[i-1] == ' '
	}
	return false
}

func wordEnd(line string, from int) int {
	for from < len(line) && line[from] != ' ' {
		from++
	}
	return from
}

// closingIndex returns the index just past the matching close byte, or the
// end of the line when the bracket is never closed.
func closingIndex(line string, from int, close byte) int {
	if k := strings.IndexByte(line[from+1:], close); k >= 0 {
		return from + 1 + k + 1
	}
	return len(line)
}
