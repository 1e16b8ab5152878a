package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/devdiary/devdiary/internal/domain"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>DevDiary Summary - %s</title>
<style>
:root {
  --bg-color: #ffffff; --text-color: #24292e; --border-color: #e1e4e8;
  --code-bg: #f6f8fa; --header-bg: #f6f8fa;
}
@media (prefers-color-scheme: dark) {
  :root {
    --bg-color: #0d1117; --text-color: #c9d1d9; --border-color: #30363d;
    --code-bg: #161b22; --header-bg: #161b22;
  }
}
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif;
  line-height: 1.6; color: var(--text-color); background-color: var(--bg-color);
  max-width: 900px; margin: 0 auto; padding: 20px;
}
h1, h2, h3 { margin: 24px 0 16px; font-weight: 600; line-height: 1.25; }
h1 { font-size: 2em; border-bottom: 1px solid var(--border-color); padding-bottom: .3em; }
h2 { font-size: 1.5em; border-bottom: 1px solid var(--border-color); padding-bottom: .3em; }
code {
  padding: .2em .4em; font-size: 85%%; background-color: var(--code-bg);
  border-radius: 3px; font-family: Consolas, Menlo, monospace;
}
ul { padding-left: 2em; }
li { margin-top: .25em; }
hr { height: .25em; margin: 24px 0; background-color: var(--border-color); border: 0; }
</style>
</head>
<body>
%s
</body>
</html>`

// HTML renders a scan result by converting the Markdown document with a
// small line-oriented converter and wrapping it in a self-contained page.
func HTML(result *domain.ScanResult, opts Options) string {
	body := markdownToHTML(Markdown(result, opts))
	return fmt.Sprintf(htmlTemplate, html.EscapeString(string(result.ScanMode)), body)
}

var (
	boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)
	codeRe = regexp.MustCompile("`([^`]+)`")
)

// markdownToHTML handles only the constructs the Markdown exporter emits:
// headings, bold, inline code, bullet lists, rules and paragraphs.
func markdownToHTML(md string) string {
	var b strings.Builder
	inList := false

	closeList := func() {
		if inList {
			b.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			closeList()
		case strings.HasPrefix(trimmed, "### "):
			closeList()
			fmt.Fprintf(&b, "<h3>%s</h3>\n", inline(trimmed[4:]))
		case strings.HasPrefix(trimmed, "## "):
			closeList()
			fmt.Fprintf(&b, "<h2>%s</h2>\n", inline(trimmed[3:]))
		case strings.HasPrefix(trimmed, "# "):
			closeList()
			fmt.Fprintf(&b, "<h1>%s</h1>\n", inline(trimmed[2:]))
		case trimmed == "---":
			closeList()
			b.WriteString("<hr>\n")
		case strings.HasPrefix(trimmed, "- "):
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", inline(trimmed[2:]))
		default:
			closeList()
			fmt.Fprintf(&b, "<p>%s</p>\n", inline(trimmed))
		}
	}
	closeList()
	return b.String()
}

// inline escapes a line and applies bold and inline-code markup.
func inline(text string) string {
	escaped := html.EscapeString(text)
	escaped = boldRe.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = codeRe.ReplaceAllString(escaped, "<code>$1</code>")
	return escaped
}
