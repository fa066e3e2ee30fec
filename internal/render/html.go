package render

import (
	"strings"

	xhtml "golang.org/x/net/html"
)

// HTMLToText flattens an HTML document (typically a proxy or gateway error
// page returned instead of JSON) to a single line of text, capped at limit
// runes when limit > 0. Script and style bodies are dropped.
func HTMLToText(raw string, limit int) string {
	if raw == "" {
		return ""
	}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	skip := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return truncate(strings.Join(strings.Fields(sb.String()), " "), limit)

		case xhtml.StartTagToken:
			switch tokenizer.Token().Data {
			case "script", "style":
				skip++
			case "p", "br", "div", "h1", "h2", "h3", "title", "li":
				sb.WriteString(" ")
			}

		case xhtml.EndTagToken:
			switch tokenizer.Token().Data {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "title", "h1", "h2", "h3":
				sb.WriteString(" ")
			}

		case xhtml.TextToken:
			if skip == 0 {
				sb.Write(tokenizer.Text())
			}
		}
	}
}

// LooksLikeHTML reports whether body appears to be markup rather than JSON
// or plain text.
func LooksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	trimmed := strings.TrimSpace(string(body))
	return strings.HasPrefix(trimmed, "<")
}

// Wrap performs simple word wrapping to the given width.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var result strings.Builder
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}
		lineLen := 0
		for i, word := range words {
			wlen := len([]rune(word))
			if i > 0 && lineLen+1+wlen > width {
				result.WriteString("\n")
				lineLen = 0
			} else if i > 0 {
				result.WriteString(" ")
				lineLen++
			}
			result.WriteString(word)
			lineLen += wlen
		}
		result.WriteString("\n")
	}
	return strings.TrimRight(result.String(), "\n")
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
