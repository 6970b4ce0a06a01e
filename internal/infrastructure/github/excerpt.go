package github

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const excerptRunes = 280

// excerpt renders a short plain-text preview of an issue body. The rendered
// HTML is preferred; the raw markdown is the fallback.
func excerpt(bodyHTML, body string) string {
	text := ""
	if strings.TrimSpace(bodyHTML) != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(bodyHTML)); err == nil {
			doc.Find("pre, code, img, script, style").Remove()
			doc.Find("p, li, h1, h2, h3, h4, blockquote").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				text = collapse(s.Text())
				return text == ""
			})
			if text == "" {
				text = collapse(doc.Text())
			}
		}
	}
	if text == "" {
		text = collapse(body)
	}
	return truncate(text, excerptRunes)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
