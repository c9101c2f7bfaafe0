package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// CleanText turns feed markup into normalized single-spaced plain text.
func CleanText(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			doc.Find("script, style, noscript").Remove()
			s = doc.Text()
		}
	}
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
