package render

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// ParseHTML parses a rendered document.
func ParseHTML(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// HasSelector reports whether selector matches anything in doc.
// An empty selector always matches.
func HasSelector(doc *goquery.Document, selector string) bool {
	if selector == "" {
		return true
	}
	return doc.Find(selector).Length() > 0
}

// ExtractDocument evaluates fields against doc.
// Every backend renders to HTML and extracts through this function, so
// field semantics do not depend on the renderer in use.
func ExtractDocument(doc *goquery.Document, pageURL string, fields []Field) Values {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	values := make(Values, len(fields))
	for _, f := range fields {
		sel := doc.Find(f.Selector)
		if !f.All {
			sel = sel.First()
		}

		var found []string
		sel.Each(func(_ int, s *goquery.Selection) {
			if v := readField(s, f.Attr, base); v != "" {
				found = append(found, v)
			}
		})
		if len(found) > 0 {
			values[f.Name] = found
		}
	}
	return values
}

// readField reads the text or attribute of a single element.
func readField(s *goquery.Selection, attr string, base *url.URL) string {
	if attr == "" {
		return CleanText(s.Text())
	}

	v, ok := s.Attr(attr)
	if !ok {
		return ""
	}
	v = CleanText(v)
	if v != "" && base != nil && (attr == "src" || attr == "href") {
		if ref, err := url.Parse(v); err == nil {
			v = base.ResolveReference(ref).String()
		}
	}
	return v
}

// CleanText normalizes extracted text to NFC and trims surrounding space.
// Inner line breaks are kept; callers that want the first line split on
// them.
func CleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
