package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// junkTextLimit is the length below which a div containing a junk keyword is
// treated as promotional/footer furniture and removed. Longer divs might
// legitimately mention these terms in regulation text.
const junkTextLimit = 2000

// previewLen is how much of a sibling div's text is inspected when deciding
// whether it continues the regulation body.
const previewLen = 100

// junkKeywords mark promotional and footer elements the site embeds inside
// the content region. This list is a layout heuristic, not an invariant; it
// tracks the site and will need updates when the site changes.
var junkKeywords = []string{
	"Disclaimer", "reCAPTCHA", "Free Daily Summaries", "Newsletter",
	"Sign Up", "Enter Your Email", "Ask a Lawyer", "Find a Lawyer",
	"Get Listed", "Justia Legal Resources", "Justia Connect",
	"Privacy Policy", "Terms of Service", "Google", "CLE Credits",
	"Webinars", "Toggle button", "Lawyers - Get Listed",
	"Get free summaries", "Free Answers", "Our Suggestions",
}

// contentKeywords identify sibling divs that continue the regulation body
// even without the content-indent class.
var contentKeywords = []string{"Section", "subsection", "State Treasurer", "taxpayer"}

// Content extracts the regulation body of a leaf page.
//
// The site's markup scatters a regulation across the main-content div and a
// run of sibling content-indent divs, with promotional furniture
// interspersed. The strategy, in order:
//  1. Drop chrome elements (header, footer, nav, script, style, noscript)
//  2. Inside main-content, drop disclaimer, junk-keyword and notification divs
//  3. Collect main-content plus following sibling divs that continue the
//     body, stopping at the first disclaimer/footer/unrelated div
//  4. Drop headings, citation wrappers and breadcrumbs from the collection
//  5. Join text fragments with newlines and collapse blank-line runs
//
// Content prunes the tree as it goes; call it after the other lookups when
// extracting a leaf.
func (d *Document) Content() string {
	d.gq.Find("header, footer, nav, script, style, noscript").Remove()

	main := d.gq.Find("#main-content").First()
	if main.Length() == 0 {
		return ""
	}

	main.Find("div.disclaimer").Remove()

	// Remove promotional divs by keyword, shortest first is irrelevant here:
	// Remove() detaches but iteration over the original selection is safe.
	main.Find("div").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) < junkTextLimit && containsAny(text, junkKeywords) {
			s.Remove()
		}
	})

	// Remove notification banners
	main.Find("div[id]").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok && strings.Contains(strings.ToLower(id), "notification") {
			s.Remove()
		}
	})

	collected := collectContentDivs(main)

	var parts []string
	for _, sel := range collected {
		sel.Find("h1").Remove()
		sel.Find("div.has-margin-bottom-20").Remove()
		sel.Find(".breadcrumbs").Remove()
		for _, n := range sel.Nodes {
			parts = append(parts, rawTextLines(n))
		}
	}

	return cleanupWhitespace(strings.Join(parts, "\n"))
}

// ComparableText returns the raw text of the page's content region without
// junk pruning. Extra promotional text is harmless for chunk-based
// comparison, and skipping the pruning keeps this read-only, so it can run
// before or after the other lookups.
func (d *Document) ComparableText() string {
	main := d.gq.Find("#main-content").First()
	if main.Length() == 0 {
		return ""
	}

	var b strings.Builder
	for _, sel := range collectContentDivs(main) {
		b.WriteString(sel.Text())
		b.WriteByte('\n')
	}
	return b.String()
}

// collectContentDivs gathers the main-content div and every following
// sibling div that continues the regulation body, stopping at the first
// disclaimer, footer, notification, or unrelated div. Non-div siblings are
// stepped over without ending the collection.
func collectContentDivs(main *goquery.Selection) []*goquery.Selection {
	collected := []*goquery.Selection{main}

	current := main
	for {
		next := current.Next()
		if next.Length() == 0 {
			break
		}

		if goquery.NodeName(next) != "div" {
			current = next
			continue
		}

		class, _ := next.Attr("class")
		lowerClass := strings.ToLower(class)
		preview := textPreview(next)

		// Stop at disclaimer or footer
		if next.HasClass("disclaimer") || strings.Contains(preview, "Disclaimer") {
			break
		}
		if strings.Contains(lowerClass, "notification") || strings.Contains(lowerClass, "footer") {
			break
		}

		if next.HasClass("content-indent") || containsAny(preview, contentKeywords) {
			collected = append(collected, next)
			current = next
			continue
		}

		break
	}

	return collected
}

// textPreview returns the first previewLen characters of the selection's
// trimmed text.
func textPreview(s *goquery.Selection) string {
	text := strings.TrimSpace(s.Text())
	if len(text) > previewLen {
		return text[:previewLen]
	}
	return text
}

// containsAny reports whether text contains any of the given keywords.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// rawTextLines joins every text fragment under n with a newline, preserving
// the fragments as-is so cleanupWhitespace can see original line structure.
func rawTextLines(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// cleanupWhitespace trims each line, collapses runs of blank lines into one,
// and drops leading and trailing blank lines.
func cleanupWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped != "" {
			cleaned = append(cleaned, stripped)
		} else if len(cleaned) > 0 && cleaned[len(cleaned)-1] != "" {
			cleaned = append(cleaned, "")
		}
	}

	for len(cleaned) > 0 && cleaned[len(cleaned)-1] == "" {
		cleaned = cleaned[:len(cleaned)-1]
	}

	return strings.Join(cleaned, "\n")
}
