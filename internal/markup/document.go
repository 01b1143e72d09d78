package markup

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/legalcorpora/regcrawl/internal/model"
)

// breadcrumbSep is the separator glyph the site renders between breadcrumb
// segments (U+203A, single right-pointing angle quotation mark).
const breadcrumbSep = "›"

// Document is a parsed regulation page.
//
// Lookup methods are read-only except Content, which prunes junk elements
// from the tree. Call Content last when extracting a leaf.
type Document struct {
	root *html.Node
	gq   *goquery.Document
}

// Parse parses raw page markup into a Document.
func Parse(body []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &Document{root: root, gq: goquery.NewDocumentFromNode(root)}, nil
}

// NavLinks returns the ordered child links of the page's navigation region
// and reports whether the region exists. A page with the region is a branch;
// a page without it is a leaf.
//
// Links are returned in document order. Order is significant: the position
// of a link defines its sibling index and therefore the LexPath of the
// subtree below it.
func (d *Document) NavLinks(navClass string) ([]model.NodeLink, bool) {
	nav := findByClass(d.root, navClass)
	if nav == nil {
		return nil, false
	}

	var links []model.NodeLink
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				links = append(links, model.NodeLink{
					Text: strings.TrimSpace(textJoin(n, "")),
					Href: href,
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(nav)

	return links, true
}

// IsBranch reports whether the page has a navigation region with the given
// class.
func (d *Document) IsBranch(navClass string) bool {
	return findByClass(d.root, navClass) != nil
}

// Breadcrumbs returns the breadcrumb trail with the site-global prefix
// stripped: segments are kept from the first one that names a code or rules
// title (contains "Rules" or "Code" and is not the generic "U.S. Regulations"
// crumb) onward.
func (d *Document) Breadcrumbs() []string {
	nav := findByClass(d.root, "breadcrumbs")
	if nav == nil {
		return nil
	}

	raw := strings.Split(textJoin(nav, ""), breadcrumbSep)

	var filtered []string
	collecting := false
	for _, seg := range raw {
		seg = strings.TrimSpace(seg)
		if !collecting && seg != "U.S. Regulations" &&
			(strings.Contains(seg, "Rules") || strings.Contains(seg, "Code")) {
			collecting = true
		}
		if collecting && seg != "" {
			filtered = append(filtered, seg)
		}
	}
	return filtered
}

// BreadcrumbPath returns the filtered breadcrumb trail joined with the
// site's separator glyph, the form persisted in Record.Path.
func (d *Document) BreadcrumbPath() string {
	return strings.Join(d.Breadcrumbs(), breadcrumbSep)
}

// Title returns the page heading: the first h1's text fragments joined with
// " › ". Multi-fragment headings occur when the site nests the rule number
// and caption in separate elements.
func (d *Document) Title() string {
	h1 := findElement(d.root, "h1")
	if h1 == nil {
		return ""
	}
	return textJoin(h1, " "+breadcrumbSep+" ")
}

// Citation returns the citation string from the page's citations anchor, or
// nil when the page has none.
func (d *Document) Citation() *string {
	var cite *string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && getAttr(n, "href") == "/citations.html" {
			s := textJoin(n, "")
			cite = &s
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(d.root)
	return cite
}

// HasUniversalCitation reports whether the page carries the "Universal
// Citation:" label in its citation wrapper.
func (d *Document) HasUniversalCitation() bool {
	wrapper := findByClass(d.root, "has-margin-bottom-20")
	if wrapper == nil {
		return false
	}
	b := findElement(wrapper, "b")
	if b == nil {
		return false
	}
	return textJoin(b, "") == "Universal Citation:"
}

// findByClass returns the first element in document order carrying the given
// class, or nil.
func findByClass(root *html.Node, class string) *html.Node {
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && hasClass(n, class) {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}

// findElement returns the first element with the given tag name in document
// order, or nil.
func findElement(root *html.Node, tag string) *html.Node {
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}

// hasClass reports whether the element's class attribute contains the given
// class token.
func hasClass(n *html.Node, class string) bool {
	for _, token := range strings.Fields(getAttr(n, "class")) {
		if token == class {
			return true
		}
	}
	return false
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// textJoin concatenates the trimmed text fragments under n, separated by
// sep. Empty fragments are dropped so the separator never doubles up.
func textJoin(n *html.Node, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, sep)
}
