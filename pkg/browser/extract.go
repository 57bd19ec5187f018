package browser

import (
	"strings"

	"golang.org/x/net/html"
)

// PageContent is the structured extraction of a page's HTML.
type PageContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Headings    []string `json:"headings,omitempty"`
	Links       []Link   `json:"links,omitempty"`
	Text        string   `json:"text"`
	Truncated   bool     `json:"truncated,omitempty"`
}

// Link is a hyperlink with its visible text.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// DefaultMaxContentLength caps extracted text unless overridden.
const DefaultMaxContentLength = 10000

// ExtractContent parses raw HTML and pulls out the title, meta
// description, headings, links and visible text. Script, style and other
// non-content elements are skipped. Text longer than maxLength is
// truncated and flagged.
func ExtractContent(rawHTML string, maxLength int) (*PageContent, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxContentLength
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	content := &PageContent{}
	var text strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode {
			return
		}
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			if skippedElement(tag) {
				return
			}
			switch tag {
			case "title":
				if content.Title == "" {
					content.Title = strings.TrimSpace(textOf(n))
				}
				return
			case "meta":
				if content.Description == "" {
					content.Description = metaDescription(n)
				}
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				if h := strings.TrimSpace(textOf(n)); h != "" {
					content.Headings = append(content.Headings, h)
				}
			case "a":
				if href := attrValue(n, "href"); href != "" {
					content.Links = append(content.Links, Link{
						Text: strings.TrimSpace(textOf(n)),
						Href: href,
					})
				}
			}
			if blockElement(tag) && text.Len() > 0 {
				text.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if text.Len() > 0 {
					text.WriteString(" ")
				}
				text.WriteString(t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	content.Text = text.String()
	if len(content.Text) > maxLength {
		content.Text = content.Text[:maxLength]
		content.Truncated = true
	}
	return content, nil
}

// textOf collects the concatenated text under a node.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}

func metaDescription(n *html.Node) string {
	if !strings.EqualFold(attrValue(n, "name"), "description") {
		return ""
	}
	return strings.TrimSpace(attrValue(n, "content"))
}

func skippedElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "iframe", "embed", "object", "svg":
		return true
	}
	return false
}

func blockElement(tag string) bool {
	switch tag {
	case "div", "p", "section", "article", "header", "footer", "nav", "main",
		"aside", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li",
		"table", "tr", "td", "th", "form", "blockquote", "pre", "br":
		return true
	}
	return false
}
