// Package cleaner reduces a raw email body (HTML or plain text) to the
// human-authored portion: quoted previous messages, client-specific quote
// wrappers and markup are stripped, whitespace is collapsed and entities
// decoded. Clean never fails; unparseable input degrades to a trimmed string.
package cleaner

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	// Matches an opening tag such as <div>, <br/> or <a href="...">. Kept
	// strict so already-cleaned text containing "<user@host>" is not
	// re-detected as HTML.
	htmlTagPattern = regexp.MustCompile(`<[a-zA-Z][a-zA-Z0-9]*(\s[^<>]*)?/?>`)

	// Attribution headers mail clients insert above the quoted message.
	attributionLinePattern = regexp.MustCompile(`(?i)^On\s.+(wrote|sent):$`)
	fromHeaderPattern      = regexp.MustCompile(`(?i)^From:`)
	sentHeaderPattern      = regexp.MustCompile(`(?i)^Sent:`)
	plainAttributionStart  = regexp.MustCompile(`(?i)^On .+(wrote|sent):`)

	// Fallback truncation for attribution headers that survived node pruning
	// (e.g. inline "On ... wrote:" followed by the echoed message).
	trailingAttribution = regexp.MustCompile(`(?is)On\s.*(wrote|sent):.*$`)

	stripPolicy = bluemonday.StrictPolicy()
	ugcPolicy   = bluemonday.UGCPolicy()
)

// SanitizeHTML keeps benign formatting in an HTML body but removes scripts,
// event handlers and other active content. Outbound bodies go through this
// before they are dispatched or stored.
func SanitizeHTML(raw string) string {
	return ugcPolicy.Sanitize(raw)
}

// quoteRule removes one class of client-specific quote markup from the parsed
// document. Rules are applied in order; truncate rules also drop everything
// following the matched node (Outlook puts the echoed message after an <hr>).
type quoteRule struct {
	Name     string
	Match    func(n *html.Node) bool
	Truncate bool
}

// QuoteRules is the prioritized list of quote-block signatures, covering
// Gmail, Outlook, Apple Mail, Thunderbird, Yahoo and Zoho.
var QuoteRules = []quoteRule{
	{Name: "gmail-quote", Match: hasAnyClass("gmail_quote", "gmail_quote_container", "gmail_attr")},
	{Name: "blockquote", Match: isElement("blockquote")},
	{Name: "outlook-header", Match: hasAnyClass("OutlookMessageHeader")},
	{Name: "outlook-hr", Match: isElement("hr"), Truncate: true},
	{Name: "border-left-quote", Match: divWithBorderLeft},
	{Name: "apple-mail-quote", Match: hasAnyClass("AppleMailQuote")},
	{Name: "thunderbird-cite", Match: hasAnyClass("moz-cite-prefix")},
	{Name: "attribution-header", Match: matchesAttributionText},
}

// Clean strips quoted content and markup from a raw body, returning readable
// plain text. A body that is entirely quoted content yields an empty string.
func Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	if htmlTagPattern.MatchString(raw) {
		// Text nodes may themselves decode to tag-like text; re-clean until
		// the output is a fixed point.
		out := cleanHTML(raw)
		if out != raw && htmlTagPattern.MatchString(out) {
			return Clean(out)
		}
		return out
	}
	return cleanPlain(raw)
}

func cleanHTML(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		// html.Parse is tolerant; if it fails anyway, degrade gracefully.
		return collapse(html.UnescapeString(stripPolicy.Sanitize(raw)))
	}

	for _, rule := range QuoteRules {
		applyRule(doc, rule)
	}

	// Text nodes come out of the parser with entities already decoded, so no
	// further unescaping happens here; a second decode would eat literal
	// "&amp;" the author typed.
	var sb strings.Builder
	collectText(doc, &sb)

	text := trailingAttribution.ReplaceAllString(sb.String(), "")
	return collapse(text)
}

// cleanPlain only drops quoted/attribution lines and collapses whitespace.
// The input is not HTML, so angle-bracket text such as <user@host> and
// literal entities stay exactly as the author wrote them.
func cleanPlain(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") ||
			plainAttributionStart.MatchString(trimmed) ||
			fromHeaderPattern.MatchString(trimmed) ||
			sentHeaderPattern.MatchString(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	return collapse(strings.Join(kept, " "))
}

// applyRule walks the tree and removes every node the rule matches. For
// truncate rules the matched node's following siblings go with it.
func applyRule(n *html.Node, rule quoteRule) {
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.ElementNode && rule.Match(child) {
			if rule.Truncate {
				removeFollowing(child)
			}
			n.RemoveChild(child)
		} else {
			applyRule(child, rule)
		}
		child = next
	}
}

func removeFollowing(n *html.Node) {
	parent := n.Parent
	for sibling := n.NextSibling; sibling != nil; {
		next := sibling.NextSibling
		parent.RemoveChild(sibling)
		sibling = next
	}
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteString(" ")
		return
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "head", "title":
			return
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, sb)
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isElement(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Data == name
	}
}

func hasAnyClass(classes ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		attrVal := attr(n, "class")
		if attrVal == "" {
			return false
		}
		for _, have := range strings.Fields(attrVal) {
			for _, want := range classes {
				if have == want {
					return true
				}
			}
		}
		return false
	}
}

func divWithBorderLeft(n *html.Node) bool {
	return n.Data == "div" && strings.Contains(attr(n, "style"), "border-left")
}

// matchesAttributionText flags elements whose entire text is an attribution
// header ("On Fri, Nov 7, 2025 ... wrote:", "From: ...", "Sent: ...").
func matchesAttributionText(n *html.Node) bool {
	var sb strings.Builder
	collectText(n, &sb)
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return false
	}
	return attributionLinePattern.MatchString(text) ||
		fromHeaderPattern.MatchString(text) ||
		sentHeaderPattern.MatchString(text)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
