package goquery

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fwojciec/pricecap/money"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Limits on how far the scanner looks around a candidate.
const (
	nearbyAncestorLevels = 3
	maxNearbyAncestorLen = 500
	maxLabelLen          = 40
	buttonAncestorLevels = 3
	semanticAttrLevels   = 3
	maxPathSegments      = 5
	maxClassLen          = 20
)

var (
	checkoutVerbRe = regexp.MustCompile(`(?i)\b(?:book|reserve|pay|checkout|check\s+out|purchase|buy|place\s+order|complete|confirm|proceed|continue\s+to\s+payment)\b`)
	cssInJSRe      = regexp.MustCompile(`^(?:css|sc|jsx|styled|emotion|svelte)-`)
	letterRe       = regexp.MustCompile(`\pL`)
)

// testIDAttrs are the automation attributes checked for "total"/"price".
var testIDAttrs = []string{"data-testid", "data-test-id", "data-test", "data-qa", "data-cy", "data-automation-id"}

// textOf returns the whitespace-collapsed text below n, descending at most
// maxDepth levels.
func textOf(n *html.Node, maxDepth int) string {
	var b strings.Builder
	var walk func(*html.Node, int)
	walk = func(n *html.Node, depth int) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			if skipElement(n) {
				return
			}
		}
		if depth >= maxDepth {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth+1)
		}
	}
	walk(n, 0)
	return collapse(b.String())
}

// nearby collects the text around el and the short label-like strings among
// it, closest first. Siblings that carry their own price are skipped, and
// ancestors stop contributing once they contain another price.
func nearby(el *html.Node, ownText string, maxDepth int) (text string, labels []string) {
	var parts []string
	seenLabel := make(map[string]bool)
	addLabel := func(s string) {
		l := strings.TrimRight(s, ": ")
		if l == "" || seenLabel[l] || len([]rune(l)) > maxLabelLen || !letterRe.MatchString(l) {
			return
		}
		seenLabel[l] = true
		labels = append(labels, l)
	}
	siblings := func(n *html.Node) {
		for _, s := range []*html.Node{prevSibling(n), nextSibling(n)} {
			if s == nil {
				continue
			}
			t := nodeText(s, maxDepth)
			if t == "" || money.LooksLikePrice(t) {
				continue
			}
			parts = append(parts, t)
			addLabel(t)
		}
	}

	siblings(el)
	if rest := collapse(strings.Replace(textOf(el, maxDepth), ownText, " ", 1)); rest != "" && money.CountAmounts(rest) == 0 {
		parts = append(parts, rest)
	}
	n := el
	for level := 0; level < nearbyAncestorLevels; level++ {
		parent := n.Parent
		if parent == nil || parent.Type != html.ElementNode {
			break
		}
		t := textOf(parent, maxDepth)
		if len([]rune(t)) > maxNearbyAncestorLen || money.CountAmounts(t) > 1 {
			break
		}
		if rest := collapse(strings.Replace(t, ownText, " ", 1)); rest != "" {
			parts = append(parts, rest)
		}
		siblings(parent)
		n = parent
	}
	return strings.Join(dedupe(parts), " "), labels
}

// nearCheckoutButton reports whether a booking or payment control sits
// within buttonAncestorLevels of el.
func nearCheckoutButton(el *html.Node, maxDepth int) bool {
	n := el
	for level := 0; level <= buttonAncestorLevels && n != nil && n.Type == html.ElementNode; level++ {
		if containsButton(n, maxDepth) {
			return true
		}
		n = n.Parent
	}
	return false
}

func containsButton(root *html.Node, maxDepth int) bool {
	type item struct {
		n     *html.Node
		depth int
	}
	stack := []item{{root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.n.Type == html.ElementNode {
			if skipElement(it.n) {
				continue
			}
			if isButton(it.n) && checkoutVerbRe.MatchString(buttonText(it.n, maxDepth)) {
				return true
			}
		}
		if it.depth >= maxDepth {
			continue
		}
		for c := it.n.FirstChild; c != nil; c = c.NextSibling {
			stack = append(stack, item{c, it.depth + 1})
		}
	}
	return false
}

func isButton(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Button, atom.A:
		return true
	case atom.Input:
		t, _ := attr(n, "type")
		return strings.EqualFold(t, "submit") || strings.EqualFold(t, "button")
	}
	role, _ := attr(n, "role")
	return role == "button"
}

func buttonText(n *html.Node, maxDepth int) string {
	if n.DataAtom == atom.Input {
		v, _ := attr(n, "value")
		return v
	}
	t := textOf(n, maxDepth)
	if t == "" {
		t, _ = attr(n, "aria-label")
	}
	return t
}

// semanticAttr returns the first value of any of keys on el or its close
// ancestors.
func semanticAttr(el *html.Node, keys ...string) string {
	n := el
	for level := 0; level <= semanticAttrLevels && n != nil && n.Type == html.ElementNode; level++ {
		for _, k := range keys {
			if v, ok := attr(n, k); ok && v != "" {
				return v
			}
		}
		n = n.Parent
	}
	return ""
}

// domPath renders a short CSS-like path to el, e.g.
// "div.summary > div.row > span#total". Obfuscated class names are dropped.
func domPath(el *html.Node) string {
	var segments []string
	for n := el; n != nil && n.Type == html.ElementNode && len(segments) < maxPathSegments; n = n.Parent {
		segments = append(segments, pathSegment(n))
		if n.DataAtom == atom.Body {
			break
		}
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, " > ")
}

func pathSegment(n *html.Node) string {
	seg := n.Data
	if id, _ := attr(n, "id"); id != "" && usableName(id) {
		return seg + "#" + id
	}
	class, _ := attr(n, "class")
	kept := 0
	for _, c := range strings.Fields(class) {
		if kept == 2 {
			break
		}
		if usableName(c) {
			seg += "." + c
			kept++
		}
	}
	return seg
}

// usableName reports whether a class or id is short and human-authored.
func usableName(s string) bool {
	if len(s) > maxClassLen || cssInJSRe.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits < 2
}

func childElementCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
	}
	return count
}

// prevSibling returns the nearest previous sibling with non-blank content.
func prevSibling(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if hasContent(s) {
			return s
		}
	}
	return nil
}

// nextSibling returns the nearest following sibling with non-blank content.
func nextSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if hasContent(s) {
			return s
		}
	}
	return nil
}

func hasContent(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return strings.TrimSpace(n.Data) != ""
	case html.ElementNode:
		return !skipElement(n)
	}
	return false
}

func nodeText(n *html.Node, maxDepth int) string {
	if n.Type == html.TextNode {
		return collapse(n.Data)
	}
	return textOf(n, maxDepth)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func dedupe(parts []string) []string {
	seen := make(map[string]bool, len(parts))
	out := parts[:0]
	for _, p := range parts {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
