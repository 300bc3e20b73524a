package goquery

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/pricecap"
	"github.com/fwojciec/pricecap/money"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Text node length bounds. Shorter or longer text is never a price.
const (
	minCandidateLen = 2
	maxCandidateLen = 200
)

// WarnNodeCap is added to ScanResult.Warnings when the walk stops early.
const WarnNodeCap = "node cap reached; scan stopped early"

// DefaultContainerSelectors match summary and checkout containers loosely by
// class, id, test id or aria-label substring so that redesigns keeping
// similar naming still match.
var DefaultContainerSelectors = []string{
	`[class*="summary"]`,
	`[class*="Summary"]`,
	`[class*="checkout"]`,
	`[class*="Checkout"]`,
	`[class*="order-total"]`,
	`[class*="orderTotal"]`,
	`[class*="price-breakdown"]`,
	`[class*="priceBreakdown"]`,
	`[class*="price-details"]`,
	`[class*="priceDetails"]`,
	`[class*="cart-total"]`,
	`[class*="totals"]`,
	`[id*="summary"]`,
	`[id*="checkout"]`,
	`[data-testid*="summary"]`,
	`[aria-label*="summary"]`,
	`[aria-label*="Summary"]`,
}

// Ensure Scanner implements pricecap.CandidateScanner at compile time.
var _ pricecap.CandidateScanner = (*Scanner)(nil)

// Scanner finds price candidates in static or browser-annotated HTML.
type Scanner struct {
	maxDepth   int
	extra      []string
	containers []cascadia.Selector
	warnings   []string
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithMaxDepth bounds recursive text extraction below a single element.
func WithMaxDepth(depth int) ScannerOption {
	return func(s *Scanner) {
		s.maxDepth = depth
	}
}

// WithContainerSelectors adds summary container selectors to the defaults.
// Selectors that fail to compile are skipped and reported as scan warnings.
func WithContainerSelectors(selectors ...string) ScannerOption {
	return func(s *Scanner) {
		s.extra = append(s.extra, selectors...)
	}
}

// NewScanner creates a new Scanner.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{maxDepth: pricecap.DefaultMaxDepth}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxDepth <= 0 {
		s.maxDepth = pricecap.DefaultMaxDepth
	}
	for _, sel := range append(append([]string{}, DefaultContainerSelectors...), s.extra...) {
		compiled, err := cascadia.Compile(sel)
		if err != nil {
			s.warnings = append(s.warnings, fmt.Sprintf("skipped container selector %q: %v", sel, err))
			continue
		}
		s.containers = append(s.containers, compiled)
	}
	return s
}

// Scan walks text nodes in document order and returns the ones that parse
// as money. The walk is iterative and visits at most opts.MaxNodes text
// nodes; hitting that cap is not an error, the candidates found so far are
// returned with CapReached set.
func (s *Scanner) Scan(htmlContent string, opts pricecap.HeuristicOptions) (*pricecap.ScanResult, error) {
	opts = opts.WithDefaults()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, pricecap.Errorf(pricecap.EINVALID, "failed to parse HTML: %v", err)
	}

	result := &pricecap.ScanResult{Warnings: append([]string{}, s.warnings...)}

	roots := doc.Nodes
	if opts.Container != "" {
		sel, err := cascadia.Compile(opts.Container)
		if err != nil {
			return nil, pricecap.Errorf(pricecap.EINVALID, "invalid container selector %q: %v", opts.Container, err)
		}
		roots = outermost(doc.FindMatcher(sel).Nodes)
		if len(roots) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("container %q matched nothing", opts.Container))
			return result, nil
		}
	}

	viewport := viewportOf(doc.Nodes[0])
	parseOpts := money.Options{ExpectedCurrency: opts.ExpectedCurrency}
	if r := opts.PriceRange; r != nil {
		parseOpts.Min, parseOpts.Max = r.Min, r.Max
	}
	seen := make(map[string]bool)

	stack := make([]*html.Node, 0, 64)
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type {
		case html.ElementNode:
			if skipElement(n) {
				continue
			}
		case html.TextNode:
			if result.NodesVisited >= opts.MaxNodes {
				result.CapReached = true
				result.Warnings = append(result.Warnings, WarnNodeCap)
				return result, nil
			}
			result.NodesVisited++
			if c, ok := s.candidate(n, viewport, parseOpts, opts, seen); ok {
				result.Candidates = append(result.Candidates, c)
			}
			continue
		case html.CommentNode, html.DoctypeNode:
			continue
		}

		// Push children in reverse so they pop in document order.
		for c := n.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	return result, nil
}

// candidate turns a text node into a RawCandidate when it survives every
// filter: length, digit, dedupe, quick price test, parse, range, viewport.
func (s *Scanner) candidate(n *html.Node, viewport *rect, parseOpts money.Options, opts pricecap.HeuristicOptions, seen map[string]bool) (pricecap.RawCandidate, bool) {
	text := collapse(n.Data)
	if l := len([]rune(text)); l < minCandidateLen || l > maxCandidateLen || !strings.ContainsFunc(text, unicode.IsDigit) {
		return pricecap.RawCandidate{}, false
	}
	if seen[text] {
		return pricecap.RawCandidate{}, false
	}
	seen[text] = true

	if !money.LooksLikePrice(text) {
		return pricecap.RawCandidate{}, false
	}
	parsed := money.Parse(text, parseOpts)
	if !parsed.OK() || !opts.PriceRange.Contains(parsed.Money.Amount) {
		return pricecap.RawCandidate{}, false
	}

	el := n.Parent
	if el == nil || el.Type != html.ElementNode {
		return pricecap.RawCandidate{}, false
	}
	st := computeStyle(el)
	visibleInViewport := inViewport(st.rect, viewport)
	if !visibleInViewport && !opts.IncludeOffscreen {
		return pricecap.RawCandidate{}, false
	}

	nearbyText, labels := nearby(el, text, s.maxDepth)
	return pricecap.RawCandidate{
		Text:               text,
		Money:              *parsed.Money,
		MoneyConfidence:    parsed.Confidence,
		MoneyWarnings:      parsed.Warnings,
		IsFromPrice:        parsed.IsFromPrice,
		IsPerNight:         parsed.IsPerNight,
		IsPerPerson:        parsed.IsPerPerson,
		Path:               domPath(el),
		NearbyText:         nearbyText,
		NearbyLabels:       labels,
		AriaLabel:          semanticAttr(el, "aria-label"),
		TestID:             semanticAttr(el, testIDAttrs...),
		FontSizePx:         st.fontSize,
		FontWeight:         st.fontWeight,
		Opacity:            st.opacity,
		LineThrough:        st.lineThrough,
		Visible:            st.visible,
		InViewport:         visibleInViewport,
		ChildElementCount:  childElementCount(el),
		PriceCount:         money.CountAmounts(textOf(el, s.maxDepth)),
		InSummaryContainer: s.inSummaryContainer(el),
		NearCheckoutButton: nearCheckoutButton(el, s.maxDepth),
	}, true
}

// inSummaryContainer reports whether el or one of its ancestors matches a
// container selector.
func (s *Scanner) inSummaryContainer(el *html.Node) bool {
	depth := 0
	for n := el; n != nil && n.Type == html.ElementNode && depth <= s.maxDepth; n = n.Parent {
		for _, sel := range s.containers {
			if sel.Match(n) {
				return true
			}
		}
		depth++
	}
	return false
}

// outermost drops nodes that are descendants of other nodes in the list.
func outermost(nodes []*html.Node) []*html.Node {
	set := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	var out []*html.Node
	for _, n := range nodes {
		nested := false
		for p := n.Parent; p != nil; p = p.Parent {
			if set[p] {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, n)
		}
	}
	return out
}

// skipElement reports whether the walk ignores n and its subtree.
func skipElement(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg, atom.Head:
		return true
	}
	return false
}
