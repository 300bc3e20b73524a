package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pricecap"
)

// Ensure Detector implements pricecap.PageTypeDetector at compile time.
var _ pricecap.PageTypeDetector = (*Detector)(nil)

// minSearchResults is the number of result cards that marks a listing page.
const minSearchResults = 3

// Structural markers per page type. Selectors match loosely by class, id or
// test id substring, like DefaultContainerSelectors.
const (
	paymentFieldSelector = `input[autocomplete^="cc-"], input[name*="card"], input[id*="card-number"], ` +
		`iframe[src*="stripe"], iframe[name*="card"], [data-testid*="payment"]`

	guestFieldSelector = `input[type="email"], input[autocomplete="email"], input[name*="guest"]`

	availabilitySelector = `[class*="availability"], [id*="availability"], [data-testid*="availability"], ` +
		`[class*="room-list"], [class*="roomList"]`

	roomRowSelector = `[class*="room-type"], [class*="roomType"], [data-testid*="room"], tr[class*="room"]`

	resultCardSelector = `[class*="search-result"], [class*="result-item"], [data-testid*="result"], ` +
		`[class*="listing-card"], [class*="property-card"], [class*="product-card"], [itemtype*="schema.org/Offer"]`

	itemSelector = `[itemtype*="schema.org/Product"], [itemtype*="schema.org/Hotel"], [itemtype*="schema.org/LodgingBusiness"]`

	buttonSelector = `button, input[type="submit"], [role="button"]`
)

var (
	payButtonRe  = regexp.MustCompile(`(?i)\b(place (your )?order|pay now|complete (purchase|order|payment)|proceed to payment)\b`)
	bookButtonRe = regexp.MustCompile(`(?i)\b(complete (your )?booking|confirm (your )?booking|reserve now|book now)\b`)
)

// Detector guesses a page's type from forms, buttons, repeated result cards
// and product metadata.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectPageType analyzes HTML and returns the most likely page type.
// Returns PageTypeUnknown if no signal is conclusive.
func (d *Detector) DetectPageType(html string) pricecap.PageType {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return pricecap.PageTypeUnknown
	}

	// Card fields and pay buttons only appear once the visitor is paying.
	if d.hasSelector(doc, paymentFieldSelector) || d.hasButton(doc, payButtonRe) {
		return pricecap.PageTypeCheckout
	}

	// A booking verb next to a guest details form
	if d.hasButton(doc, bookButtonRe) && d.hasSelector(doc, guestFieldSelector) {
		return pricecap.PageTypeBooking
	}

	if d.hasSelector(doc, availabilitySelector) || d.count(doc, roomRowSelector) >= 2 {
		return pricecap.PageTypeAvailability
	}

	if d.count(doc, resultCardSelector) >= minSearchResults {
		return pricecap.PageTypeSearch
	}

	if pageType := d.detectFromOpenGraph(doc); pageType != pricecap.PageTypeUnknown {
		return pageType
	}

	if d.count(doc, itemSelector) == 1 {
		return pricecap.PageTypeDetails
	}

	return pricecap.PageTypeUnknown
}

// detectFromOpenGraph maps the og:type meta tag onto a page type.
func (d *Detector) detectFromOpenGraph(doc *goquery.Document) pricecap.PageType {
	ogType := ""
	doc.Find(`meta[property="og:type"]`).Each(func(_ int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			ogType = strings.ToLower(content)
		}
	})

	switch {
	case ogType == "":
		return pricecap.PageTypeUnknown
	case strings.Contains(ogType, "product"),
		strings.Contains(ogType, "hotel"),
		strings.Contains(ogType, "place"):
		return pricecap.PageTypeDetails
	}

	return pricecap.PageTypeUnknown
}

// hasSelector checks if the document contains at least one element matching the selector.
func (d *Detector) hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}

func (d *Detector) count(doc *goquery.Document, selector string) int {
	return doc.Find(selector).Length()
}

// hasButton reports whether any button's label matches re. Submit inputs
// are labeled by their value attribute.
func (d *Detector) hasButton(doc *goquery.Document, re *regexp.Regexp) bool {
	found := false
	doc.Find(buttonSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := s.Text()
		if value, ok := s.Attr("value"); ok && goquery.NodeName(s) == "input" {
			label = value
		}
		found = re.MatchString(label)
		return !found
	})
	return found
}
