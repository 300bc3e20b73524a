package goquery

import (
	"strconv"
	"strings"

	"github.com/fwojciec/pricecap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// viewportMargin is how far outside the viewport an element may sit and
// still count as in view.
const viewportMargin = 100

// Default font sizes for tags that change them, in CSS pixels.
var tagFontSize = map[atom.Atom]float64{
	atom.H1:    32,
	atom.H2:    24,
	atom.H3:    18.72,
	atom.H4:    16,
	atom.H5:    13.28,
	atom.H6:    10.72,
	atom.Small: 13,
}

// style is what the scanner knows about how an element renders. Annotated
// values stamped by a browser fetcher win over inline styles and tag defaults.
type style struct {
	fontSize    float64
	fontWeight  int
	opacity     float64
	lineThrough bool
	visible     bool
	rect        *rect
}

type rect struct {
	top, left, width, height float64
}

// computeStyle resolves the style of el by looking at el and its ancestors.
func computeStyle(el *html.Node) style {
	s := style{opacity: 1, visible: true}

	if v, ok := attr(el, pricecap.AttrFontSize); ok {
		s.fontSize, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := attr(el, pricecap.AttrFontWeight); ok {
		s.fontWeight, _ = strconv.Atoi(v)
	}
	if v, ok := attr(el, pricecap.AttrLineThrough); ok {
		s.lineThrough = v == "true"
	}
	if v, ok := attr(el, pricecap.AttrRect); ok {
		s.rect = parseRect(v)
	}
	annotatedOpacity := false
	if v, ok := attr(el, pricecap.AttrOpacity); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.opacity, annotatedOpacity = f, true
		}
	}
	annotatedVisible := false
	if v, ok := attr(el, pricecap.AttrVisible); ok {
		s.visible, annotatedVisible = v == "true", true
	}

	_, fontSizeKnown := attr(el, pricecap.AttrFontSize)
	_, fontWeightKnown := attr(el, pricecap.AttrFontWeight)
	_, lineThroughKnown := attr(el, pricecap.AttrLineThrough)

	for n := el; n != nil && n.Type == html.ElementNode; n = n.Parent {
		css := inlineStyle(n)

		if !fontSizeKnown {
			if px, ok := parsePx(css["font-size"]); ok {
				s.fontSize, fontSizeKnown = px, true
			} else if px, ok := tagFontSize[n.DataAtom]; ok {
				s.fontSize, fontSizeKnown = px, true
			}
		}
		if !fontWeightKnown {
			if w, ok := parseWeight(css["font-weight"]); ok {
				s.fontWeight, fontWeightKnown = w, true
			} else if isBoldTag(n.DataAtom) {
				s.fontWeight, fontWeightKnown = 700, true
			}
		}
		if !lineThroughKnown {
			deco := css["text-decoration"] + " " + css["text-decoration-line"]
			if strings.Contains(deco, "line-through") || isStrikeTag(n.DataAtom) {
				s.lineThrough, lineThroughKnown = true, true
			}
		}
		if !annotatedOpacity {
			// An annotated ancestor already carries the product of its own ancestors.
			if v, ok := attr(n, pricecap.AttrOpacity); ok {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.opacity *= f
					annotatedOpacity = true
				}
			} else if f, err := strconv.ParseFloat(css["opacity"], 64); err == nil {
				s.opacity *= f
			}
		}
		if !annotatedVisible && hidden(n, css) {
			s.visible = false
		}
	}

	if s.opacity <= 0 {
		s.visible = false
	}
	return s
}

// hidden reports whether n itself hides its subtree.
func hidden(n *html.Node, css map[string]string) bool {
	if v, ok := attr(n, pricecap.AttrVisible); ok && v == "false" {
		return true
	}
	if _, ok := attr(n, "hidden"); ok {
		return true
	}
	if v, _ := attr(n, "aria-hidden"); v == "true" {
		return true
	}
	if n.DataAtom == atom.Input {
		if v, _ := attr(n, "type"); strings.EqualFold(v, "hidden") {
			return true
		}
	}
	if css["display"] == "none" {
		return true
	}
	switch css["visibility"] {
	case "hidden", "collapse":
		return true
	}
	if f, err := strconv.ParseFloat(css["opacity"], 64); err == nil && f == 0 {
		return true
	}
	if px, ok := parsePx(css["width"]); ok && px == 0 {
		return true
	}
	if px, ok := parsePx(css["height"]); ok && px == 0 {
		return true
	}
	return false
}

// inViewport reports whether r lies within the viewport, widened by
// viewportMargin. Unknown geometry counts as in view.
func inViewport(r *rect, vp *rect) bool {
	if r == nil || vp == nil {
		return true
	}
	return r.top+r.height >= -viewportMargin &&
		r.top <= vp.height+viewportMargin &&
		r.left+r.width >= -viewportMargin &&
		r.left <= vp.width+viewportMargin
}

// viewportOf reads the viewport size stamped on the root element.
func viewportOf(doc *html.Node) *rect {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		v, ok := attr(n, pricecap.AttrViewport)
		if !ok {
			return nil
		}
		parts := strings.Split(v, ",")
		if len(parts) != 2 {
			return nil
		}
		w, errW := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		h, errH := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errW != nil || errH != nil {
			return nil
		}
		return &rect{width: w, height: h}
	}
	return nil
}

func parseRect(v string) *rect {
	parts := strings.Split(v, ",")
	if len(parts) != 4 {
		return nil
	}
	var f [4]float64
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil
		}
		f[i] = n
	}
	return &rect{top: f[0], left: f[1], width: f[2], height: f[3]}
}

// inlineStyle parses the style attribute into lower-cased declarations.
func inlineStyle(n *html.Node) map[string]string {
	v, ok := attr(n, "style")
	if !ok {
		return nil
	}
	css := make(map[string]string)
	for _, decl := range strings.Split(v, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		css[strings.ToLower(strings.TrimSpace(prop))] = strings.ToLower(value)
	}
	return css
}

func parsePx(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if v == "0" {
		return 0, true
	}
	if !strings.HasSuffix(v, "px") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	return f, err == nil
}

func parseWeight(v string) (int, bool) {
	switch v {
	case "":
		return 0, false
	case "bold", "bolder":
		return 700, true
	case "normal", "lighter":
		return 400, true
	}
	w, err := strconv.Atoi(v)
	return w, err == nil
}

func isBoldTag(a atom.Atom) bool {
	switch a {
	case atom.B, atom.Strong, atom.Th, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func isStrikeTag(a atom.Atom) bool {
	switch a {
	case atom.S, atom.Del, atom.Strike:
		return true
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
