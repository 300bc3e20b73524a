package pricecap

// Rendering annotations. A browser-backed Fetcher stamps these attributes
// onto elements that own digit-bearing text so that a static scanner can
// read computed style and geometry from the serialized HTML.
const (
	// AttrVisible is "true" or "false".
	AttrVisible = "data-pc-visible"

	// AttrFontSize is the computed font size in CSS pixels.
	AttrFontSize = "data-pc-font-size"

	// AttrFontWeight is the numeric computed font weight.
	AttrFontWeight = "data-pc-font-weight"

	// AttrOpacity is the effective opacity, multiplied through ancestors.
	AttrOpacity = "data-pc-opacity"

	// AttrLineThrough is "true" when the element or an ancestor is struck through.
	AttrLineThrough = "data-pc-line-through"

	// AttrRect is "top,left,width,height" in viewport coordinates.
	AttrRect = "data-pc-rect"

	// AttrViewport is stamped on the root element as "width,height".
	AttrViewport = "data-pc-viewport"
)

// Annotations lists every element-level annotation attribute.
func Annotations() []string {
	return []string{AttrVisible, AttrFontSize, AttrFontWeight, AttrOpacity, AttrLineThrough, AttrRect}
}
