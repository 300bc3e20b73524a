// Package pricecap extracts a single trustworthy total price from arbitrary,
// uncontrolled web pages. It scans candidate text nodes, parses locale
// ambiguous money text, scores candidates with structural and semantic
// signals, and classifies the winner into a discrete confidence level with
// an auditable evidence record.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, sqlite/), while the
// pure heuristics live in money/ and heuristic/.
package pricecap
