// Package credits turns free-text Discogs credit roles into a fixed taxonomy.
//
// Roles are normalized (lowercased, bracketed and parenthetical segments
// dropped, abbreviations expanded), classified against per-category pattern
// sets in a fixed precedence order, and rendered in a standardized display
// form. Extract applies this to every credit on a release that belongs to the
// target artist, matched by substring against a set of name variants.
package credits
