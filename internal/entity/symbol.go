package entity

import "strings"

// TickerSymbol identifies a tradable security, e.g. "AAPL".
type TickerSymbol string

// UnselectedSymbol is the placeholder that always sits at index 0 of a SymbolCatalog.
// It is never a valid input to the loader.
const UnselectedSymbol TickerSymbol = "Choose an option"

func (s TickerSymbol) String() string { return string(s) }

// IsSelectable reports whether s can be used to load a price series.
func (s TickerSymbol) IsSelectable() bool {
	return s != UnselectedSymbol && strings.TrimSpace(string(s)) != ""
}

// SymbolCatalog is the ordered list of selectable symbols with UnselectedSymbol first.
type SymbolCatalog []TickerSymbol

// NewSymbolCatalog builds a catalog from upstream symbols, keeping their order.
// Empty entries, the placeholder and repeated symbols are skipped.
func NewSymbolCatalog(symbols []TickerSymbol) SymbolCatalog {
	seen := make(map[TickerSymbol]struct{}, len(symbols))
	catalog := make(SymbolCatalog, 0, len(symbols)+1)
	catalog = append(catalog, UnselectedSymbol)
	for _, s := range symbols {
		s = TickerSymbol(strings.TrimSpace(string(s)))
		if !s.IsSelectable() {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		catalog = append(catalog, s)
	}
	return catalog
}

// Symbols returns the selectable symbols, without the placeholder.
func (c SymbolCatalog) Symbols() []TickerSymbol {
	if len(c) == 0 {
		return nil
	}
	out := make([]TickerSymbol, 0, len(c)-1)
	for _, s := range c {
		if s.IsSelectable() {
			out = append(out, s)
		}
	}
	return out
}

// Contains reports whether s is a selectable member of the catalog.
func (c SymbolCatalog) Contains(s TickerSymbol) bool {
	if !s.IsSelectable() {
		return false
	}
	for _, v := range c {
		if v == s {
			return true
		}
	}
	return false
}

// Strings returns the catalog, placeholder included, as plain strings.
func (c SymbolCatalog) Strings() []string {
	out := make([]string, len(c))
	for i, s := range c {
		out[i] = string(s)
	}
	return out
}
