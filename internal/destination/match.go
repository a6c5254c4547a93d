package destination

import "strings"

// MatchFunc decides whether a country record belongs to a catalog
// country name. The provider walks the country list in order and takes
// the first match.
type MatchFunc func(catalogCountry string, rec CountryRecord) bool

// MatchCountryName is the default matcher: case-insensitive substring
// containment in either direction, so "United States" pairs with
// "United States of America". Known to be fragile for short names; kept
// because the catalog carries no stronger key than the country name.
func MatchCountryName(catalogCountry string, rec CountryRecord) bool {
	if rec.CommonName == "" {
		return false
	}
	a := strings.ToLower(catalogCountry)
	b := strings.ToLower(rec.CommonName)
	return strings.Contains(a, b) || strings.Contains(b, a)
}
