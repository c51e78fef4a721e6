package browser

import (
	"net/url"
	"strings"
)

// RootPath is the location with no product selected
const RootPath = "/"

const productPrefix = "/product/"

// ProductPath is the navigation location of one product
func ProductPath(id string) string {
	return productPrefix + url.PathEscape(id)
}

// ParseLocation validates a client supplied location against the navigation
// surface. Only "/" and "/product/{id}" are accepted; everything else,
// including absolute URLs, resolves to "/" with ok set to false.
func ParseLocation(raw string) (location string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return RootPath, false
	}
	if u.Path == RootPath {
		return RootPath, true
	}

	id, found := strings.CutPrefix(u.Path, productPrefix)
	if !found || id == "" || strings.Contains(id, "/") {
		return RootPath, false
	}
	return ProductPath(id), true
}
