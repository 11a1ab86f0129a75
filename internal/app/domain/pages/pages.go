package pages

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

//go:embed static
var staticFS embed.FS

// StaticFiles serves the browser script and stylesheet.
func StaticFiles() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// CountryName is the English name of an ISO 3166-1 alpha-2 code, or the
// upper-cased code itself when it is not a known region.
func CountryName(iso2 string) string {
	code := strings.ToUpper(strings.TrimSpace(iso2))
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return code
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return code
}
