// Package web bundles the page templates and static assets into the binary.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	"greenleaf/internal/domain"
)

//go:embed templates
var templates embed.FS

//go:embed static
var static embed.FS

// Engine returns a template engine over the embedded templates. Names are
// relative to templates/ without the extension, e.g. "partials/header".
func Engine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("money", Money)
	engine.AddFunc("salePrice", func(p domain.Product) string {
		return domain.UnitPrice(p, domain.DiscountedPrice).StringFixed(2)
	})
	engine.AddFunc("has", func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	})
	engine.AddFunc("sameRating", func(min float64, r int) bool { return min == float64(r) })
	engine.AddFunc("stars", func(r float64) string { return fmt.Sprintf("%.1f", r) })
	return engine
}

// Static serves web/static.
func Static() http.FileSystem {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Money formats an amount with two decimals.
func Money(v any) string {
	switch n := v.(type) {
	case decimal.Decimal:
		return n.StringFixed(2)
	case float64:
		return decimal.NewFromFloat(n).StringFixed(2)
	case int:
		return decimal.NewFromInt(int64(n)).StringFixed(2)
	}
	return fmt.Sprint(v)
}
