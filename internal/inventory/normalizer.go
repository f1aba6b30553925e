package inventory

import (
	"strings"

	"github.com/user/inventory-service/internal/domain"
	"github.com/user/inventory-service/internal/jsonvalue"
)

// alias is one candidate source for a field, as a key path into the raw record.
type alias []string

// fieldRule resolves one output field from its ordered aliases.
type fieldRule struct {
	aliases []alias
	assign  func(*domain.Product, *jsonvalue.Value)
}

func paths(dotted ...string) []alias {
	out := make([]alias, len(dotted))
	for i, d := range dotted {
		out[i] = strings.Split(d, ".")
	}
	return out
}

// fieldRules lists the aliases per output field in priority order. Values
// pass through untouched; potency "formatted" and "range" entries are
// opaque display strings.
var fieldRules = []fieldRule{
	{paths("name", "title", "productName"),
		func(p *domain.Product, v *jsonvalue.Value) { p.Name = v }},
	{paths("brand.name", "brandName", "producer.name"),
		func(p *domain.Product, v *jsonvalue.Value) { p.Brand = v }},
	{paths("strainType", "type", "category", "productType"),
		func(p *domain.Product, v *jsonvalue.Value) { p.StrainType = v }},
	{paths("size", "variantName", "option", "weight", "unitOfMeasure"),
		func(p *domain.Product, v *jsonvalue.Value) { p.Size = v }},
	{paths("tac", "totalActiveCannabinoids", "potency.tac"),
		func(p *domain.Product, v *jsonvalue.Value) { p.TAC = v }},
	{paths("thc", "potency.thc.formatted", "potency.thc.range", "thcContent"),
		func(p *domain.Product, v *jsonvalue.Value) { p.THC = v }},
	{paths("cbd", "potency.cbd.formatted", "potency.cbd.range", "cbdContent"),
		func(p *domain.Product, v *jsonvalue.Value) { p.CBD = v }},
	{paths("slug", "handle", "id"),
		func(p *domain.Product, v *jsonvalue.Value) { p.Slug = v }},
}

// Normalize maps a raw record onto the fixed product schema. A field whose
// aliases are all missing or null stays nil. It never fails.
func Normalize(raw *jsonvalue.Value) domain.Product {
	var p domain.Product
	for _, rule := range fieldRules {
		rule.assign(&p, resolve(raw, rule.aliases))
	}
	return p
}

func resolve(raw *jsonvalue.Value, aliases []alias) *jsonvalue.Value {
	for _, a := range aliases {
		if v := raw.Path(a...); !v.IsNull() {
			return v
		}
	}
	return nil
}

// NormalizeAll normalizes every record, preserving order.
func NormalizeAll(raw []*jsonvalue.Value) []domain.Product {
	out := make([]domain.Product, 0, len(raw))
	for _, r := range raw {
		out = append(out, Normalize(r))
	}
	return out
}
