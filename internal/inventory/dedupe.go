package inventory

import (
	"strings"

	"github.com/user/inventory-service/internal/domain"
	"github.com/user/inventory-service/internal/jsonvalue"
)

// identityKey is the composite key products collide on: name, size and
// brand, each trimmed and lower-cased, with null read as "".
func identityKey(p domain.Product) string {
	parts := []*jsonvalue.Value{p.Name, p.Size, p.Brand}
	keys := make([]string, len(parts))
	for i, v := range parts {
		keys[i] = strings.ToLower(strings.TrimSpace(v.Text()))
	}
	return strings.Join(keys, "||")
}

// Dedupe drops every product whose identity key was already seen, keeping
// the first occurrence and the input order. Later duplicates are dropped
// even when their potency values differ.
func Dedupe(list []domain.Product) []domain.Product {
	seen := make(map[string]struct{}, len(list))
	out := make([]domain.Product, 0, len(list))
	for _, p := range list {
		key := identityKey(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// FilterNamed drops products without a name.
func FilterNamed(list []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(list))
	for _, p := range list {
		if !p.Name.IsNull() {
			out = append(out, p)
		}
	}
	return out
}
