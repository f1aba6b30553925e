package inventory

import (
	"regexp"

	"github.com/user/inventory-service/internal/jsonvalue"
)

// productKeys are own keys that mark an object as product-like. One hit is enough.
var productKeys = []string{"name", "brand", "brandName", "strainType", "category", "productType"}

// listKeyPattern matches wrapper keys that usually hold the product list.
var listKeyPattern = regexp.MustCompile(`(?i)products?|hits|items`)

const (
	DefaultMaxDepth = 256
	DefaultMaxNodes = 500000
)

// Locator finds the array most likely to be the product list inside an
// unversioned payload.
type Locator struct {
	maxDepth int
	maxNodes int
}

func NewLocator(maxDepth, maxNodes int) *Locator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	return &Locator{maxDepth: maxDepth, maxNodes: maxNodes}
}

// Locate walks v depth-first in pre-order and returns the first array that
// either consists only of product-like objects, or sits under a list-like
// key and holds at least one product-like object. It returns nil when no
// such array exists within the traversal bounds.
func (l *Locator) Locate(v *jsonvalue.Value) []*jsonvalue.Value {
	budget := l.maxNodes
	return l.search(v, 0, &budget)
}

func (l *Locator) search(v *jsonvalue.Value, depth int, budget *int) []*jsonvalue.Value {
	if depth > l.maxDepth || *budget <= 0 {
		return nil
	}
	*budget--

	switch v.Kind() {
	case jsonvalue.KindArray:
		items := v.Items()
		if len(items) > 0 && allProducts(items) {
			return items
		}
		for _, it := range items {
			if found := l.search(it, depth+1, budget); found != nil {
				return found
			}
		}

	case jsonvalue.KindObject:
		members := v.Members()
		for _, m := range members {
			if listKeyPattern.MatchString(m.Key) && m.Value.Kind() == jsonvalue.KindArray && anyProduct(m.Value.Items()) {
				return m.Value.Items()
			}
		}
		for _, m := range members {
			if found := l.search(m.Value, depth+1, budget); found != nil {
				return found
			}
		}
	}
	return nil
}

func looksLikeProduct(v *jsonvalue.Value) bool {
	if v.Kind() != jsonvalue.KindObject {
		return false
	}
	for _, k := range productKeys {
		if v.Has(k) {
			return true
		}
	}
	return false
}

func allProducts(items []*jsonvalue.Value) bool {
	for _, it := range items {
		if !looksLikeProduct(it) {
			return false
		}
	}
	return true
}

func anyProduct(items []*jsonvalue.Value) bool {
	for _, it := range items {
		if looksLikeProduct(it) {
			return true
		}
	}
	return false
}
