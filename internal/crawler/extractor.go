package crawler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/inventory-service/internal/jsonvalue"
)

// DefaultScriptID is the id Next.js gives the script holding server-rendered props.
const DefaultScriptID = "__NEXT_DATA__"

// Extractor pulls the JSON payload a rendering framework embeds in a page.
type Extractor struct {
	selector string
}

// NewExtractor matches <script id="scriptID" type="application/json">.
func NewExtractor(scriptID string) *Extractor {
	if scriptID == "" {
		scriptID = DefaultScriptID
	}
	return &Extractor{
		selector: fmt.Sprintf(`script[id=%q][type="application/json"]`, scriptID),
	}
}

// Extract returns the parsed payload of the first matching script. It
// reports false both when the marker is absent and when its content is not
// valid JSON.
func (e *Extractor) Extract(htmlContent string) (*jsonvalue.Value, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, false
	}

	script := doc.Find(e.selector).First()
	if script.Length() == 0 {
		return nil, false
	}

	payload, err := jsonvalue.ParseString(script.Text())
	if err != nil {
		return nil, false
	}
	return payload, true
}
