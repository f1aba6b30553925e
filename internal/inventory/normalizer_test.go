package inventory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalizeJSON(t *testing.T, raw string) string {
	t.Helper()
	out, err := json.Marshal(Normalize(mustParse(t, raw)))
	require.NoError(t, err)
	return string(out)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "primary aliases",
			raw:  `{"name":"Blue Dream","brand":{"name":"Acme"},"strainType":"Sativa","size":"3.5g","tac":"30%","thc":"24%","cbd":"0.1%","slug":"blue-dream"}`,
			want: `{"name":"Blue Dream","brand":"Acme","strainType":"Sativa","size":"3.5g","tac":"30%","thc":"24%","cbd":"0.1%","slug":"blue-dream"}`,
		},
		{
			name: "secondary aliases",
			raw:  `{"title":"T","brandName":"BN","type":"Indica","variantName":"1g","totalActiveCannabinoids":28.5,"potency":{"thc":{"formatted":"22%"},"cbd":{"formatted":"1%"}},"handle":"t-1g"}`,
			want: `{"name":"T","brand":"BN","strainType":"Indica","size":"1g","tac":28.5,"thc":"22%","cbd":"1%","slug":"t-1g"}`,
		},
		{
			name: "last-resort aliases",
			raw:  `{"productName":"P","producer":{"name":"Farm"},"productType":"Flower","unitOfMeasure":"g","potency":{"tac":"31%","thc":{"range":[18,22]},"cbd":{"range":"0-1%"}},"id":42}`,
			want: `{"name":"P","brand":"Farm","strainType":"Flower","size":"g","tac":"31%","thc":[18,22],"cbd":"0-1%","slug":42}`,
		},
		{
			name: "middle aliases",
			raw:  `{"name":"M","category":"Pre-Roll","option":"5pk","thcContent":"19%","cbdContent":"2%"}`,
			want: `{"name":"M","brand":null,"strainType":"Pre-Roll","size":"5pk","tac":null,"thc":"19%","cbd":"2%","slug":null}`,
		},
		{
			name: "weight alias",
			raw:  `{"name":"W","weight":7}`,
			want: `{"name":"W","brand":null,"strainType":null,"size":7,"tac":null,"thc":null,"cbd":null,"slug":null}`,
		},
		{
			name: "null falls through to the next alias",
			raw:  `{"name":null,"title":"Fallback","brand":null,"brandName":"B","thc":null,"potency":{"thc":{"formatted":null,"range":"10-12%"}}}`,
			want: `{"name":"Fallback","brand":"B","strainType":null,"size":null,"tac":null,"thc":"10-12%","cbd":null,"slug":null}`,
		},
		{
			name: "empty string is a present value",
			raw:  `{"name":"","title":"ignored"}`,
			want: `{"name":"","brand":null,"strainType":null,"size":null,"tac":null,"thc":null,"cbd":null,"slug":null}`,
		},
		{
			name: "string brand has no nested name",
			raw:  `{"name":"S","brand":"Acme"}`,
			want: `{"name":"S","brand":null,"strainType":null,"size":null,"tac":null,"thc":null,"cbd":null,"slug":null}`,
		},
		{
			name: "no aliases at all",
			raw:  `{"price":25,"unrelated":true}`,
			want: `{"name":null,"brand":null,"strainType":null,"size":null,"tac":null,"thc":null,"cbd":null,"slug":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, normalizeJSON(t, tt.raw))
		})
	}
}

func TestNormalizeNeverFails(t *testing.T) {
	for _, raw := range []string{`null`, `[]`, `"text"`, `12`, `{"potency":"high"}`, `{"potency":{"thc":5}}`} {
		t.Run(raw, func(t *testing.T) {
			assert.NotPanics(t, func() {
				p := Normalize(mustParse(t, raw))
				assert.Nil(t, p.Name)
				assert.Nil(t, p.THC)
			})
		})
	}

	t.Run("nil record", func(t *testing.T) {
		p := Normalize(nil)
		assert.Nil(t, p.Slug)
	})
}

func TestNormalizeAll(t *testing.T) {
	items := mustParse(t, `[{"name":"A"},{"title":"B"},{}]`).Items()
	got := NormalizeAll(items)

	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Name.Text())
	assert.Equal(t, "B", got[1].Name.Text())
	assert.Nil(t, got[2].Name)
}
