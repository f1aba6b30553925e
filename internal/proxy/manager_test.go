package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaders(t *testing.T) {
	m := NewManager("agent/1.0", "en-US,en;q=0.9", nil)

	h := m.Headers()
	assert.Equal(t, "agent/1.0", h.Get("User-Agent"))
	assert.Equal(t, "en-US,en;q=0.9", h.Get("Accept-Language"))
	assert.NotEmpty(t, h.Get("Accept"))

	t.Run("omits empty values", func(t *testing.T) {
		h := NewManager("", "", nil).Headers()
		assert.Empty(t, h.Values("User-Agent"))
		assert.Empty(t, h.Values("Accept-Language"))
	})
}

func TestGetProxy(t *testing.T) {
	t.Run("nil without proxies", func(t *testing.T) {
		m := NewManager("ua", "en", nil)
		assert.False(t, m.HasProxies())
		assert.Nil(t, m.GetProxy())

		u, err := m.ProxyFunc(nil)
		assert.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("rotates sequentially and skips invalid entries", func(t *testing.T) {
		m := NewManager("ua", "en", []string{"http://p1:8000", "not a url", "http://p2:8000"})

		assert.True(t, m.HasProxies())

		var hosts []string
		for i := 0; i < 4; i++ {
			hosts = append(hosts, m.GetProxy().Host)
		}
		assert.Equal(t, []string{"p1:8000", "p2:8000", "p1:8000", "p2:8000"}, hosts)
	})
}
