package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderChallengePage(t *testing.T) {
	t.Run("embeds the destination as a script value", func(t *testing.T) {
		body, err := renderChallengePage("https://example.com/landing")

		require.NoError(t, err)
		assert.Contains(t, string(body), `"https://example.com/landing"`)
		assert.Contains(t, string(body), "navigator.webdriver")
		assert.Contains(t, string(body), "window.location.replace(destination)")
	})

	t.Run("escapes script-breaking destinations", func(t *testing.T) {
		body, err := renderChallengePage(`https://example.com/</script><script>alert(1)`)

		require.NoError(t, err)
		assert.NotContains(t, string(body), "<script>alert(1)")
	})

	t.Run("always carries a visible denial fallback", func(t *testing.T) {
		body, err := renderChallengePage("https://example.com")

		require.NoError(t, err)
		assert.Contains(t, string(body), "Access denied.")
	})
}
