package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAssetURL(t *testing.T) {
	base := "http://detector.internal:8000"

	t.Run("relative path gets base origin", func(t *testing.T) {
		got := NormalizeAssetURL(base, "/static/heatmaps/abc.png")
		assert.Equal(t, "http://detector.internal:8000/static/heatmaps/abc.png", got)
	})

	t.Run("relative path without leading slash", func(t *testing.T) {
		got := NormalizeAssetURL(base, "static/heatmaps/abc.png")
		assert.Equal(t, "http://detector.internal:8000/static/heatmaps/abc.png", got)
	})

	t.Run("trailing slash on base is collapsed", func(t *testing.T) {
		got := NormalizeAssetURL(base+"/", "/static/a.png")
		assert.Equal(t, "http://detector.internal:8000/static/a.png", got)
	})

	t.Run("absolute url is untouched", func(t *testing.T) {
		abs := "https://cdn.example.com/a.png"
		assert.Equal(t, abs, NormalizeAssetURL(base, abs))
	})

	t.Run("idempotent on repeated calls", func(t *testing.T) {
		once := NormalizeAssetURL(base, "/static/a.png")
		twice := NormalizeAssetURL(base, once)
		assert.Equal(t, once, twice)
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeAssetURL(base, ""))
	})

	t.Run("empty base returns raw", func(t *testing.T) {
		assert.Equal(t, "/static/a.png", NormalizeAssetURL("", "/static/a.png"))
	})
}
