package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "<div>chart</div>", nil
	}

	val1, err := cache.GetOrRender("session-a:sales_by_category", render)
	require.NoError(t, err)
	val2, err := cache.GetOrRender("session-a:sales_by_category", render)
	require.NoError(t, err)

	assert.Equal(t, "<div>chart</div>", val1)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, calls)
}

func TestChartCacheExpires(t *testing.T) {
	cache := NewChartCache(2 * time.Millisecond)
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}

	_, err := cache.GetOrRender("session-a:sales_by_category", render)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = cache.GetOrRender("session-a:sales_by_category", render)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestChartCachePurgeDropsSessionEntries(t *testing.T) {
	cache := NewChartCache(time.Minute)
	render := func() (string, error) { return "chart", nil }

	for _, key := range []string{"s1:sales_by_category", "s1:sales_by_segment", "s2:sales_by_category"} {
		_, err := cache.GetOrRender(key, render)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, cache.Purge("s1:"))
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 0, cache.Purge("s1:"))
}

func TestChartCacheSkipsFailedRenders(t *testing.T) {
	cache := NewChartCache(time.Minute)
	_, err := cache.GetOrRender("s1:broken", func() (string, error) {
		return "", assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, cache.Len())
}

func TestSpecHashTracksContent(t *testing.T) {
	spec := ChartSpec{ID: "sales_by_category", Kind: KindBar, Labels: []string{"Tecnología"}}
	same := spec
	other := spec
	other.Kind = KindPie

	assert.Equal(t, specHash(spec), specHash(same))
	assert.NotEqual(t, specHash(spec), specHash(other))
}
