package svg

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const square = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10" viewBox="0 0 10 10">
  <rect x="0" y="0" width="10" height="10" fill="#ff0000"/>
</svg>`

func TestSniff(t *testing.T) {
	assert.True(t, Sniff([]byte(square)))
	assert.True(t, Sniff([]byte("  <svg></svg>")))
	assert.False(t, Sniff([]byte("\x89PNG\r\n")))
	assert.False(t, Sniff([]byte("<html><body/></html>")))
}

func TestLoadAndRasterize(t *testing.T) {
	icon, err := LoadBytes([]byte(square))
	require.NoError(t, err)
	assert.Equal(t, 10.0, icon.ViewBox().Width())

	w, h := icon.IntrinsicSize()
	assert.Equal(t, [2]int{10, 10}, [2]int{w, h})

	img := icon.Rasterize(20, 20)
	px := img.RGBAAt(10, 10)
	assert.Greater(t, px.R, uint8(200))
	assert.Less(t, px.G, uint8(50))
	assert.Greater(t, px.A, uint8(200))
}

func TestIntrinsicSizeCapped(t *testing.T) {
	icon, err := LoadBytes([]byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 2048 1024"></svg>`))
	require.NoError(t, err)
	w, h := icon.IntrinsicSize()
	assert.Equal(t, [2]int{512, 256}, [2]int{w, h})
}

func TestIconCacheLoadsOnce(t *testing.T) {
	c := NewIconCache()
	var loads atomic.Int32
	loader := func() (*Icon, error) {
		loads.Add(1)
		return LoadBytes([]byte(square))
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := c.Image("square", loader)
			assert.NoError(t, err)
			assert.NotNil(t, img)
		}()
	}
	wg.Wait()
	icon, err := c.Get("square", loader)
	require.NoError(t, err)
	assert.NotNil(t, icon)
	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, 1, c.Len())

	_, err = c.Get("nil", nil)
	assert.Error(t, err)
}
