package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOptimizeDownscalesLandscape(t *testing.T) {
	o := NewOptimizer(100, 80)
	res, err := o.Optimize(bytes.NewReader(encodePNG(t, 400, 200, color.RGBA{0, 0, 255, 255})))
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", res.ContentType)
	assert.Equal(t, 100, res.Width)
	assert.Equal(t, 50, res.Height)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
}

func TestOptimizeKeepsSmallImages(t *testing.T) {
	o := NewOptimizer(0, 0)
	assert.Equal(t, 1024, o.MaxDimension)
	assert.Equal(t, 85, o.Quality)

	res, err := o.Optimize(bytes.NewReader(encodePNG(t, 30, 60, color.White)))
	require.NoError(t, err)
	assert.Equal(t, 30, res.Width)
	assert.Equal(t, 60, res.Height)
}

func TestOptimizeFlattensTransparency(t *testing.T) {
	o := NewOptimizer(64, 90)
	res, err := o.Optimize(bytes.NewReader(encodePNG(t, 10, 10, color.NRGBA{0, 0, 0, 0})))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestOptimizeRejectsGarbage(t *testing.T) {
	_, err := NewOptimizer(100, 80).Optimize(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
