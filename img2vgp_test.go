package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2vgp/config"
	i2vtypes "img2vgp/type"
	"img2vgp/vgp"
)

func rawImage(pix ...byte) *i2vtypes.RawImage {
	return &i2vtypes.RawImage{
		Width:  2,
		Height: 1,
		Frames: []i2vtypes.RawImageFrame{{Pix: pix, Delay: 100}},
	}
}

func TestConvertTwoColors(t *testing.T) {
	cfg := config.Default()
	res, err := convert(context.Background(), rawImage(255, 0, 0, 255, 0, 255, 0, 255), cfg)
	require.NoError(t, err)
	assert.Len(t, res.rects.Frames[0].Rects, 2)
	assert.Len(t, res.prefab.Objects, 3)
}

func TestConvertSameColor(t *testing.T) {
	cfg := config.Default()
	res, err := convert(context.Background(), rawImage(10, 10, 10, 255, 10, 10, 10, 255), cfg)
	require.NoError(t, err)
	require.Len(t, res.rects.Frames[0].Rects, 1)
	r := res.rects.Frames[0].Rects[0]
	assert.Equal(t, i2vtypes.Rect{X: 0, Y: 0, Width: 2, Height: 1}, r.Rect)
}

func TestConvertMalformed(t *testing.T) {
	_, err := convert(context.Background(), rawImage(1, 2, 3), config.Default())
	assert.ErrorIs(t, err, i2vtypes.ErrMalformedFrame)
}

func TestConvertStableIDs(t *testing.T) {
	raw := rawImage(255, 0, 0, 255, 0, 255, 0, 255)
	a, err := convert(context.Background(), raw, config.Default())
	require.NoError(t, err)
	b, err := convert(context.Background(), raw, config.Default())
	require.NoError(t, err)
	assert.Equal(t, a.prefab, b.prefab)

	cfg := config.Default()
	cfg.Prefab.Seed = 1
	c, err := convert(context.Background(), raw, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.prefab.Objects[0].ID, c.prefab.Objects[0].ID)
}

func TestDeriveSeed(t *testing.T) {
	a := rawImage(1, 2, 3, 4, 5, 6, 7, 8)
	b := rawImage(1, 2, 3, 4, 5, 6, 7, 9)
	assert.Equal(t, deriveSeed(a), deriveSeed(a))
	assert.NotEqual(t, deriveSeed(a), deriveSeed(b))
}

func TestGenerateVgpToFile(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for x := 0; x < 3; x++ {
		src.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	f, err := os.Create(filepath.Join(dir, "in.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	cfg := config.Default()
	cfg.Output.Path = filepath.Join(dir, "out", "sprite.vgp")
	cfg.Preview.Path = filepath.Join(dir, "out", "sprite.svg")
	require.NoError(t, cfg.Validate())

	require.NoError(t, generateVgpToFile(context.Background(), filepath.Join(dir, "in.png"), cfg))

	p, err := vgp.Read(cfg.Output.Path)
	require.NoError(t, err)
	require.Len(t, p.Objects, 2)
	assert.Equal(t, "image", p.Name)

	svg, err := os.ReadFile(cfg.Preview.Path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(svg), "<rect"))
}
