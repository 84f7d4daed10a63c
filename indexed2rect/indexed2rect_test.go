package indexed2rect

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2vgp/colorspace"
	i2vtypes "img2vgp/type"
)

// grid 由字符画构造索引帧：'.' 透明，'0'-'9' 为不透明索引，'a'-'z' 为半透明的 0-25
func grid(rows ...string) *i2vtypes.Grid[i2vtypes.IndexedPixel] {
	g := i2vtypes.NewGrid[i2vtypes.IndexedPixel](len(rows[0]), len(rows))
	for y, row := range rows {
		for x, ch := range row {
			switch {
			case ch >= '0' && ch <= '9':
				g.Set(x, y, i2vtypes.IndexedPixel{Color: i2vtypes.IndexedColor{Index: int(ch - '0'), Opacity: 1}, Ok: true})
			case ch >= 'a' && ch <= 'z':
				g.Set(x, y, i2vtypes.IndexedPixel{Color: i2vtypes.IndexedColor{Index: int(ch - 'a'), Opacity: 0.5}, Ok: true})
			}
		}
	}
	return g
}

func rect(x, y, w, h, index int) i2vtypes.ColoredRect {
	return i2vtypes.ColoredRect{
		Rect:  i2vtypes.Rect{X: x, Y: y, Width: w, Height: h},
		Color: i2vtypes.IndexedColor{Index: index, Opacity: 1},
	}
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want []i2vtypes.ColoredRect
	}{
		{
			name: "two colors cannot merge",
			rows: []string{"01"},
			want: []i2vtypes.ColoredRect{rect(0, 0, 1, 1, 0), rect(1, 0, 1, 1, 1)},
		},
		{
			name: "same color merges",
			rows: []string{"00"},
			want: []i2vtypes.ColoredRect{rect(0, 0, 2, 1, 0)},
		},
		{
			name: "all transparent",
			rows: []string{"...", "...", "..."},
			want: nil,
		},
		{
			name: "diagonal first then width",
			rows: []string{
				"0000",
				"0000",
				"00..",
			},
			want: []i2vtypes.ColoredRect{rect(0, 0, 4, 2, 0), rect(0, 2, 2, 1, 0)},
		},
		{
			name: "square then height",
			rows: []string{
				"00",
				"00",
				"00",
				"11",
			},
			want: []i2vtypes.ColoredRect{rect(0, 0, 2, 3, 0), rect(0, 3, 2, 1, 1)},
		},
		{
			name: "transparent pixel stops width",
			rows: []string{
				"00.",
				"000",
			},
			want: []i2vtypes.ColoredRect{rect(0, 0, 2, 2, 0), rect(2, 1, 1, 1, 0)},
		},
		{
			name: "covered pixels block growth",
			rows: []string{
				"00",
				"10",
				"00",
			},
			want: []i2vtypes.ColoredRect{
				rect(0, 0, 2, 1, 0),
				rect(0, 1, 1, 1, 1),
				rect(1, 1, 1, 2, 0),
				rect(0, 2, 1, 1, 0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decompose(grid(tt.rows...)))
		})
	}
}

func TestDecomposeOpacitySplits(t *testing.T) {
	got := Decompose(grid("0a"))
	require.Len(t, got, 2)
	assert.Equal(t, 0.5, got[1].Color.Opacity)
}

// checkPartition 验证矩形恰好覆盖所有不透明像素且无重叠，并且颜色一致
func checkPartition(t *testing.T, g *i2vtypes.Grid[i2vtypes.IndexedPixel], rects []i2vtypes.ColoredRect) {
	t.Helper()
	hits := i2vtypes.NewGrid[int](g.Width, g.Height)
	for _, r := range rects {
		require.GreaterOrEqual(t, r.Width, 1)
		require.GreaterOrEqual(t, r.Height, 1)
		for y := r.Y; y < r.Y+r.Height; y++ {
			for x := r.X; x < r.X+r.Width; x++ {
				require.True(t, g.In(x, y))
				hits.Set(x, y, hits.At(x, y)+1)
				px := g.At(x, y)
				require.True(t, px.Ok)
				require.True(t, colorspace.IndexedEqual(px.Color, r.Color))
			}
		}
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.At(x, y).Ok {
				require.Equal(t, 1, hits.At(x, y), "pixel (%d,%d)", x, y)
			} else {
				require.Equal(t, 0, hits.At(x, y), "pixel (%d,%d)", x, y)
			}
		}
	}
}

func TestDecomposePartitionRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 50; n++ {
		w, h := 1+rng.Intn(12), 1+rng.Intn(12)
		g := i2vtypes.NewGrid[i2vtypes.IndexedPixel](w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if rng.Intn(5) == 0 {
					continue
				}
				g.Set(x, y, i2vtypes.IndexedPixel{
					Color: i2vtypes.IndexedColor{Index: rng.Intn(3), Opacity: float64(1+rng.Intn(2)) / 2},
					Ok:    true,
				})
			}
		}

		rects := Decompose(g)
		checkPartition(t, g, rects)
		assert.Equal(t, rects, Decompose(g))
	}
}

func TestConvertKeepsFrameOrder(t *testing.T) {
	img := &i2vtypes.IndexedImage{
		Width:  2,
		Height: 1,
		Frames: []i2vtypes.IndexedImageFrame{
			{Pixels: grid("00"), Delay: 10},
			{Pixels: grid("01"), Delay: 20},
			{Pixels: grid(".."), Delay: 30},
		},
		Palette: []i2vtypes.ColorRgb{{R: 1}, {R: 2}},
	}

	out, err := Convert(context.Background(), img, Options{Parallel: 3})
	require.NoError(t, err)
	require.Len(t, out.Frames, 3)
	assert.Len(t, out.Frames[0].Rects, 1)
	assert.Len(t, out.Frames[1].Rects, 2)
	assert.Empty(t, out.Frames[2].Rects)
	assert.Equal(t, 20, out.Frames[1].Delay)
	assert.Equal(t, img.Palette, out.Palette)
	assert.Equal(t, 60, out.Duration())
}
