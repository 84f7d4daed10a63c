package image2raw

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeStill(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, red)
	src.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	raw, err := DecodeStill(bytes.NewReader(pngBytes(t, src)), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, raw.Width)
	assert.Equal(t, 1, raw.Height)
	require.Len(t, raw.Frames, 1)
	assert.Equal(t, []byte{255, 0, 0, 255, 10, 20, 30, 128}, raw.Frames[0].Pix)
	assert.NoError(t, raw.Validate())
}

func TestDecodeStillMaxWidth(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				src.Set(x, y, red)
			} else {
				src.Set(x, y, green)
			}
		}
	}

	raw, err := DecodeStill(bytes.NewReader(pngBytes(t, src)), Options{MaxWidth: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, raw.Width)
	assert.Equal(t, 1, raw.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 255, 0, 255}, raw.Frames[0].Pix)
}

func gifBytes(t *testing.T, disposal byte) []byte {
	t.Helper()
	pal := color.Palette{color.Transparent, red, green}

	first := image.NewPaletted(image.Rect(0, 0, 2, 1), pal)
	first.SetColorIndex(0, 0, 1)
	first.SetColorIndex(1, 0, 1)

	// 第二帧只覆盖右侧像素
	second := image.NewPaletted(image.Rect(1, 0, 2, 1), pal)
	second.SetColorIndex(1, 0, 2)

	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, &gif.GIF{
		Image:    []*image.Paletted{first, second},
		Delay:    []int{5, 12},
		Disposal: []byte{disposal, gif.DisposalNone},
		Config:   image.Config{ColorModel: pal, Width: 2, Height: 1},
	}))
	return buf.Bytes()
}

func TestDecodeGIF(t *testing.T) {
	tests := []struct {
		name     string
		disposal byte
		second   []byte
	}{
		{"keep", gif.DisposalNone, []byte{255, 0, 0, 255, 0, 255, 0, 255}},
		{"background", gif.DisposalBackground, []byte{0, 0, 0, 0, 0, 255, 0, 255}},
		{"previous", gif.DisposalPrevious, []byte{0, 0, 0, 0, 0, 255, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := DecodeGIF(bytes.NewReader(gifBytes(t, tt.disposal)), Options{})
			require.NoError(t, err)
			require.Len(t, raw.Frames, 2)
			assert.Equal(t, 2, raw.Width)
			assert.Equal(t, 50, raw.Frames[0].Delay)
			assert.Equal(t, 120, raw.Frames[1].Delay)
			assert.Equal(t, []byte{255, 0, 0, 255, 255, 0, 0, 255}, raw.Frames[0].Pix)
			assert.Equal(t, tt.second, raw.Frames[1].Pix)
		})
	}
}

func TestDecodeFileSniffs(t *testing.T) {
	dir := t.TempDir()

	gifPath := filepath.Join(dir, "anim.bin")
	require.NoError(t, os.WriteFile(gifPath, gifBytes(t, gif.DisposalNone), 0o644))
	raw, err := DecodeFile(context.Background(), gifPath, Options{})
	require.NoError(t, err)
	assert.Len(t, raw.Frames, 2)

	src := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	pngPath := filepath.Join(dir, "still.png")
	require.NoError(t, os.WriteFile(pngPath, pngBytes(t, src), 0o644))
	raw, err = DecodeFile(context.Background(), pngPath, Options{})
	require.NoError(t, err)
	assert.Len(t, raw.Frames, 1)
	assert.Len(t, raw.Frames[0].Pix, 36)
}

func TestIsStill(t *testing.T) {
	assert.True(t, isStill([]byte("\x89PNG\r\n\x1a\n")))
	assert.True(t, isStill([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	assert.True(t, isStill([]byte("BM\x00\x00")))
	assert.True(t, isStill([]byte("RIFF\x00\x00\x00\x00WEBP")))
	assert.False(t, isStill([]byte("RIFF\x00\x00\x00\x00AVI ")))
	assert.False(t, isStill([]byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p'}))
}

func TestParseProbe(t *testing.T) {
	n, err := parseProbe(`{"streams":[{"codec_type":"audio"},{"codec_type":"video","nb_frames":"120"}]}`)
	require.NoError(t, err)
	assert.Equal(t, 120, n)

	n, err = parseProbe(`{"streams":[{"codec_type":"video","avg_frame_rate":"30/1","duration":"2.5"}]}`)
	require.NoError(t, err)
	assert.Equal(t, 75, n)

	_, err = parseProbe(`{"streams":[]}`)
	assert.Error(t, err)
}
