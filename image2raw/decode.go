package image2raw

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	i2vtypes "img2vgp/type"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Options 控制解码
type Options struct {
	FPS      int // 视频抽帧帧率
	MaxWidth int // 超过该宽度时等比缩小，<= 0 不缩放
	Parallel int
}

// DefaultStillDelay 静态图单帧的延迟（毫秒）
const DefaultStillDelay = 0

// DecodeFile 根据文件头判断格式：静态图、GIF 动画，其余交给 ffmpeg 当作视频处理
func DecodeFile(ctx context.Context, path string, opts Options) (*i2vtypes.RawImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(12)
	switch {
	case bytes.HasPrefix(head, []byte("GIF8")):
		return DecodeGIF(br, opts)
	case isStill(head):
		return DecodeStill(br, opts)
	}

	f.Close()
	return ExtractFrames(ctx, path, opts)
}

func isStill(head []byte) bool {
	switch {
	case bytes.HasPrefix(head, []byte("\x89PNG")):
	case bytes.HasPrefix(head, []byte{0xFF, 0xD8, 0xFF}):
	case bytes.HasPrefix(head, []byte("BM")):
	case len(head) >= 12 && bytes.Equal(head[0:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")):
	default:
		return false
	}
	return true
}

// DecodeStill 解码单帧图片
func DecodeStill(r io.Reader, opts Options) (*i2vtypes.RawImage, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image failed: %w", err)
	}
	nrgba := fit(toNRGBA(img), opts.MaxWidth)
	b := nrgba.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%s: %w", format, i2vtypes.ErrEmptyImage)
	}
	return &i2vtypes.RawImage{
		Width:  b.Dx(),
		Height: b.Dy(),
		Frames: []i2vtypes.RawImageFrame{{Pix: nrgba.Pix, Delay: DefaultStillDelay}},
	}, nil
}

// DecodeGIF 解码 GIF 动画，按处置方式把每帧合成到整张画布上
func DecodeGIF(r io.Reader, opts Options) (*i2vtypes.RawImage, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode gif failed: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif: %w", i2vtypes.ErrEmptyImage)
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewNRGBA(bounds)

	var frames []i2vtypes.RawImageFrame
	var width, height int
	for i, p := range g.Image {
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var previous *image.NRGBA
		if disposal == gif.DisposalPrevious {
			previous = cloneNRGBA(canvas)
		}

		xdraw.Draw(canvas, p.Bounds(), p, p.Bounds().Min, xdraw.Over)

		out := fit(cloneNRGBA(canvas), opts.MaxWidth)
		width, height = out.Bounds().Dx(), out.Bounds().Dy()
		delay := 0
		if i < len(g.Delay) {
			delay = g.Delay[i] * 10 // 1/100 秒 -> 毫秒
		}
		frames = append(frames, i2vtypes.RawImageFrame{Pix: out.Pix, Delay: delay})

		switch disposal {
		case gif.DisposalBackground:
			xdraw.Draw(canvas, p.Bounds(), image.Transparent, image.Point{}, xdraw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}

	return &i2vtypes.RawImage{Width: width, Height: height, Frames: frames}, nil
}

// toNRGBA 转为非预乘 RGBA，原点移到 (0,0)
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// fit 宽度超过 maxWidth 时用最近邻缩小，不会产生新颜色
func fit(img *image.NRGBA, maxWidth int) *image.NRGBA {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return toNRGBA(img)
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
