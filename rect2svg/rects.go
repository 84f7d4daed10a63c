package rect2svg

import (
	"fmt"
	"img2vgp/colorspace"
	i2vtypes "img2vgp/type"
	"io"

	svg "github.com/ajstarks/svgo"
)

// RenderRects 把一帧的矩形画成 SVG，viewBox 为图像像素尺寸，scale 为输出放大倍数
func RenderRects(w io.Writer, img *i2vtypes.RectImage, frame, scale int) error {
	if frame < 0 || frame >= len(img.Frames) {
		return fmt.Errorf("frame %d out of range [0,%d)", frame, len(img.Frames))
	}
	if scale <= 0 {
		scale = 1
	}

	canvas := svg.New(w)
	canvas.Startview(img.Width*scale, img.Height*scale, 0, 0, img.Width, img.Height)
	canvas.Gid(fmt.Sprintf("frame_%d", frame))
	for _, r := range img.Frames[frame].Rects {
		canvas.Rect(r.X, r.Y, r.Width, r.Height, fill(img.Palette, r.Color))
	}
	canvas.Gend()
	canvas.End()
	return nil
}

func fill(palette []i2vtypes.ColorRgb, c i2vtypes.IndexedColor) string {
	hex := "#000000"
	if c.Index >= 0 && c.Index < len(palette) {
		hex = colorspace.Hex(palette[c.Index])
	}
	if c.Opacity == 1 {
		return "fill:" + hex
	}
	return fmt.Sprintf("fill:%s;fill-opacity:%.3f", hex, c.Opacity)
}
