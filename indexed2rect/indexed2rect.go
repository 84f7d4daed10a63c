package indexed2rect

import (
	"context"
	"img2vgp/colorspace"
	i2vtypes "img2vgp/type"
	"img2vgp/vlog"

	"golang.org/x/sync/errgroup"
)

// Options 控制并行度
type Options struct {
	Parallel int
}

// Convert 将索引图的每一帧分解为矩形，帧之间互不影响，可以并行
func Convert(ctx context.Context, img *i2vtypes.IndexedImage, opts Options) (*i2vtypes.RectImage, error) {
	frames := make([]i2vtypes.RectImageFrame, len(img.Frames))

	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, f := range img.Frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			frames[i] = i2vtypes.RectImageFrame{
				Rects: Decompose(f.Pixels),
				Delay: f.Delay,
			}
			vlog.Logger().Debug("frame decomposed", "frame", i, "rects", len(frames[i].Rects))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &i2vtypes.RectImage{
		Width:   img.Width,
		Height:  img.Height,
		Frames:  frames,
		Palette: img.Palette,
	}, nil
}

// Decompose 用贪心算法把一帧的不透明像素划分为同色矩形。
// 行优先扫描，每个未覆盖的像素作为锚点：先对角扩展，再扩宽，最后扩高。
func Decompose(pixels *i2vtypes.Grid[i2vtypes.IndexedPixel]) []i2vtypes.ColoredRect {
	covered := i2vtypes.NewGrid[bool](pixels.Width, pixels.Height)

	var result []i2vtypes.ColoredRect
	for y := 0; y < pixels.Height; y++ {
		for x := 0; x < pixels.Width; x++ {
			if covered.At(x, y) {
				continue
			}

			px := pixels.At(x, y)
			if !px.Ok {
				covered.Set(x, y, true) // 透明像素不生成矩形
				continue
			}

			rect := expandRect(pixels, covered, x, y)
			markCovered(covered, rect)
			result = append(result, i2vtypes.ColoredRect{Rect: rect, Color: px.Color})
		}
	}
	return result
}

func expandRect(pixels *i2vtypes.Grid[i2vtypes.IndexedPixel], covered *i2vtypes.Grid[bool], x, y int) i2vtypes.Rect {
	anchor := pixels.At(x, y)
	w, h := 1, 1

	// 候选矩形在扩展前已经合法，只需检查新增的一行/一列
	fits := func(x0, y0, x1, y1 int) bool {
		if !pixels.In(x1-1, y1-1) {
			return false
		}
		for yy := y0; yy < y1; yy++ {
			for xx := x0; xx < x1; xx++ {
				if covered.At(xx, yy) || !colorspace.PixelEqual(pixels.At(xx, yy), anchor) {
					return false
				}
			}
		}
		return true
	}
	newColumn := func(w, h int) bool { return fits(x+w, y, x+w+1, y+h) }
	newRow := func(w, h int) bool { return fits(x, y+h, x+w, y+h+1) }

	// 同时扩宽和扩高
	for newColumn(w, h) && newRow(w+1, h) {
		w++
		h++
	}
	// 扩宽
	for newColumn(w, h) {
		w++
	}
	// 扩高
	for newRow(w, h) {
		h++
	}

	return i2vtypes.Rect{X: x, Y: y, Width: w, Height: h}
}

func markCovered(covered *i2vtypes.Grid[bool], r i2vtypes.Rect) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			covered.Set(x, y, true)
		}
	}
}
