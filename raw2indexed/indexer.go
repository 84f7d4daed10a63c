package raw2indexed

import (
	"context"
	"img2vgp/vlog"
	i2vtypes "img2vgp/type"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Options 控制并行度
type Options struct {
	Parallel int // 同时处理的最大帧数，<= 0 表示串行
}

// Indexer 将原始像素映射为 (调色板索引, 不透明度)
type Indexer struct {
	palette *Palette
	opts    Options
	misses  atomic.Uint64
}

func NewIndexer(palette *Palette, opts Options) *Indexer {
	return &Indexer{palette: palette, opts: opts}
}

// Misses 返回查表失败的像素数，正常情况下恒为 0
func (ix *Indexer) Misses() uint64 {
	return ix.misses.Load()
}

// Index 对所有帧建立索引。任意一帧长度错误时直接返回错误
func (ix *Indexer) Index(ctx context.Context, raw *i2vtypes.RawImage) (*i2vtypes.IndexedImage, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	frames := make([]i2vtypes.IndexedImageFrame, len(raw.Frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit(ix.opts.Parallel))
	for i, f := range raw.Frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			frames[i] = ix.indexFrame(i, f, raw.Width, raw.Height)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &i2vtypes.IndexedImage{
		Width:   raw.Width,
		Height:  raw.Height,
		Frames:  frames,
		Palette: ix.palette.Colors,
	}, nil
}

func (ix *Indexer) indexFrame(n int, frame i2vtypes.RawImageFrame, width, height int) i2vtypes.IndexedImageFrame {
	pixels := i2vtypes.NewGrid[i2vtypes.IndexedPixel](width, height)
	var misses uint64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			a := frame.Pix[i+3]
			if a == 0 {
				continue // 透明像素
			}
			c := i2vtypes.ColorRgb{R: frame.Pix[i], G: frame.Pix[i+1], B: frame.Pix[i+2]}
			index, ok := ix.palette.Lookup(c)
			if !ok {
				// 调色板由同一批像素构建，不应该发生；按透明处理
				misses++
				continue
			}
			pixels.Set(x, y, i2vtypes.IndexedPixel{
				Color: i2vtypes.IndexedColor{Index: index, Opacity: float64(a) / 255},
				Ok:    true,
			})
		}
	}
	if misses > 0 {
		ix.misses.Add(misses)
		vlog.Logger().Warn("pixels missing from palette treated as transparent",
			"frame", n, "pixels", misses, "err", i2vtypes.ErrPaletteLookupMiss)
	}
	return i2vtypes.IndexedImageFrame{Pixels: pixels, Delay: frame.Delay}
}

// Convert 构建调色板并对所有帧建立索引
func Convert(ctx context.Context, raw *i2vtypes.RawImage, opts Options) (*i2vtypes.IndexedImage, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	palette, err := BuildPalette(ctx, raw.Frames, opts.Parallel)
	if err != nil {
		return nil, err
	}
	vlog.Logger().Debug("palette built", "colors", palette.Len(), "frames", len(raw.Frames))
	return NewIndexer(palette, opts).Index(ctx, raw)
}
