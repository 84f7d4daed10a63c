package raw2indexed

import (
	"context"
	"img2vgp/colorspace"
	i2vtypes "img2vgp/type"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Palette 是全局调色板：按感知顺序排列的颜色 + 颜色键到索引的映射
type Palette struct {
	Colors []i2vtypes.ColorRgb
	index  map[uint32]int
}

// NewPalette 按给定顺序构造调色板（不排序）
func NewPalette(colors []i2vtypes.ColorRgb) *Palette {
	p := &Palette{
		Colors: colors,
		index:  make(map[uint32]int, len(colors)),
	}
	for i, c := range colors {
		p.index[c.Key()] = i
	}
	return p
}

// Lookup 返回颜色在调色板中的索引
func (p *Palette) Lookup(c i2vtypes.ColorRgb) (int, bool) {
	i, ok := p.index[c.Key()]
	return i, ok
}

func (p *Palette) Len() int {
	return len(p.Colors)
}

// BuildPalette 扫描所有帧，按首次出现顺序收集不透明颜色，再按 OKLCH 稳定排序
func BuildPalette(ctx context.Context, frames []i2vtypes.RawImageFrame, parallel int) (*Palette, error) {
	// 每帧单独收集首次出现的颜色，可以并行
	partial := make([][]i2vtypes.ColorRgb, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit(parallel))
	for i, f := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partial[i] = frameColors(f.Pix)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 按帧顺序合并，结果与顺序扫描完全一致
	seen := make(map[uint32]struct{})
	var colors []i2vtypes.ColorRgb
	for _, fc := range partial {
		for _, c := range fc {
			if _, ok := seen[c.Key()]; ok {
				continue
			}
			seen[c.Key()] = struct{}{}
			colors = append(colors, c)
		}
	}

	SortPalette(colors)
	return NewPalette(colors), nil
}

// SortPalette 按 (L, C, H) 升序稳定排序
func SortPalette(colors []i2vtypes.ColorRgb) {
	type keyed struct {
		c i2vtypes.ColorRgb
		k i2vtypes.ColorOklch
	}
	ks := make([]keyed, len(colors))
	for i, c := range colors {
		ks[i] = keyed{c: c, k: colorspace.ToOklch(c)}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		return colorspace.Compare(a.k, b.k)
	})
	for i := range ks {
		colors[i] = ks[i].c
	}
}

// frameColors 返回一帧中按行优先首次出现的不透明颜色
func frameColors(pix []byte) []i2vtypes.ColorRgb {
	seen := make(map[uint32]struct{})
	var out []i2vtypes.ColorRgb
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i+3] == 0 {
			continue // 透明像素
		}
		c := i2vtypes.ColorRgb{R: pix[i], G: pix[i+1], B: pix[i+2]}
		if _, ok := seen[c.Key()]; ok {
			continue
		}
		seen[c.Key()] = struct{}{}
		out = append(out, c)
	}
	return out
}

func limit(parallel int) int {
	if parallel <= 0 {
		return 1
	}
	return parallel
}
