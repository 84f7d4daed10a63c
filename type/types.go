package i2vtypes

// RawImageFrame 表示一帧原始 RGBA 像素
type RawImageFrame struct {
	Pix   []byte // RGBA，行优先，长度 = Width*Height*4
	Delay int    // 毫秒
}

// RawImage 表示解码后的静态图或动画
type RawImage struct {
	Width  int
	Height int
	Frames []RawImageFrame
}

// ColorRgb 表示 8 位 RGB 颜色
type ColorRgb struct {
	R, G, B uint8
}

// Key 返回 24 位打包值 r<<16 | g<<8 | b
func (c ColorRgb) Key() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// ColorOklch 表示感知色彩空间中的颜色，H 为弧度，范围 [0, 2π)
type ColorOklch struct {
	L, C, H float64
}

// IndexedColor 表示调色板索引 + 不透明度
type IndexedColor struct {
	Index   int
	Opacity float64 // [0, 1]
}

// IndexedPixel 表示索引像素，Ok 为 false 时表示透明（无颜色）
type IndexedPixel struct {
	Color IndexedColor
	Ok    bool
}

// IndexedImageFrame 表示一帧索引图
type IndexedImageFrame struct {
	Pixels *Grid[IndexedPixel]
	Delay  int
}

// IndexedImage 表示所有帧共享同一个全局调色板的索引图
type IndexedImage struct {
	Width   int
	Height  int
	Frames  []IndexedImageFrame
	Palette []ColorRgb
}

// Rect 表示像素网格上的矩形
type Rect struct {
	X, Y          int
	Width, Height int
}

// ColoredRect 表示带颜色的矩形
type ColoredRect struct {
	Rect
	Color IndexedColor
}

// RectImageFrame 表示一帧的矩形分解结果
type RectImageFrame struct {
	Rects []ColoredRect
	Delay int
}

// RectImage 表示所有帧的矩形分解结果
type RectImage struct {
	Width   int
	Height  int
	Frames  []RectImageFrame
	Palette []ColorRgb
}

// Duration 返回所有帧延迟之和（毫秒）
func (img *RectImage) Duration() int {
	total := 0
	for _, f := range img.Frames {
		total += f.Delay
	}
	return total
}
