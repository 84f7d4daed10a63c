// Package colorspace 提供 RGB 与 OKLCH 之间的换算以及颜色比较
package colorspace

import (
	"cmp"
	"fmt"
	"math"
	i2vtypes "img2vgp/type"
)

// Key 返回颜色的 24 位打包值，用作去重和查表的键
func Key(c i2vtypes.ColorRgb) uint32 {
	return c.Key()
}

// Hex 返回 "#rrggbb"
func Hex(c i2vtypes.ColorRgb) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func Equal(a, b i2vtypes.ColorRgb) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B
}

func IndexedEqual(a, b i2vtypes.IndexedColor) bool {
	return a.Index == b.Index && a.Opacity == b.Opacity
}

// PixelEqual 比较两个索引像素：透明与透明相等，透明与不透明不等
func PixelEqual(a, b i2vtypes.IndexedPixel) bool {
	if !a.Ok || !b.Ok {
		return a.Ok == b.Ok
	}
	return IndexedEqual(a.Color, b.Color)
}

// SRGBToLinear sRGB 分量转线性，输入输出均在 [0,1]
func SRGBToLinear(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// ToOklch 将 sRGB 颜色转换到 OKLCH
func ToOklch(c i2vtypes.ColorRgb) i2vtypes.ColorOklch {
	r := SRGBToLinear(float64(c.R) / 255)
	g := SRGBToLinear(float64(c.G) / 255)
	b := SRGBToLinear(float64(c.B) / 255)

	// 线性 RGB -> LMS
	l := 0.4122214708*r + 0.5363325363*g + 0.0514459929*b
	m := 0.2119034982*r + 0.6806995451*g + 0.1073969566*b
	s := 0.0883024619*r + 0.2817188376*g + 0.6299787005*b

	l, m, s = math.Cbrt(l), math.Cbrt(m), math.Cbrt(s)

	// LMS' -> Lab
	L := 0.2104542553*l + 0.7936177850*m - 0.0040720468*s
	A := 1.9779984951*l - 2.4285922050*m + 0.4505937099*s
	B := 0.0259040371*l + 0.7827717662*m - 0.8086757660*s

	h := math.Atan2(B, A)
	if h < 0 {
		h += 2 * math.Pi
	}
	if h >= 2*math.Pi {
		h = 0
	}
	return i2vtypes.ColorOklch{L: L, C: math.Hypot(A, B), H: h}
}

// Compare 按 (L, C, H) 字典序比较
func Compare(a, b i2vtypes.ColorOklch) int {
	if c := cmp.Compare(a.L, b.L); c != 0 {
		return c
	}
	if c := cmp.Compare(a.C, b.C); c != 0 {
		return c
	}
	return cmp.Compare(a.H, b.H)
}
