package i2vtypes

import "fmt"

// Grid 是按 y*Width+x 平铺存储的二维数组
type Grid[T any] struct {
	Width  int
	Height int
	vals   []T
}

// NewGrid 创建一个填充零值的网格
func NewGrid[T any](width, height int) *Grid[T] {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("grid: negative size %dx%d", width, height))
	}
	return &Grid[T]{Width: width, Height: height, vals: make([]T, width*height)}
}

// In 判断坐标是否在网格内
func (g *Grid[T]) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

func (g *Grid[T]) offset(x, y int) int {
	if !g.In(x, y) {
		panic(fmt.Sprintf("grid: (%d,%d) out of range %dx%d", x, y, g.Width, g.Height))
	}
	return y*g.Width + x
}

func (g *Grid[T]) At(x, y int) T {
	return g.vals[g.offset(x, y)]
}

func (g *Grid[T]) Set(x, y int, v T) {
	g.vals[g.offset(x, y)] = v
}
