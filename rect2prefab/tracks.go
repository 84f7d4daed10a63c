package rect2prefab

import (
	"fmt"
	"img2vgp/vlog"
	i2vtypes "img2vgp/type"
	"strings"
)

// Alignment 决定图像的哪一点对齐到原点
type Alignment int

const (
	AlignStart Alignment = iota // 左 / 上
	AlignCenter
	AlignEnd // 右 / 下
)

// ParseAlignment 接受 start/left/top、center/middle、end/right/bottom
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start", "left", "top", "":
		return AlignStart, nil
	case "center", "centre", "middle":
		return AlignCenter, nil
	case "end", "right", "bottom":
		return AlignEnd, nil
	}
	return AlignStart, fmt.Errorf("unknown alignment %q", s)
}

func (a Alignment) offset(size int) float64 {
	switch a {
	case AlignCenter:
		return float64(size) / 2
	case AlignEnd:
		return float64(size)
	}
	return 0
}

// Layout 描述像素到编辑器坐标、帧到时间的换算
type Layout struct {
	PixelsPerUnit   float64
	HorizontalAlign Alignment
	VerticalAlign   Alignment
	Speed           float64 // 播放倍速，<= 0 视为 1
	Looped          bool    // 循环播放直到 lifetime
}

// PrefabRect 是一个槽位（跨帧同一位置的矩形）的三条轨道，位置尚未翻转 Y
type PrefabRect struct {
	Positions []Keyframe[Vec2]
	Sizes     []Keyframe[Vec2]
	Colors    []Keyframe[i2vtypes.IndexedColor]
}

// scheduledFrame 表示播放时间轴上的一帧
type scheduledFrame struct {
	frame int
	time  float64
}

// schedule 计算每一帧的起始时间（秒）。循环时重复帧序列直到 lifetime
func schedule(img *i2vtypes.RectImage, layout Layout, lifetime float64) []scheduledFrame {
	speed := layout.Speed
	if speed <= 0 {
		speed = 1
	}

	var out []scheduledFrame
	elapsed := 0
	for i, f := range img.Frames {
		out = append(out, scheduledFrame{frame: i, time: float64(elapsed) / 1000 / speed})
		elapsed += f.Delay
	}

	total := img.Duration()
	if !layout.Looped || total <= 0 || len(img.Frames) == 0 {
		return out
	}
	for {
		for i, f := range img.Frames {
			start := float64(elapsed) / 1000 / speed
			if start >= lifetime {
				return out
			}
			out = append(out, scheduledFrame{frame: i, time: start})
			elapsed += f.Delay
		}
	}
}

// BuildRects 按槽位把各帧的矩形合并为关键帧轨道。
// 槽位 i 是每帧第 i 个矩形；槽位数取各帧矩形数的最大值，
// 缺少该槽位的帧输出不透明度为 0 的隐藏关键帧，几何沿用最近一次的值。
func BuildRects(img *i2vtypes.RectImage, layout Layout, lifetime float64) []PrefabRect {
	slots := 0
	uneven := false
	for i, f := range img.Frames {
		if i > 0 && len(f.Rects) != slots {
			uneven = true
		}
		slots = max(slots, len(f.Rects))
	}
	if uneven {
		vlog.Logger().Warn("frames have different rect counts, missing slots are hidden",
			"frames", len(img.Frames), "slots", slots)
	}

	ppu := layout.PixelsPerUnit
	if ppu <= 0 {
		ppu = 1
	}
	ax := layout.HorizontalAlign.offset(img.Width)
	ay := layout.VerticalAlign.offset(img.Height)

	timeline := schedule(img, layout, lifetime)
	out := make([]PrefabRect, slots)
	for s := range out {
		var last i2vtypes.ColoredRect
		// 第一次出现之前的隐藏帧使用第一次出现时的几何
		for _, f := range img.Frames {
			if s < len(f.Rects) {
				last = f.Rects[s]
				break
			}
		}

		pr := PrefabRect{
			Positions: make([]Keyframe[Vec2], 0, len(timeline)),
			Sizes:     make([]Keyframe[Vec2], 0, len(timeline)),
			Colors:    make([]Keyframe[i2vtypes.IndexedColor], 0, len(timeline)),
		}
		for _, sf := range timeline {
			rects := img.Frames[sf.frame].Rects
			if s < len(rects) {
				last = rects[s]
			}
			color := last.Color
			if s >= len(rects) {
				color.Opacity = 0
			}

			pr.Positions = append(pr.Positions, Keyframe[Vec2]{
				Time:  sf.time,
				Value: Vec2{(float64(last.X) - ax) / ppu, (float64(last.Y) - ay) / ppu},
			})
			pr.Sizes = append(pr.Sizes, Keyframe[Vec2]{
				Time:  sf.time,
				Value: Vec2{float64(last.Width) / ppu, float64(last.Height) / ppu},
			})
			pr.Colors = append(pr.Colors, Keyframe[i2vtypes.IndexedColor]{Time: sf.time, Value: color})
		}
		out[s] = pr
	}
	return out
}
