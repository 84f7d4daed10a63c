package rect2prefab

import (
	"img2vgp/colorspace"
	i2vtypes "img2vgp/type"
)

// Vec2 二维向量
type Vec2 [2]float64

// Keyframe 表示轨道上的一个采样点，Time 单位为秒
type Keyframe[T any] struct {
	Time  float64
	Value T
}

// Dedup 去掉与前一个关键帧值相同的连续关键帧，只保留每段的第一个
func Dedup[T any](track []Keyframe[T], equal func(a, b T) bool) []Keyframe[T] {
	if len(track) == 0 {
		return nil
	}
	out := make([]Keyframe[T], 0, len(track))
	out = append(out, track[0])
	for _, kf := range track[1:] {
		if equal(out[len(out)-1].Value, kf.Value) {
			continue
		}
		out = append(out, kf)
	}
	return out
}

func vecEqual(a, b Vec2) bool {
	return a == b
}

func colorEqual(a, b i2vtypes.IndexedColor) bool {
	return colorspace.IndexedEqual(a, b)
}
