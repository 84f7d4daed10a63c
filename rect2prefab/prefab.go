package rect2prefab

import (
	"fmt"
	"img2vgp/vgp"
	i2vtypes "img2vgp/type"
)

// Options 是生成 prefab 所需的全部参数
type Options struct {
	Name        string
	Description string
	Type        int
	Lifetime    float64 // 秒，所有物体在此时刻销毁
	Depth       int
	Hit         bool // true 时矩形为可碰撞物体
	Seed        int64
	Layout      Layout
}

// Synthesize 从矩形图生成 prefab
func Synthesize(img *i2vtypes.RectImage, opts Options) *vgp.Prefab {
	return CreatePrefab(opts, BuildRects(img, opts.Layout, opts.Lifetime))
}

// CreatePrefab 构造物体图：一个空的根物体 + 每个槽位一个矩形物体
func CreatePrefab(opts Options, rects []PrefabRect) *vgp.Prefab {
	ids := GenerateIDs(opts.Seed, len(rects)+1)

	root := createObject(ids[0], "", "root", 0, vgp.Origin{}, vgp.ObjectEmpty, opts,
		[]Keyframe[Vec2]{{Time: 0, Value: Vec2{0, 0}}},
		[]Keyframe[Vec2]{{Time: 0, Value: Vec2{1, 1}}},
		[]Keyframe[i2vtypes.IndexedColor]{{Time: 0, Value: i2vtypes.IndexedColor{Index: 0, Opacity: 1}}},
	)

	objType := vgp.ObjectNoHit
	if opts.Hit {
		objType = vgp.ObjectHit
	}

	objs := make([]*vgp.Object, 0, len(rects)+1)
	objs = append(objs, root)
	for i, r := range rects {
		// 图像坐标 Y 向下，编辑器坐标 Y 向上
		positions := make([]Keyframe[Vec2], len(r.Positions))
		for j, p := range r.Positions {
			y := -p.Value[1]
			if y == 0 {
				y = 0 // 避免输出 -0
			}
			positions[j] = Keyframe[Vec2]{Time: p.Time, Value: Vec2{p.Value[0], y}}
		}
		objs = append(objs, createObject(ids[i+1], root.ID, fmt.Sprintf("rect_%d", i), 1,
			vgp.Origin{X: 0.5, Y: -0.5}, objType, opts, positions, r.Sizes, r.Colors))
	}

	return &vgp.Prefab{
		Name:        opts.Name,
		Description: opts.Description,
		Type:        opts.Type,
		Objects:     objs,
	}
}

func createObject(
	id, parentID, name string,
	bin int,
	origin vgp.Origin,
	objType vgp.ObjectType,
	opts Options,
	positions, scales []Keyframe[Vec2],
	colors []Keyframe[i2vtypes.IndexedColor],
) *vgp.Object {
	obj := &vgp.Object{
		ID:             id,
		ParentID:       parentID,
		AutoKillType:   vgp.AutoKillFixedTime,
		AutoKillOffset: opts.Lifetime,
		ParentType:     vgp.ParentTypeAll,
		ObjectType:     objType,
		Depth:          opts.Depth,
		Name:           name,
		Editor:         vgp.Editor{Bin: bin},
		Origin:         origin,
	}

	obj.Events[vgp.TrackPosition] = vecEvent(Dedup(positions, vecEqual))
	obj.Events[vgp.TrackScale] = vecEvent(Dedup(scales, vecEqual))
	obj.Events[vgp.TrackRotation] = vgp.Event{K: []vgp.Keyframe{{T: 0, Values: []float64{0}}}}
	obj.Events[vgp.TrackColor] = colorEvent(Dedup(colors, colorEqual))
	return obj
}

func vecEvent(track []Keyframe[Vec2]) vgp.Event {
	ks := make([]vgp.Keyframe, len(track))
	for i, kf := range track {
		ks[i] = vgp.Keyframe{T: kf.Time, Values: []float64{kf.Value[0], kf.Value[1]}, Curve: curve(i)}
	}
	return vgp.Event{K: ks}
}

// colorEvent 不透明时只写索引，否则写 [索引, 不透明度*100]
func colorEvent(track []Keyframe[i2vtypes.IndexedColor]) vgp.Event {
	ks := make([]vgp.Keyframe, len(track))
	for i, kf := range track {
		values := []float64{float64(kf.Value.Index)}
		if kf.Value.Opacity != 1 {
			values = append(values, kf.Value.Opacity*100)
		}
		ks[i] = vgp.Keyframe{T: kf.Time, Values: values, Curve: curve(i)}
	}
	return vgp.Event{K: ks}
}

// 第一个关键帧的 ct 会被忽略，不写出
func curve(i int) string {
	if i == 0 {
		return ""
	}
	return vgp.CurveInstant
}
