package vgp

import (
	"encoding/json"
	"fmt"
	"os"
)

// ObjectType 物体类型
type ObjectType int

const (
	ObjectHit   ObjectType = 4
	ObjectNoHit ObjectType = 5
	ObjectEmpty ObjectType = 6
)

// AutoKillFixedTime 到达固定时间后销毁
const AutoKillFixedTime = 3

// ParentTypeAll 位置/缩放/旋转都跟随父物体
const ParentTypeAll = "111"

// CurveInstant 阶跃切换，不插值
const CurveInstant = "Instant"

// 事件轨道下标
const (
	TrackPosition = iota
	TrackScale
	TrackRotation
	TrackColor
	TrackCount
)

// Prefab 表示整个 prefab 文件
type Prefab struct {
	Name        string    `json:"n"`
	Description string    `json:"description"`
	Type        int       `json:"type"`
	Objects     []*Object `json:"objs"`
}

// Object 表示 prefab 中的一个物体
type Object struct {
	ID             string            `json:"id"`
	ParentID       string            `json:"p_id,omitempty"`
	AutoKillType   int               `json:"ak_t"`
	AutoKillOffset float64           `json:"ak_o"`
	ParentType     string            `json:"p_t"`
	ObjectType     ObjectType        `json:"ot"`
	Depth          int               `json:"d"`
	Name           string            `json:"n"`
	Editor         Editor            `json:"ed"`
	Origin         Origin            `json:"o"`
	Events         [TrackCount]Event `json:"e"`
}

type Editor struct {
	Bin int `json:"b"`
}

type Origin struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event 是一条关键帧轨道
type Event struct {
	K []Keyframe `json:"k"`
}

// Keyframe 第一帧不带 ct
type Keyframe struct {
	T      float64   `json:"t"`
	Values []float64 `json:"ev"`
	Curve  string    `json:"ct,omitempty"`
}

// Marshal 输出带缩进的 JSON
func Marshal(p *Prefab) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// WriteFile 将 prefab 写入文件
func WriteFile(path string, p *Prefab) error {
	data, err := Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefab: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write prefab: %w", err)
	}
	return nil
}

// Read 读取 prefab 文件
func Read(path string) (*Prefab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Prefab
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prefab %s: %w", path, err)
	}
	return &p, nil
}
