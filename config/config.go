package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"img2vgp/rect2prefab"
)

// ErrInvalid 配置值不合法
var ErrInvalid = errors.New("invalid config")

// Config 对应可选的 YAML 配置文件，命令行参数会覆盖其中的值
type Config struct {
	Prefab  PrefabConfig  `yaml:"prefab"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Preview PreviewConfig `yaml:"preview"`
	S3      S3Config      `yaml:"s3"`
}

type PrefabConfig struct {
	Name                string  `yaml:"name"`
	Description         string  `yaml:"description"`
	Type                int     `yaml:"type"`
	PixelsPerUnit       float64 `yaml:"pixels_per_unit"`
	Lifetime            float64 `yaml:"lifetime"`
	Depth               int     `yaml:"depth"`
	HorizontalAlignment string  `yaml:"horizontal_alignment"`
	VerticalAlignment   string  `yaml:"vertical_alignment"`
	Hit                 bool    `yaml:"hit"`
	Speed               float64 `yaml:"speed"`
	Looped              bool    `yaml:"looped"`
	Seed                int64   `yaml:"seed"` // 0 表示由输入像素推导
}

type InputConfig struct {
	FPS      int `yaml:"fps"`
	MaxWidth int `yaml:"max_width"`
	Parallel int `yaml:"parallel"`
}

type OutputConfig struct {
	Path string `yaml:"path"`
}

type PreviewConfig struct {
	Path  string `yaml:"path"` // 为空时不输出预览
	Mode  string `yaml:"mode"` // rects 或 trace
	Frame int    `yaml:"frame"`
	Scale int    `yaml:"scale"`
}

type S3Config struct {
	Bucket string `yaml:"bucket"` // 为空时不上传
	Region string `yaml:"region"`
	Prefix string `yaml:"prefix"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Prefab: PrefabConfig{
			Name:                "image",
			PixelsPerUnit:       1,
			Lifetime:            10,
			Depth:               15,
			HorizontalAlignment: "center",
			VerticalAlignment:   "center",
			Speed:               1,
		},
		Input: InputConfig{
			FPS:      10,
			Parallel: 4,
		},
		Output: OutputConfig{Path: "output/image.vgp"},
		Preview: PreviewConfig{
			Mode:  "rects",
			Scale: 8,
		},
		S3: S3Config{Prefix: "prefabs"},
	}
}

// LoadOptional 读取配置文件；path 为空或文件不存在时返回默认配置
func LoadOptional(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	p := c.Prefab
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: prefab name is empty", ErrInvalid)
	case p.PixelsPerUnit <= 0:
		return fmt.Errorf("%w: pixels_per_unit must be > 0, got %v", ErrInvalid, p.PixelsPerUnit)
	case p.Lifetime <= 0:
		return fmt.Errorf("%w: lifetime must be > 0, got %v", ErrInvalid, p.Lifetime)
	case p.Speed <= 0:
		return fmt.Errorf("%w: speed must be > 0, got %v", ErrInvalid, p.Speed)
	case c.Input.FPS <= 0:
		return fmt.Errorf("%w: fps must be > 0, got %d", ErrInvalid, c.Input.FPS)
	case c.Input.MaxWidth < 0:
		return fmt.Errorf("%w: max_width must be >= 0, got %d", ErrInvalid, c.Input.MaxWidth)
	case c.Output.Path == "":
		return fmt.Errorf("%w: output path is empty", ErrInvalid)
	}
	if _, err := rect2prefab.ParseAlignment(p.HorizontalAlignment); err != nil {
		return fmt.Errorf("%w: horizontal_alignment: %v", ErrInvalid, err)
	}
	if _, err := rect2prefab.ParseAlignment(p.VerticalAlignment); err != nil {
		return fmt.Errorf("%w: vertical_alignment: %v", ErrInvalid, err)
	}
	switch c.Preview.Mode {
	case "rects", "trace":
	default:
		return fmt.Errorf("%w: preview mode %q, want rects or trace", ErrInvalid, c.Preview.Mode)
	}
	return nil
}

// PrefabOptions 转换为 rect2prefab 参数，seed 由调用方决定
func (c *Config) PrefabOptions(seed int64) rect2prefab.Options {
	p := c.Prefab
	h, _ := rect2prefab.ParseAlignment(p.HorizontalAlignment)
	v, _ := rect2prefab.ParseAlignment(p.VerticalAlignment)
	return rect2prefab.Options{
		Name:        p.Name,
		Description: p.Description,
		Type:        p.Type,
		Lifetime:    p.Lifetime,
		Depth:       p.Depth,
		Hit:         p.Hit,
		Seed:        seed,
		Layout: rect2prefab.Layout{
			PixelsPerUnit:   p.PixelsPerUnit,
			HorizontalAlign: h,
			VerticalAlign:   v,
			Speed:           p.Speed,
			Looped:          p.Looped,
		},
	}
}
