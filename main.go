package main

import (
	"context"
	"flag"
	"img2vgp/config"
	"img2vgp/vlog"
	"log"
	"log/slog"
	"os"
	"os/signal"
)

func main() {

	inputPath := flag.String("input", "", "输入文件路径（PNG/JPEG/GIF/WebP/BMP 或视频）")
	configPath := flag.String("config", "img2vgp.yaml", "配置文件路径，不存在时使用默认值")
	name := flag.String("name", "", "prefab 名称")
	description := flag.String("description", "", "prefab 描述")
	prefabType := flag.Int("type", 0, "prefab 类型")
	ppu := flag.Float64("ppu", 0, "每个单位对应的像素数")
	lifetime := flag.Float64("lifetime", 0, "物体存活时间，单位秒")
	depth := flag.Int("depth", 0, "渲染深度")
	halign := flag.String("halign", "", "水平对齐 left/center/right")
	valign := flag.String("valign", "", "垂直对齐 top/center/bottom")
	hit := flag.Bool("hit", false, "矩形是否为可碰撞物体")
	speed := flag.Float64("speed", 0, "播放倍速")
	loop := flag.Bool("loop", false, "是否循环播放直到存活时间结束")
	seed := flag.Int64("seed", 0, "id 随机种子，0 表示由输入推导")
	fps := flag.Int("fps", 0, "视频每秒帧数")
	maxWidth := flag.Int("width", 0, "最大宽度，0 表示不缩放")
	parallel := flag.Int("parallel", 0, "并行处理的最大帧数")
	output := flag.String("output", "", "输出文件路径")
	preview := flag.String("preview", "", "SVG 预览输出路径")
	previewMode := flag.String("preview-mode", "", "预览方式 rects/trace")
	previewFrame := flag.Int("preview-frame", 0, "预览第几帧")
	previewScale := flag.Int("preview-scale", 0, "预览放大倍数")
	bucket := flag.String("s3-bucket", "", "上传到的 S3 bucket，为空不上传")
	region := flag.String("s3-region", "", "S3 区域")
	prefix := flag.String("s3-prefix", "", "S3 key 前缀")
	verbose := flag.Bool("verbose", false, "输出调试日志")

	help := flag.Bool("help", false, "显示帮助信息")
	flag.Parse()
	if *help || *inputPath == "" {
		flag.Usage()
		return
	}

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	// 只有显式传入的参数才覆盖配置文件
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			cfg.Prefab.Name = *name
		case "description":
			cfg.Prefab.Description = *description
		case "type":
			cfg.Prefab.Type = *prefabType
		case "ppu":
			cfg.Prefab.PixelsPerUnit = *ppu
		case "lifetime":
			cfg.Prefab.Lifetime = *lifetime
		case "depth":
			cfg.Prefab.Depth = *depth
		case "halign":
			cfg.Prefab.HorizontalAlignment = *halign
		case "valign":
			cfg.Prefab.VerticalAlignment = *valign
		case "hit":
			cfg.Prefab.Hit = *hit
		case "speed":
			cfg.Prefab.Speed = *speed
		case "loop":
			cfg.Prefab.Looped = *loop
		case "seed":
			cfg.Prefab.Seed = *seed
		case "fps":
			cfg.Input.FPS = *fps
		case "width":
			cfg.Input.MaxWidth = *maxWidth
		case "parallel":
			cfg.Input.Parallel = *parallel
		case "output":
			cfg.Output.Path = *output
		case "preview":
			cfg.Preview.Path = *preview
		case "preview-mode":
			cfg.Preview.Mode = *previewMode
		case "preview-frame":
			cfg.Preview.Frame = *previewFrame
		case "preview-scale":
			cfg.Preview.Scale = *previewScale
		case "s3-bucket":
			cfg.S3.Bucket = *bucket
		case "s3-region":
			cfg.S3.Region = *region
		case "s3-prefix":
			cfg.S3.Prefix = *prefix
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if *verbose {
		vlog.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := generateVgpToFile(ctx, *inputPath, cfg); err != nil {
		log.Fatal(err)
	}
}
