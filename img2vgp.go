package main

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"img2vgp/config"
	"img2vgp/image2raw"
	"img2vgp/indexed2rect"
	"img2vgp/publish"
	"img2vgp/raw2indexed"
	"img2vgp/rect2prefab"
	"img2vgp/rect2svg"
	i2vtypes "img2vgp/type"
	"img2vgp/vgp"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// result 保存一次转换的中间结果，预览需要用到
type result struct {
	indexed *i2vtypes.IndexedImage
	rects   *i2vtypes.RectImage
	prefab  *vgp.Prefab
}

// deriveSeed 由像素数据推导种子，同一输入多次导出得到相同的 id
func deriveSeed(raw *i2vtypes.RawImage) int64 {
	h := crc32.NewIEEE()
	fmt.Fprintf(h, "%dx%d", raw.Width, raw.Height)
	for _, f := range raw.Frames {
		h.Write(f.Pix)
	}
	return int64(h.Sum32())
}

func convert(ctx context.Context, raw *i2vtypes.RawImage, cfg *config.Config) (*result, error) {
	log.Println("Building palette...")
	indexed, err := raw2indexed.Convert(ctx, raw, raw2indexed.Options{Parallel: cfg.Input.Parallel})
	if err != nil {
		return nil, fmt.Errorf("index image: %w", err)
	}
	log.Printf("Palette has %d colors\n", len(indexed.Palette))

	log.Println("Decomposing frames into rects...")
	rects, err := indexed2rect.Convert(ctx, indexed, indexed2rect.Options{Parallel: cfg.Input.Parallel})
	if err != nil {
		return nil, fmt.Errorf("decompose frames: %w", err)
	}
	total := 0
	for _, f := range rects.Frames {
		total += len(f.Rects)
	}
	log.Printf("Generated %d rects in %d frames\n", total, len(rects.Frames))

	seed := cfg.Prefab.Seed
	if seed == 0 {
		seed = deriveSeed(raw)
	}
	log.Println("Generating prefab...")
	prefab := rect2prefab.Synthesize(rects, cfg.PrefabOptions(seed))

	return &result{indexed: indexed, rects: rects, prefab: prefab}, nil
}

func generateVgpToFile(ctx context.Context, inputPath string, cfg *config.Config) error {
	log.Println("Decoding input...")
	raw, err := image2raw.DecodeFile(ctx, inputPath, image2raw.Options{
		FPS:      cfg.Input.FPS,
		MaxWidth: cfg.Input.MaxWidth,
		Parallel: cfg.Input.Parallel,
	})
	if err != nil {
		return fmt.Errorf("decode %s: %w", inputPath, err)
	}
	log.Printf("Decoded %d frames, %dx%d\n", len(raw.Frames), raw.Width, raw.Height)

	res, err := convert(ctx, raw, cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Output.Path), 0o755); err != nil {
		return err
	}
	if err := vgp.WriteFile(cfg.Output.Path, res.prefab); err != nil {
		return err
	}
	log.Printf("Wrote %s (%d objects)\n", cfg.Output.Path, len(res.prefab.Objects))

	if cfg.Preview.Path != "" {
		if err := writePreview(cfg.Preview, res); err != nil {
			return err
		}
		log.Printf("Wrote preview %s\n", cfg.Preview.Path)
	}

	if cfg.S3.Bucket != "" {
		data, err := vgp.Marshal(res.prefab)
		if err != nil {
			return err
		}
		up, err := publish.New(cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(cfg.Output.Path), filepath.Ext(cfg.Output.Path))
		loc, err := up.Upload(ctx, name, data)
		if err != nil {
			return err
		}
		log.Printf("Uploaded to %s\n", loc)
	}
	return nil
}

func writePreview(pc config.PreviewConfig, res *result) error {
	var buf bytes.Buffer
	var err error
	switch pc.Mode {
	case "trace":
		err = rect2svg.TraceFrame(&buf, res.indexed, pc.Frame, pc.Scale)
	default:
		err = rect2svg.RenderRects(&buf, res.rects, pc.Frame, pc.Scale)
	}
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(pc.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(pc.Path, buf.Bytes(), 0o644)
}
