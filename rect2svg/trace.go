package rect2svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"image/color"
	"img2vgp/colorspace"
	i2vtypes "img2vgp/type"
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/gotranspile/gotrace"
)

// LayerSVG 表示单个颜色图层描边后的 SVG
type LayerSVG struct {
	ColorIndex int
	SVGData    string
}

// ColorLayers 按调色板索引把一帧拆成黑白掩码：黑=该颜色，白=其他
func ColorLayers(img *i2vtypes.IndexedImage, frame int) map[int]*image.Gray {
	pixels := img.Frames[frame].Pixels
	layers := make(map[int]*image.Gray)
	bounds := image.Rect(0, 0, img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			px := pixels.At(x, y)
			if !px.Ok {
				continue
			}
			mask, ok := layers[px.Color.Index]
			if !ok {
				mask = image.NewGray(bounds)
				// 默认白色背景
				for i := range mask.Pix {
					mask.Pix[i] = 255
				}
				layers[px.Color.Index] = mask
			}
			mask.SetGray(x, y, color.Gray{Y: 0})
		}
	}
	return layers
}

// TraceLayers 使用 gotrace 把每个颜色图层转成 SVG，按调色板顺序返回
func TraceLayers(img *i2vtypes.IndexedImage, frame int) ([]LayerSVG, error) {
	if frame < 0 || frame >= len(img.Frames) {
		return nil, fmt.Errorf("frame %d out of range [0,%d)", frame, len(img.Frames))
	}
	layers := ColorLayers(img, frame)
	var out []LayerSVG
	for ci := range img.Palette {
		mask, ok := layers[ci]
		if !ok {
			continue
		}
		svgStr, err := traceGrayToSVG(mask)
		if err != nil {
			return nil, fmt.Errorf("trace color %d: %w", ci, err)
		}
		out = append(out, LayerSVG{ColorIndex: ci, SVGData: svgStr})
	}
	return out, nil
}

// TraceFrame 把描边后的各颜色图层合成一张 SVG
func TraceFrame(w io.Writer, img *i2vtypes.IndexedImage, frame, scale int) error {
	layers, err := TraceLayers(img, frame)
	if err != nil {
		return err
	}
	if scale <= 0 {
		scale = 1
	}

	canvas := svg.New(w)
	canvas.Startview(img.Width*scale, img.Height*scale, 0, 0, img.Width, img.Height)
	for _, layer := range layers {
		doc, err := extractPaths(layer.SVGData)
		if err != nil {
			return fmt.Errorf("parse traced layer %d: %w", layer.ColorIndex, err)
		}
		style := "fill:" + colorspace.Hex(img.Palette[layer.ColorIndex])
		canvas.Gid(fmt.Sprintf("color_%d", layer.ColorIndex))
		for _, p := range doc.Paths {
			canvas.Path(p.D, style)
		}
		for _, g := range doc.Groups {
			canvas.Group(fmt.Sprintf(`transform="%s"`, g.Transform))
			for _, p := range g.Paths {
				canvas.Path(p.D, style)
			}
			canvas.Gend()
		}
		canvas.Gend()
	}
	canvas.End()
	return nil
}

// traceGrayToSVG 核心：使用 gotrace 将 image.Gray 转 SVG 字符串
func traceGrayToSVG(mask *image.Gray) (string, error) {
	bm := gotrace.BitmapFromGray(mask, nil)

	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	sz := mask.Bounds().Size()
	if err := gotrace.Render("svg", nil, &buf, paths, sz.X, sz.Y); err != nil {
		return "", err
	}

	return buf.String(), nil
}

type svgPath struct {
	D string `xml:"d,attr"`
}

type svgGroup struct {
	Transform string    `xml:"transform,attr"`
	Paths     []svgPath `xml:"path"`
}

type svgDoc struct {
	Paths  []svgPath  `xml:"path"`
	Groups []svgGroup `xml:"g"`
}

// extractPaths 从 SVG 字符串中提取 <path> 的 d 属性，保留外层 <g> 的 transform
func extractPaths(s string) (*svgDoc, error) {
	var doc svgDoc
	if err := xml.Unmarshal([]byte(s), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
