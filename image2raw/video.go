package image2raw

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	i2vtypes "img2vgp/type"
	"img2vgp/vlog"
	"io"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"
)

// VideoProbe 只关心视频流
type VideoProbe struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		NbFrames     string `json:"nb_frames"`      // 有些视频是字符串
		AvgFrameRate string `json:"avg_frame_rate"` // fallback
		Duration     string `json:"duration"`
	} `json:"streams"`
}

// parseProbe 从 ffprobe 输出中估算总帧数
func parseProbe(probeStr string) (int, error) {
	var probe VideoProbe
	if err := json.Unmarshal([]byte(probeStr), &probe); err != nil {
		return 0, fmt.Errorf("json unmarshal error: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if stream.NbFrames != "" && stream.NbFrames != "0" {
			if n, err := strconv.Atoi(stream.NbFrames); err == nil {
				return n, nil
			}
		}
		// 没有 nb_frames 时用 avg_frame_rate * duration 估算
		if rate, ok := parseRate(stream.AvgFrameRate); ok {
			if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
				return int(rate * d), nil
			}
		}
	}

	return 0, fmt.Errorf("no video stream found or cannot determine frame count")
}

func parseRate(s string) (float64, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}

// ExtractFrames 用 ffmpeg 以 PNG 管道按 fps 抽帧，每帧延迟 1000/fps 毫秒
func ExtractFrames(ctx context.Context, videoPath string, opts Options) (*i2vtypes.RawImage, error) {
	fps := opts.FPS
	if fps <= 0 {
		fps = 1
	}

	if probeStr, err := ffmpeg.Probe(videoPath); err != nil {
		return nil, fmt.Errorf("ffprobe error: %w", err)
	} else if n, err := parseProbe(probeStr); err == nil {
		vlog.Logger().Debug("video probed", "path", videoPath, "frames", n)
	}

	args := ffmpeg.KwArgs{
		"format": "image2pipe",
		"vcodec": "png",
		"r":      strconv.Itoa(fps),
	}
	if opts.MaxWidth > 0 {
		// 缩放交给 ffmpeg，用最近邻避免产生新颜色
		args["vf"] = fmt.Sprintf("scale='min(%d,iw)':-1:flags=neighbor", opts.MaxWidth)
	}

	r, w := io.Pipe()
	cmd := ffmpeg.Input(videoPath).
		Output("pipe:1", args).
		WithOutput(w).
		WithErrorOutput(io.Discard)
	cmd.Context = ctx

	go func() {
		w.CloseWithError(cmd.Run())
	}()

	var decoded []image.Image
	reader := bufio.NewReader(r)
	for {
		if _, err := reader.Peek(1); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("ffmpeg failed: %w", err)
		}
		img, _, err := image.Decode(reader)
		if err != nil {
			r.CloseWithError(err)
			return nil, fmt.Errorf("decode frame %d failed: %w", len(decoded), err)
		}
		decoded = append(decoded, img)
	}

	if len(decoded) == 0 {
		return nil, fmt.Errorf("no frames extracted: %w", i2vtypes.ErrEmptyImage)
	}

	frames := make([]i2vtypes.RawImageFrame, len(decoded))
	bounds := make([]image.Rectangle, len(decoded))
	g := new(errgroup.Group)
	g.SetLimit(max(opts.Parallel, 1))
	for i, img := range decoded {
		g.Go(func() error {
			n := toNRGBA(img)
			bounds[i] = n.Bounds()
			frames[i] = i2vtypes.RawImageFrame{Pix: n.Pix, Delay: 1000 / fps}
			return nil
		})
	}
	_ = g.Wait()

	for i, b := range bounds {
		if b != bounds[0] {
			return nil, fmt.Errorf("frame %d size %v differs from %v: %w", i, b.Size(), bounds[0].Size(), i2vtypes.ErrMalformedFrame)
		}
	}

	return &i2vtypes.RawImage{
		Width:  bounds[0].Dx(),
		Height: bounds[0].Dy(),
		Frames: frames,
	}, nil
}
