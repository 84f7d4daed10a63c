package i2vtypes

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFrame 帧字节长度与 width*height*4 不符
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrPaletteLookupMiss 像素颜色不在调色板中，正常流程不会发生
	ErrPaletteLookupMiss = errors.New("palette lookup miss")
	// ErrEmptyImage 解码结果没有帧或尺寸为 0
	ErrEmptyImage = errors.New("empty image")
)

// FrameError 描述某一帧的长度错误
type FrameError struct {
	Frame int
	Got   int
	Want  int
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: data length %d does not match width*height*4 = %d", e.Frame, e.Got, e.Want)
}

func (e *FrameError) Unwrap() error { return ErrMalformedFrame }

// Validate 检查每一帧的长度
func (img *RawImage) Validate() error {
	if img.Width < 0 || img.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrMalformedFrame, img.Width, img.Height)
	}
	want := img.Width * img.Height * 4
	for i, f := range img.Frames {
		if len(f.Pix) != want {
			return &FrameError{Frame: i, Got: len(f.Pix), Want: want}
		}
	}
	return nil
}
