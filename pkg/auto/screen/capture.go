// Package screen 提供屏幕区域截图功能
//
// 每次调用都会重新截图，不做任何缓存：任何操作之后屏幕内容都视为已过期。
// 截图结果统一转换为 3 通道 BGR 的 gocv.Mat。
package screen

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/vova616/screenshot"
	"gocv.io/x/gocv"

	"github.com/zoeyai/zoeylocator/pkg/auto"
)

// Backend 截图后端
type Backend string

const (
	// BackendRobotgo 使用 robotgo 截图（默认）
	BackendRobotgo Backend = "robotgo"
	// BackendScreenshot 使用 vova616/screenshot 截图
	BackendScreenshot Backend = "screenshot"
)

var (
	// ErrCapture 所有截图错误的公共哨兵
	ErrCapture = errors.New("截图失败")
	// ErrInvalidRegion 区域宽高不为正
	ErrInvalidRegion = errors.New("无效的截图区域")
	// ErrOffScreen 区域超出屏幕范围
	ErrOffScreen = errors.New("截图区域超出屏幕范围")
)

// CaptureError 截图错误
type CaptureError struct {
	Region auto.Region
	Err    error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("截图失败 %s: %v", e.Region, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrCapture) 对所有截图错误成立
func (e *CaptureError) Is(target error) bool {
	return target == ErrCapture
}

// Capturer 截取屏幕区域
type Capturer interface {
	Capture(region auto.Region) (Frame, error)
}

// Frame 一次截图的像素与坐标元信息
type Frame struct {
	Mat  gocv.Mat
	Meta CaptureMeta
}

// Close 释放像素缓冲
func (f Frame) Close() {
	f.Mat.Close()
}

type grabFunc func(r auto.Region) (image.Image, error)
type boundsFunc func() (auto.Region, error)

// ScreenCapturer 基于系统截图接口的 Capturer 实现
type ScreenCapturer struct {
	backend Backend
	grab    grabFunc
	screen  boundsFunc
}

// NewCapturer 创建截图器，backend 为空时使用 robotgo
func NewCapturer(backend string) (*ScreenCapturer, error) {
	switch Backend(backend) {
	case "", BackendRobotgo:
		return &ScreenCapturer{backend: BackendRobotgo, grab: grabRobotgo, screen: robotgoBounds}, nil
	case BackendScreenshot:
		return &ScreenCapturer{backend: BackendScreenshot, grab: grabScreenshot, screen: screenshotBounds}, nil
	default:
		return nil, fmt.Errorf("不支持的截图后端: %s", backend)
	}
}

// Backend 返回当前使用的截图后端
func (c *ScreenCapturer) Backend() Backend {
	return c.backend
}

// Capture 截取 region 并转换为 BGR Mat
func (c *ScreenCapturer) Capture(region auto.Region) (Frame, error) {
	if !region.Valid() {
		return Frame{}, &CaptureError{Region: region, Err: ErrInvalidRegion}
	}
	if c.screen != nil {
		if bounds, err := c.screen(); err == nil && bounds.Valid() && !bounds.Contains(region) {
			return Frame{}, &CaptureError{Region: region, Err: ErrOffScreen}
		}
	}

	img, err := c.grab(region)
	if err != nil {
		return Frame{}, &CaptureError{Region: region, Err: err}
	}
	if img == nil || img.Bounds().Empty() {
		return Frame{}, &CaptureError{Region: region, Err: errors.New("截图结果为空")}
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return Frame{}, &CaptureError{Region: region, Err: fmt.Errorf("转换图像失败: %w", err)}
	}

	return Frame{Mat: mat, Meta: BuildCaptureMeta(region, img.Bounds())}, nil
}

func grabRobotgo(r auto.Region) (image.Image, error) {
	in := auto.NormalizeRegionForInput(r)
	return robotgo.CaptureImg(in.X, in.Y, in.Width, in.Height)
}

func robotgoBounds() (auto.Region, error) {
	n := robotgo.DisplaysNum()
	if n <= 1 {
		w, h := auto.GetPhysicalScreenSize()
		return auto.Region{Width: w, Height: h}, nil
	}

	// 多显示器时取所有显示器的外接矩形
	var union image.Rectangle
	for i := 0; i < n; i++ {
		x, y, w, h := robotgo.GetDisplayBounds(i)
		union = union.Union(image.Rect(x, y, x+w, y+h))
	}
	return auto.RegionFromBounds(union.Min.X, union.Min.Y, union.Max.X, union.Max.Y), nil
}

func grabScreenshot(r auto.Region) (image.Image, error) {
	return screenshot.CaptureRect(image.Rect(r.X, r.Y, r.Right(), r.Bottom()))
}

func screenshotBounds() (auto.Region, error) {
	rect, err := screenshot.ScreenRect()
	if err != nil {
		return auto.Region{}, err
	}
	return auto.RegionFromBounds(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y), nil
}

// GetScreenSize 获取屏幕尺寸（物理像素，与截图分辨率一致）
func GetScreenSize() (width, height int) {
	return auto.GetPhysicalScreenSize()
}
