package screen

import (
	"image"

	"github.com/zoeyai/zoeylocator/pkg/auto"
)

// CaptureMeta 截图元信息（缩放和偏移量）
// 用于把截图缓冲内的像素坐标还原为屏幕绝对坐标
type CaptureMeta struct {
	ScaleX  float64
	ScaleY  float64
	OffsetX int
	OffsetY int
}

// BuildCaptureMeta 根据请求区域和实际截图尺寸构建元信息
func BuildCaptureMeta(region auto.Region, bounds image.Rectangle) CaptureMeta {
	imgW, imgH := bounds.Dx(), bounds.Dy()

	scaleX := 1.0
	if region.Width > 0 && imgW > 0 {
		scaleX = float64(imgW) / float64(region.Width)
	}
	scaleY := 1.0
	if region.Height > 0 && imgH > 0 {
		scaleY = float64(imgH) / float64(region.Height)
	}

	return CaptureMeta{
		ScaleX:  scaleX,
		ScaleY:  scaleY,
		OffsetX: region.X,
		OffsetY: region.Y,
	}
}

// AdjustPoint 缓冲坐标 → 屏幕绝对坐标（反向缩放 + 偏移）
func (m CaptureMeta) AdjustPoint(x, y int) auto.Point {
	return auto.Point{
		X: auto.ScaleCoord(x, m.ScaleX) + m.OffsetX,
		Y: auto.ScaleCoord(y, m.ScaleY) + m.OffsetY,
	}
}
