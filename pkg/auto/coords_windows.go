//go:build windows

package auto

import (
	"math"
	"sync"
	"syscall"

	"github.com/go-vgo/robotgo"
)

// Windows 下存在两个坐标空间：
//   - 物理像素: robotgo.CaptureImg 返回的截图像素，模板匹配结果在此空间
//   - robotgo 坐标: robotgo.GetScreenSize / CaptureImg 参数使用的空间
//
// coordScale = 截图像素尺寸 / robotgo 坐标空间尺寸，首次使用时探测并缓存。

var (
	coordScaleOnce sync.Once
	coordScaleX    = 1.0
	coordScaleY    = 1.0

	user32            = syscall.NewLazyDLL("user32.dll")
	gdi32             = syscall.NewLazyDLL("gdi32.dll")
	procGetDC         = user32.NewProc("GetDC")
	procReleaseDC     = user32.NewProc("ReleaseDC")
	procGetDeviceCaps = gdi32.NewProc("GetDeviceCaps")
)

const logPixelsX = 88

// GetDPIScale 获取 Windows DPI 缩放比例 (1.0 = 100%)
func GetDPIScale() float64 {
	dpi := 0
	if procGetDC.Find() == nil && procGetDeviceCaps.Find() == nil {
		dc, _, _ := procGetDC.Call(0)
		if dc != 0 {
			d, _, _ := procGetDeviceCaps.Call(dc, uintptr(logPixelsX))
			dpi = int(d)
			procReleaseDC.Call(0, dc)
		}
	}
	if dpi <= 0 {
		return 1.0
	}
	return normalizeScale(float64(dpi) / 96.0)
}

// GetPhysicalScreenSize 获取物理屏幕尺寸（与截图分辨率一致）
func GetPhysicalScreenSize() (width, height int) {
	w, h := robotgo.GetScreenSize()
	sx, sy := coordinateScale()
	return ScaleInt(w, sx), ScaleInt(h, sy)
}

// NormalizeRegionForInput 将物理像素区域转换为 robotgo 截图参数
func NormalizeRegionForInput(r Region) Region {
	sx, sy := coordinateScale()
	out := Region{
		X:      ScaleInt(r.X, 1.0/sx),
		Y:      ScaleInt(r.Y, 1.0/sy),
		Width:  ScaleInt(r.Width, 1.0/sx),
		Height: ScaleInt(r.Height, 1.0/sy),
	}
	if r.Width > 0 && out.Width < 1 {
		out.Width = 1
	}
	if r.Height > 0 && out.Height < 1 {
		out.Height = 1
	}
	return out
}

func coordinateScale() (float64, float64) {
	coordScaleOnce.Do(func() {
		reportedW, reportedH := robotgo.GetScreenSize()
		if reportedW <= 0 || reportedH <= 0 {
			return
		}
		img, err := robotgo.CaptureImg()
		if err != nil || img == nil {
			s := GetDPIScale()
			coordScaleX, coordScaleY = s, s
			return
		}
		coordScaleX = normalizeScale(float64(img.Bounds().Dx()) / float64(reportedW))
		coordScaleY = normalizeScale(float64(img.Bounds().Dy()) / float64(reportedH))
	})
	return coordScaleX, coordScaleY
}

func normalizeScale(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0.5 || v > 4.0 {
		return 1.0
	}
	if math.Abs(v-1.0) < 0.05 {
		return 1.0
	}
	return v
}
