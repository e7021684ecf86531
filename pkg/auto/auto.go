// Package auto 提供定位器共享的基础类型和工具函数。
// 截图实现位于子包 screen 中。
package auto

import (
	"fmt"
	"math"
	"time"
)

// Point 表示屏幕上的绝对坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add 返回偏移后的坐标
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Region 表示屏幕矩形区域 (left, top, width, height)
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RegionFromBounds 从 (left, top, right, bottom) 边界创建区域
func RegionFromBounds(left, top, right, bottom int) Region {
	return Region{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Valid 区域宽高必须为正
func (r Region) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Right 返回右边界（不含）
func (r Region) Right() int {
	return r.X + r.Width
}

// Bottom 返回下边界（不含）
func (r Region) Bottom() int {
	return r.Y + r.Height
}

// Contains 判断 other 是否完全位于 r 内
func (r Region) Contains(other Region) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.Right() <= r.Right() && other.Bottom() <= r.Bottom()
}

// Relative 将绝对坐标转换为相对区域左上角的坐标
func (r Region) Relative(p Point) Point {
	return Point{X: p.X - r.X, Y: p.Y - r.Y}
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Sleep 休眠
func Sleep(d time.Duration) {
	time.Sleep(d)
}

// ScaleCoord 按比例缩放坐标值
func ScaleCoord(value int, scale float64) int {
	if scale <= 0 {
		return value
	}
	return int(math.Round(float64(value) / scale))
}

// ScaleInt 缩放整数值
func ScaleInt(value int, factor float64) int {
	if factor <= 0 {
		return value
	}
	return int(math.Round(float64(value) * factor))
}
