package auto

import "time"

// Option 配置选项函数类型
type Option func(*Options)

// Options 单次定位调用的配置
type Options struct {
	// Threshold 图像匹配阈值 (0-1)
	Threshold float64
	// ClickOffset 相对模板中心的点击偏移量
	ClickOffset Point
	// MaxAttempts 动画搜索的最大截图次数
	MaxAttempts int
}

// 默认值
const (
	DefaultThreshold   = 0.8
	DefaultMaxAttempts = 5
	DefaultSettleDelay = 500 * time.Millisecond
)

// DefaultOptions 默认配置
func DefaultOptions() *Options {
	return &Options{
		Threshold:   DefaultThreshold,
		ClickOffset: Point{X: 0, Y: 0},
		MaxAttempts: DefaultMaxAttempts,
	}
}

// ApplyOptions 应用配置选项
func ApplyOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithThreshold 设置匹配阈值
func WithThreshold(t float64) Option {
	return func(o *Options) {
		o.Threshold = t
	}
}

// WithClickOffset 设置点击偏移量
func WithClickOffset(x, y int) Option {
	return func(o *Options) {
		o.ClickOffset = Point{X: x, Y: y}
	}
}

// WithMaxAttempts 设置动画搜索的最大尝试次数
func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		o.MaxAttempts = n
	}
}
