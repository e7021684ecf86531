// Package locator 在屏幕区域中定位模板图像
//
// Locator 组合模板缓存、截图和模板匹配，对外只返回屏幕绝对坐标：
//
//	loc := locator.New(template.NewStore("images"), capturer)
//	p, err := loc.Locate("confirm-button.png", auto.Region{X: 0, Y: 0, Width: 800, Height: 600})
//	if err != nil {
//		// 模板缺失/无法解码，或截图失败
//	}
//	if p == nil {
//		// 屏幕上没有该元素，不是错误
//	}
//
// 所有调用都是同步的。未找到返回 nil / 空切片 / 缺省的 map 键，
// 只有配置类问题（模板资源、截图区域）才返回 error。
package locator

import (
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/zoeyai/zoeylocator/internal/logger"
	"github.com/zoeyai/zoeylocator/pkg/auto"
	"github.com/zoeyai/zoeylocator/pkg/auto/screen"
	"github.com/zoeyai/zoeylocator/pkg/config"
	"github.com/zoeyai/zoeylocator/pkg/vision/cv"
	"github.com/zoeyai/zoeylocator/pkg/vision/template"
	"github.com/zoeyai/zoeylocator/pkg/vision/variant"
)

// Matcher 在截图中搜索模板
type Matcher interface {
	FindBest(search, source gocv.Mat, threshold float64) (*cv.RawMatch, error)
	FindAll(search, source gocv.Mat, threshold float64) ([]cv.RawMatch, error)
}

// TemplateSource 按名称提供模板
type TemplateSource interface {
	Get(name string) (*template.Template, error)
	Info(name string) (*template.Info, error)
}

// Sleeper 动画搜索两次截图之间的等待
type Sleeper interface {
	Sleep(d time.Duration)
}

// SleepFunc 函数适配器
type SleepFunc func(time.Duration)

// Sleep 调用 f(d)
func (f SleepFunc) Sleep(d time.Duration) { f(d) }

// Locator 模板定位器
type Locator struct {
	templates   TemplateSource
	capturer    screen.Capturer
	matcher     Matcher
	sleeper     Sleeper
	variants    *variant.Resolver
	schedule    Schedule
	settleDelay time.Duration
	defaults    []auto.Option
	log         *logger.Logger
}

// LocatorOption 定位器构造选项
type LocatorOption func(*Locator)

// WithMatcher 替换匹配器
func WithMatcher(m Matcher) LocatorOption {
	return func(l *Locator) { l.matcher = m }
}

// WithSleeper 替换等待实现
func WithSleeper(s Sleeper) LocatorOption {
	return func(l *Locator) { l.sleeper = s }
}

// WithSchedule 设置动画搜索的阈值放宽策略
func WithSchedule(s Schedule) LocatorOption {
	return func(l *Locator) { l.schedule = s }
}

// WithSettleDelay 设置动画搜索两次截图之间的等待时间
func WithSettleDelay(d time.Duration) LocatorOption {
	return func(l *Locator) { l.settleDelay = d }
}

// WithVariantResolver 设置状态变体解析器
func WithVariantResolver(r *variant.Resolver) LocatorOption {
	return func(l *Locator) { l.variants = r }
}

// WithLogger 设置日志
func WithLogger(log *logger.Logger) LocatorOption {
	return func(l *Locator) { l.log = log }
}

// WithDefaults 设置每次调用的默认选项，调用时传入的选项优先
func WithDefaults(opts ...auto.Option) LocatorOption {
	return func(l *Locator) { l.defaults = append(l.defaults, opts...) }
}

// New 创建定位器
func New(templates TemplateSource, capturer screen.Capturer, opts ...LocatorOption) *Locator {
	l := &Locator{
		templates:   templates,
		capturer:    capturer,
		matcher:     cv.NewTemplateMatching(true),
		sleeper:     SleepFunc(auto.Sleep),
		variants:    variant.New(),
		schedule:    DefaultSchedule(),
		settleDelay: auto.DefaultSettleDelay,
		log:         logger.Default().Named("locator"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewFromConfig 按配置创建定位器：模板目录、截图后端、匹配方式和搜索参数
func NewFromConfig(cfg *config.LocatorConfig, opts ...LocatorOption) (*Locator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}

	capturer, err := screen.NewCapturer(cfg.CaptureBackend)
	if err != nil {
		return nil, err
	}

	base := []LocatorOption{
		WithMatcher(cv.NewTemplateMatching(cfg.RGB)),
		WithVariantResolver(variant.New(cfg.VariantSuffixes...)),
		WithSchedule(Schedule{Step: cfg.RelaxStep, Steps: cfg.RelaxSteps, Floor: cfg.ThresholdFloor}),
		WithSettleDelay(cfg.SettleDelay()),
		WithDefaults(auto.WithThreshold(cfg.Threshold), auto.WithMaxAttempts(cfg.MaxAttempts)),
	}
	return New(template.NewStore(cfg.TemplatesDir), capturer, append(base, opts...)...), nil
}

func (l *Locator) options(opts []auto.Option) *auto.Options {
	all := make([]auto.Option, 0, len(l.defaults)+len(opts))
	all = append(all, l.defaults...)
	all = append(all, opts...)
	return auto.ApplyOptions(all...)
}

// Locate 在区域内查找模板的最佳匹配，返回其中心点（加上点击偏移）的屏幕坐标
// 最佳匹配低于阈值时返回 nil, nil
func (l *Locator) Locate(name string, region auto.Region, opts ...auto.Option) (*auto.Point, error) {
	o := l.options(opts)
	start := time.Now()

	tmpl, err := l.templates.Get(name)
	if err != nil {
		return nil, err
	}

	frame, err := l.capturer.Capture(region)
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	m, err := l.matcher.FindBest(tmpl.Mat, frame.Mat, o.Threshold)
	if err != nil {
		return nil, fmt.Errorf("匹配 %s 失败: %w", name, err)
	}

	if m == nil {
		l.log.LogEvent("LOC", false, elapsedMs(start), fmt.Sprintf("%s in %s @%.2f", name, region, o.Threshold))
		return nil, nil
	}

	p := toScreen(*m, tmpl, frame.Meta, o.ClickOffset)
	l.log.LogEvent("LOC", true, elapsedMs(start), fmt.Sprintf("%s -> (%d,%d) conf=%.3f", name, p.X, p.Y, m.Confidence))
	return &p, nil
}

// LocateAll 查找区域内模板的所有出现位置，重叠候选经过非极大值抑制
// 结果按置信度降序排列，未找到时返回空切片
func (l *Locator) LocateAll(name string, region auto.Region, opts ...auto.Option) ([]auto.Point, error) {
	o := l.options(opts)
	start := time.Now()

	tmpl, err := l.templates.Get(name)
	if err != nil {
		return nil, err
	}

	frame, err := l.capturer.Capture(region)
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	kept, err := l.findAll(tmpl, frame, o.Threshold)
	if err != nil {
		return nil, err
	}

	points := make([]auto.Point, 0, len(kept))
	for _, m := range kept {
		points = append(points, toScreen(m, tmpl, frame.Meta, o.ClickOffset))
	}

	l.log.LogEvent("ALL", len(points) > 0, elapsedMs(start), fmt.Sprintf("%s x%d in %s", name, len(points), region))
	return points, nil
}

// LocateMany 在同一张截图中查找多个模板，返回 名称 → 坐标，未找到的名称不出现在结果中
//
// 截图失败直接返回错误；单个模板缺失或无法解码不影响其他名称，
// 这些错误合并后与已找到的部分结果一起返回。
func (l *Locator) LocateMany(names []string, region auto.Region, opts ...auto.Option) (map[string]auto.Point, error) {
	o := l.options(opts)
	start := time.Now()
	found := make(map[string]auto.Point, len(names))
	if len(names) == 0 {
		return found, nil
	}

	frame, err := l.capturer.Capture(region)
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	var errs []error
	for _, name := range names {
		if _, ok := found[name]; ok {
			continue
		}

		tmpl, err := l.templates.Get(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		m, err := l.matcher.FindBest(tmpl.Mat, frame.Mat, o.Threshold)
		if err != nil {
			errs = append(errs, fmt.Errorf("匹配 %s 失败: %w", name, err))
			continue
		}
		if m != nil {
			found[name] = toScreen(*m, tmpl, frame.Meta, o.ClickOffset)
		}
	}

	l.log.LogEvent("MANY", len(found) > 0, elapsedMs(start), fmt.Sprintf("%d/%d in %s", len(found), len(names), region))
	return found, errors.Join(errs...)
}

// Location 一次出现位置的绝对坐标和相对搜索区域左上角的坐标
type Location struct {
	Absolute auto.Point `json:"absolute"`
	Relative auto.Point `json:"relative"`
}

// ScanReport ScanBounds 的结果
type ScanReport struct {
	Name       string      `json:"name"`
	Threshold  float64     `json:"threshold"`
	Bounds     auto.Region `json:"bounds"`
	SearchArea string      `json:"search_area"`
	Found      int         `json:"found"`
	Locations  []Location  `json:"locations"`
}

// ScanBounds 在 (left, top, right, bottom) 边界内查找模板的所有出现位置
// 同时给出绝对坐标和相对边界左上角的坐标
func (l *Locator) ScanBounds(name string, left, top, right, bottom int, opts ...auto.Option) (*ScanReport, error) {
	region := auto.RegionFromBounds(left, top, right, bottom)
	o := l.options(opts)

	points, err := l.LocateAll(name, region, opts...)
	if err != nil {
		return nil, err
	}

	report := &ScanReport{
		Name:       name,
		Threshold:  o.Threshold,
		Bounds:     region,
		SearchArea: fmt.Sprintf("%dx%d pixels", region.Width, region.Height),
		Found:      len(points),
		Locations:  make([]Location, 0, len(points)),
	}
	for _, p := range points {
		report.Locations = append(report.Locations, Location{Absolute: p, Relative: region.Relative(p)})
	}
	return report, nil
}

// TemplateInfo 返回模板信息
func (l *Locator) TemplateInfo(name string) (*template.Info, error) {
	return l.templates.Info(name)
}

func (l *Locator) findAll(tmpl *template.Template, frame screen.Frame, threshold float64) ([]cv.RawMatch, error) {
	raw, err := l.matcher.FindAll(tmpl.Mat, frame.Mat, threshold)
	if err != nil {
		return nil, fmt.Errorf("匹配 %s 失败: %w", tmpl.Name, err)
	}
	return cv.Suppress(raw, tmpl.Width, tmpl.Height), nil
}

// toScreen 缓冲内左上角 → 模板中心的屏幕绝对坐标 + 点击偏移
func toScreen(m cv.RawMatch, tmpl *template.Template, meta screen.CaptureMeta, offset auto.Point) auto.Point {
	cx, cy := m.Center(tmpl.Width, tmpl.Height)
	return meta.AdjustPoint(cx, cy).Add(offset.X, offset.Y)
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
