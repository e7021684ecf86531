package locator

import (
	"fmt"
	"math"
	"time"

	"github.com/zoeyai/zoeylocator/pkg/auto"
	"github.com/zoeyai/zoeylocator/pkg/auto/screen"
	"github.com/zoeyai/zoeylocator/pkg/vision/cv"
	"github.com/zoeyai/zoeylocator/pkg/vision/template"
)

// Schedule 阈值放宽策略
// 从基础阈值开始每级降低 Step，共 Steps 级，不低于 Floor
type Schedule struct {
	Step  float64
	Steps int
	Floor float64
}

// DefaultSchedule 默认策略: 每级 0.05，共 5 级，下限 0.1
func DefaultSchedule() Schedule {
	return Schedule{Step: 0.05, Steps: 5, Floor: 0.1}
}

// Thresholds 返回按顺序尝试的阈值
// 每级截断到 Floor，去掉截断后相邻的重复值
func (s Schedule) Thresholds(base float64) []float64 {
	steps := max(s.Steps, 0)
	out := make([]float64, 0, steps+1)
	for i := 0; i <= steps; i++ {
		th := base - float64(i)*s.Step
		if th < s.Floor {
			th = s.Floor
		}
		// 消除 0.8-3*0.05 之类的浮点误差
		th = math.Round(th*1e6) / 1e6
		if n := len(out); n > 0 && out[n-1] == th {
			continue
		}
		out = append(out, th)
	}
	return out
}

// State 动画搜索状态
type State int

const (
	Searching State = iota
	Found
	Exhausted
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// MarshalText 以名称序列化
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AnimatedResult 动画搜索的结果
type AnimatedResult struct {
	State State `json:"state"`
	// Attempt 命中时为命中的截图序号，否则为已执行的截图次数
	Attempt   int         `json:"attempt"`
	Threshold float64     `json:"threshold,omitempty"`
	Variant   string      `json:"variant,omitempty"`
	Point     *auto.Point `json:"point,omitempty"`
}

// LocateAnimated 查找可能仍处于过渡动画中的元素
//
// 未找到返回 nil, nil。截图失败只算一次失败的尝试，
// 但宽高不为正的区域在第一次截图前就以 ErrInvalidRegion 返回，重试无法修正它。
// 详见 LocateAnimatedResult。
func (l *Locator) LocateAnimated(name string, region auto.Region, opts ...auto.Option) (*auto.Point, error) {
	res, err := l.LocateAnimatedResult(name, region, opts...)
	if err != nil {
		return nil, err
	}
	return res.Point, nil
}

// LocateAnimatedResult 多次截图、逐级放宽阈值、尝试所有状态变体地查找元素
//
// 搜索顺序为 截图次数 > 阈值 > 变体，第一个满足当前阈值的匹配即为结果，
// 而不是在所有组合中取置信度最高者。
// 变体模板缺失或无法解码时跳过；截图失败计为一次失败的尝试。
// 两次截图之间等待 settle delay，最后一次之后不等待。
// 只有区域宽高不为正时返回错误。
func (l *Locator) LocateAnimatedResult(name string, region auto.Region, opts ...auto.Option) (*AnimatedResult, error) {
	if !region.Valid() {
		return nil, &screen.CaptureError{Region: region, Err: screen.ErrInvalidRegion}
	}

	o := l.options(opts)
	attempts := max(o.MaxAttempts, 1)
	thresholds := l.schedule.Thresholds(o.Threshold)
	names := l.variants.For(name)
	start := time.Now()

	res := &AnimatedResult{State: Searching}
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			l.sleeper.Sleep(l.settleDelay)
		}
		res.Attempt = attempt

		hit, ok := l.attempt(names, region, thresholds, attempt)
		if !ok {
			continue
		}

		p := toScreen(*hit.match, hit.tmpl, hit.meta, o.ClickOffset)
		res.State = Found
		res.Threshold = hit.threshold
		res.Variant = hit.tmpl.Name
		res.Point = &p
		l.log.LogEvent("ANIM", true, elapsedMs(start),
			fmt.Sprintf("%s -> (%d,%d) via %s attempt=%d th=%.2f conf=%.3f", name, p.X, p.Y, hit.tmpl.Name, attempt, hit.threshold, hit.match.Confidence))
		return res, nil
	}

	res.State = Exhausted
	l.log.LogEvent("ANIM", false, elapsedMs(start), fmt.Sprintf("%s in %s attempts=%d", name, region, attempts))
	return res, nil
}

type animatedHit struct {
	tmpl      *template.Template
	match     *cv.RawMatch
	meta      screen.CaptureMeta
	threshold float64
}

// attempt 单次截图上的搜索
// 每个变体只匹配一次得到其最佳候选，再按阈值从高到低、变体按优先级依次比较，
// 结果与逐个阈值重新匹配相同
func (l *Locator) attempt(names []string, region auto.Region, thresholds []float64, n int) (animatedHit, bool) {
	frame, err := l.capturer.Capture(region)
	if err != nil {
		l.log.Warn("第 %d 次截图失败: %v", n, err)
		return animatedHit{}, false
	}
	defer frame.Close()

	floor := thresholds[len(thresholds)-1]
	type candidate struct {
		tmpl *template.Template
		best *cv.RawMatch
	}
	candidates := make([]candidate, 0, len(names))
	for _, name := range names {
		tmpl, err := l.templates.Get(name)
		if err != nil {
			l.log.Debug("跳过变体 %s: %v", name, err)
			continue
		}
		best, err := l.matcher.FindBest(tmpl.Mat, frame.Mat, floor)
		if err != nil {
			l.log.Debug("变体 %s 匹配失败: %v", name, err)
			continue
		}
		if best != nil {
			candidates = append(candidates, candidate{tmpl: tmpl, best: best})
		}
	}

	for _, th := range thresholds {
		for _, c := range candidates {
			if c.best.Confidence >= th {
				return animatedHit{tmpl: c.tmpl, match: c.best, meta: frame.Meta, threshold: th}, true
			}
		}
	}
	return animatedHit{}, false
}
