// Package variant 为具有多种视觉状态的 UI 元素生成候选模板名
//
// 例如按钮可能处于 normal/focused/hover/pressed 等状态，每种状态对应一张模板图：
//
//	variant.For("ok-btn-normal.png")
//	// [ok-btn-normal.png ok-btn-focused.png ok-btn-hover.png ... ok-btn.png]
package variant

import (
	"path/filepath"
	"strings"
)

// DefaultSuffixes 已知的 UI 状态后缀，顺序即优先级
var DefaultSuffixes = []string{
	"-normal",
	"-focused",
	"-hover",
	"-pressed",
	"-active",
	"-disabled",
	"-selected",
	"-highlighted",
}

// Resolver 状态后缀解析器
type Resolver struct {
	Suffixes []string
}

// New 创建解析器，未指定后缀时使用 DefaultSuffixes
func New(suffixes ...string) *Resolver {
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	return &Resolver{Suffixes: suffixes}
}

var defaultResolver = New()

// For 使用默认后缀生成候选名
func For(name string) []string {
	return defaultResolver.For(name)
}

// For 生成 name 的所有状态变体
//
// name 本身总是排在第一位，结果不含重复项。
//   - name 的主干以已知后缀结尾: 依次输出其他后缀的变体，最后输出去掉后缀的裸名
//   - 否则: 依次输出主干加上每个后缀的变体
func (r *Resolver) For(name string) []string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	out := []string{name}
	seen := map[string]bool{name: true}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	if root, suffix := r.split(stem); suffix != "" {
		for _, other := range r.Suffixes {
			if other != suffix {
				add(root + other + ext)
			}
		}
		add(root + ext)
		return out
	}

	for _, suffix := range r.Suffixes {
		add(stem + suffix + ext)
	}
	return out
}

// split 拆出主干末尾最长的已知后缀，后缀之前必须还有内容
func (r *Resolver) split(stem string) (root, suffix string) {
	for _, s := range r.Suffixes {
		if s == "" || len(s) <= len(suffix) {
			continue
		}
		if strings.HasSuffix(stem, s) && len(stem) > len(s) {
			suffix = s
		}
	}
	return strings.TrimSuffix(stem, suffix), suffix
}
