package cv

import (
	"math"
	"sort"
)

// Suppress 非极大值抑制
//
// 按置信度降序（稳定排序，同分保持扫描顺序）贪心遍历，
// 与任一已接受候选的中心距离小于 0.5*min(w, h) 的候选视为重复检测并丢弃。
// 同一模板的候选尺寸相同，中心距离等于左上角距离。
func Suppress(matches []RawMatch, w, h int) []RawMatch {
	if len(matches) == 0 {
		return nil
	}

	sorted := make([]RawMatch, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	minDistance := 0.5 * float64(min(w, h))
	accepted := make([]RawMatch, 0, 4)

	for _, m := range sorted {
		duplicate := false
		for _, a := range accepted {
			if math.Hypot(float64(m.X-a.X), float64(m.Y-a.Y)) < minDistance {
				duplicate = true
				break
			}
		}
		if !duplicate {
			accepted = append(accepted, m)
		}
	}
	return accepted
}
