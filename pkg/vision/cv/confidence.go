package cv

import "math"

// exactEpsilon float32 曲面上精确副本的分数可能略低于 1，差值在此范围内视为 1
const exactEpsilon = 1e-5

// clampConfidence 将 TM_CCOEFF_NORMED 的输出限制到 [0, 1]
// 负相关与浮点误差造成的越界值都归一到边界，NaN 视为 0
func clampConfidence(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1-exactEpsilon:
		return 1
	default:
		return v
	}
}
