package cv

// RawMatch 原始匹配候选
// X, Y 为模板左上角在截图缓冲内的偏移
type RawMatch struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Center 返回候选在缓冲内的中心点
func (m RawMatch) Center(w, h int) (int, int) {
	return m.X + w/2, m.Y + h/2
}
