package cv

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrEmptyImage 模板或源图像为空
var ErrEmptyImage = errors.New("图像为空")

// TemplateMatching 模板匹配器
// 使用 TM_CCOEFF_NORMED 计算每个左上角位置的置信度
type TemplateMatching struct {
	// RGB 为 true 时直接在 BGR 三通道上匹配，否则先转灰度
	RGB bool
}

// NewTemplateMatching 创建模板匹配器
func NewTemplateMatching(rgb bool) *TemplateMatching {
	return &TemplateMatching{RGB: rgb}
}

// FindBest 返回置信度最高且不低于 threshold 的候选
// 分数相同时按行优先扫描顺序取第一个；无候选时返回 nil, nil
func (t *TemplateMatching) FindBest(search, source gocv.Mat, threshold float64) (*RawMatch, error) {
	result, err := t.match(search, source)
	if err != nil || result == nil {
		return nil, err
	}
	defer result.Close()

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(*result)
	confidence := clampConfidence(float64(maxVal))
	if confidence < threshold {
		return nil, nil
	}
	if confidence == 1 {
		// 多个精确副本都归一为 1，取行优先的第一个，与 FindAll + Suppress 一致
		maxLoc = firstExact(*result)
	}
	return &RawMatch{X: maxLoc.X, Y: maxLoc.Y, Confidence: confidence}, nil
}

// firstExact 行优先查找第一个归一为 1 的位置
func firstExact(result gocv.Mat) image.Point {
	for y := 0; y < result.Rows(); y++ {
		for x := 0; x < result.Cols(); x++ {
			if clampConfidence(float64(result.GetFloatAt(y, x))) == 1 {
				return image.Point{X: x, Y: y}
			}
		}
	}
	return image.Point{}
}

// FindAll 返回所有置信度不低于 threshold 的位置，按行优先顺序排列
// 结果未去重，重叠候选交给 Suppress 处理
func (t *TemplateMatching) FindAll(search, source gocv.Mat, threshold float64) ([]RawMatch, error) {
	surface, cols, err := t.surface(search, source)
	if err != nil || surface == nil {
		return nil, err
	}

	var matches []RawMatch
	for i, v := range surface {
		c := clampConfidence(float64(v))
		if c >= threshold {
			matches = append(matches, RawMatch{X: i % cols, Y: i / cols, Confidence: c})
		}
	}
	return matches, nil
}

// surface 计算相关系数曲面，返回行优先的分数切片和列数
// 模板大于源图像时返回 nil，不视为错误
func (t *TemplateMatching) surface(search, source gocv.Mat) ([]float32, int, error) {
	result, err := t.match(search, source)
	if err != nil || result == nil {
		return nil, 0, err
	}
	defer result.Close()

	data, err := result.DataPtrFloat32()
	if err != nil {
		return nil, 0, fmt.Errorf("读取匹配结果失败: %w", err)
	}

	// result 在 defer 中释放，这里复制一份
	out := make([]float32, len(data))
	copy(out, data)
	return out, result.Cols(), nil
}

// match 运行 MatchTemplate，返回的结果矩阵由调用方释放
// 模板大于源图像时返回 nil, nil
func (t *TemplateMatching) match(search, source gocv.Mat) (*gocv.Mat, error) {
	if search.Empty() || source.Empty() {
		return nil, ErrEmptyImage
	}
	if search.Rows() > source.Rows() || search.Cols() > source.Cols() {
		return nil, nil
	}

	src, tmpl := t.prepare(source, search)
	defer src.Close()
	defer tmpl.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	result := gocv.NewMat()
	gocv.MatchTemplate(src, tmpl, &result, gocv.TmCcoeffNormed, mask)
	return &result, nil
}

// prepare 统一两张图的通道布局
func (t *TemplateMatching) prepare(source, search gocv.Mat) (gocv.Mat, gocv.Mat) {
	if t.RGB && source.Channels() == search.Channels() {
		return source.Clone(), search.Clone()
	}
	return ToGray(source), ToGray(search)
}
