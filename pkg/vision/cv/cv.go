// Package cv 提供基于归一化互相关的模板匹配
//
// 匹配分两步:
//   - TemplateMatching 计算相关系数曲面，产出原始候选 RawMatch
//   - Suppress 对重叠候选做非极大值抑制，每个屏幕元素只保留一个
//
// 基本用法:
//
//	m := cv.NewTemplateMatching(true)
//	best, err := m.FindBest(tmpl, screen, 0.8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if best != nil {
//	    fmt.Printf("找到位置: (%d, %d) 置信度 %.2f\n", best.X, best.Y, best.Confidence)
//	}
//
//	all, _ := m.FindAll(tmpl, screen, 0.8)
//	hits := cv.Suppress(all, tmpl.Cols(), tmpl.Rows())
package cv
