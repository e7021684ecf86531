package cv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ToGray 转换为灰度图
func ToGray(src gocv.Mat) gocv.Mat {
	if src.Channels() == 1 {
		return src.Clone()
	}
	dst := gocv.NewMat()
	code := gocv.ColorBGRToGray
	if src.Channels() == 4 {
		code = gocv.ColorBGRAToGray
	}
	gocv.CvtColor(src, &dst, code)
	return dst
}

// ToBGR 将任意通道数的图像统一为 3 通道 BGR
// 总是返回新的 Mat，调用方负责释放
func ToBGR(src gocv.Mat) gocv.Mat {
	switch src.Channels() {
	case 1:
		dst := gocv.NewMat()
		gocv.CvtColor(src, &dst, gocv.ColorGrayToBGR)
		return dst
	case 4:
		dst := gocv.NewMat()
		gocv.CvtColor(src, &dst, gocv.ColorBGRAToBGR)
		return dst
	default:
		return src.Clone()
	}
}

// ImageToMat 将 image.Image 转换为 3 通道 gocv.Mat
// 与截图路径使用同一转换，保证模板与截图的通道顺序一致
func ImageToMat(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("图像转换失败: %w", err)
	}
	return mat, nil
}
