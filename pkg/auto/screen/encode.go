package screen

import (
	"fmt"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// SaveFrame 将截图保存为图像文件，格式由扩展名决定
// 常用于从当前屏幕裁剪出新的模板
func SaveFrame(path string, f Frame) error {
	if f.Mat.Empty() {
		return fmt.Errorf("图像为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	if ok := gocv.IMWrite(path, f.Mat); !ok {
		return fmt.Errorf("保存图像失败: %s", path)
	}
	return nil
}
