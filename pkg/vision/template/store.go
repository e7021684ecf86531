// Package template 提供模板图像的加载与缓存
//
// 模板文件视为静态资源：每个名称在 Store 生命周期内最多加载一次，
// 没有过期和淘汰，只能通过 Reset 整体清空。
package template

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/corona10/goimagehash"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/zoeyai/zoeylocator/pkg/vision/cv"
)

var (
	// ErrTemplateNotFound 模板文件不存在
	ErrTemplateNotFound = errors.New("模板不存在")
	// ErrTemplateDecode 模板文件存在但无法解码为图像
	ErrTemplateDecode = errors.New("模板无法解码")
)

// TemplateError 模板加载错误
type TemplateError struct {
	Name string
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("%v: %s (%s)", e.Err, e.Name, e.Path)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// Template 已加载的模板，加载后不可修改
// Mat 归 Store 所有，调用方只读使用，不要 Close
type Template struct {
	Name     string
	Path     string
	Mat      gocv.Mat
	Width    int
	Height   int
	Channels int
}

// Info 模板信息
type Info struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels int    `json:"channels"`
	// Hash 感知哈希，可用于比较两个模板是否视觉相近
	Hash string `json:"hash"`
}

// Store 模板缓存
type Store struct {
	dir   string
	mu    sync.Mutex
	cache map[string]*Template
}

// NewStore 创建以 dir 为模板目录的缓存
func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: make(map[string]*Template),
	}
}

// Get 按文件名获取模板，首次访问时从磁盘加载并缓存
func (s *Store) Get(name string) (*Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.cache[name]; ok {
		return t, nil
	}

	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	t, err := load(name, path)
	if err != nil {
		return nil, err
	}

	s.cache[name] = t
	return t, nil
}

// Info 返回模板的尺寸、通道数和感知哈希
func (s *Store) Info(name string) (*Info, error) {
	t, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	img, err := t.Mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("模板转换失败: %w", err)
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("计算模板哈希失败: %w", err)
	}

	return &Info{
		Name:     t.Name,
		Path:     t.Path,
		Width:    t.Width,
		Height:   t.Height,
		Channels: t.Channels,
		Hash:     hash.ToString(),
	}, nil
}

// Len 返回已缓存的模板数量
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

// Reset 清空缓存并释放所有模板，仅用于测试隔离或进程退出
// Reset 之后此前返回的 *Template 不可再使用
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, t := range s.cache {
		t.Mat.Close()
		delete(s.cache, name)
	}
}

// resolve 将模板名解析为模板目录内的路径，不允许跳出目录
func (s *Store) resolve(name string) (string, error) {
	path := filepath.Join(s.dir, name)
	rel, err := filepath.Rel(s.dir, path)
	if name == "" || err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &TemplateError{Name: name, Path: path, Err: ErrTemplateNotFound}
	}
	return path, nil
}

func load(name, path string) (*Template, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, &TemplateError{Name: name, Path: path, Err: ErrTemplateNotFound}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TemplateError{Name: name, Path: path, Err: fmt.Errorf("%w: %v", ErrTemplateNotFound, err)}
	}

	mat, err := decode(data)
	if err != nil {
		return nil, &TemplateError{Name: name, Path: path, Err: fmt.Errorf("%w: %v", ErrTemplateDecode, err)}
	}

	return &Template{
		Name:     name,
		Path:     path,
		Mat:      mat,
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
	}, nil
}

// decode 优先使用 OpenCV 解码，失败时回退到 Go 图像解码器
// （部分 OpenCV 构建不带 webp/tiff 支持）
func decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.Mat{}, errors.New("文件为空")
	}

	if mat, err := gocv.IMDecode(data, gocv.IMReadColor); err == nil {
		if !mat.Empty() {
			bgr := cv.ToBGR(mat)
			mat.Close()
			return bgr, nil
		}
		mat.Close()
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return gocv.Mat{}, err
	}
	if img.Bounds().Empty() {
		return gocv.Mat{}, errors.New("图像尺寸为 0")
	}
	return cv.ImageToMat(img)
}
