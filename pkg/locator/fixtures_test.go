package locator

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/freetype"
	"gocv.io/x/gocv"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zoeyai/zoeylocator/internal/logger"
	"github.com/zoeyai/zoeylocator/pkg/auto"
	"github.com/zoeyai/zoeylocator/pkg/auto/screen"
	"github.com/zoeyai/zoeylocator/pkg/vision/cv"
	"github.com/zoeyai/zoeylocator/pkg/vision/template"
)

// noise 生成确定性的随机彩色图像
func noise(w, h int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.Intn(256))
		img.Pix[i+1] = uint8(rng.Intn(256))
		img.Pix[i+2] = uint8(rng.Intn(256))
		img.Pix[i+3] = 255
	}
	return img
}

// paste 把 src 贴到 dst 的 (x, y) 处
func paste(dst *image.RGBA, src image.Image, x, y int) {
	r := src.Bounds()
	draw.Draw(dst, image.Rect(x, y, x+r.Dx(), y+r.Dy()), src, r.Min, draw.Src)
}

// button 用 Go 字体渲染一个带文字的按钮
func button(t *testing.T, label string, w, h int) *image.RGBA {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 40, G: 110, B: 200, A: 255}), image.Point{}, draw.Src)

	font, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		t.Fatalf("解析字体失败: %v", err)
	}
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(font)
	c.SetFontSize(float64(h) * 0.6)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.White)
	if _, err := c.DrawString(label, freetype.Pt(w/6, h*3/4)); err != nil {
		t.Fatalf("渲染文字失败: %v", err)
	}
	return img
}

// matFromImage 经 PNG 编解码得到 BGR Mat，与模板的解码路径一致
func matFromImage(img image.Image) (gocv.Mat, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return gocv.Mat{}, err
	}
	return gocv.IMDecode(buf.Bytes(), gocv.IMReadColor)
}

func writePNG(t *testing.T, dir, name string, img image.Image) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("创建模板失败: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("写入模板失败: %v", err)
	}
}

func quietLogger() *logger.Logger {
	l := logger.New()
	l.SetConsole(io.Discard)
	return l
}

// fakeCapturer 按调用序号返回预设画面
type fakeCapturer struct {
	frame   func(call int) (image.Image, error)
	calls   int
	regions []auto.Region
}

func (c *fakeCapturer) Capture(region auto.Region) (screen.Frame, error) {
	c.calls++
	c.regions = append(c.regions, region)

	img, err := c.frame(c.calls)
	if err != nil {
		return screen.Frame{}, &screen.CaptureError{Region: region, Err: err}
	}
	mat, err := matFromImage(img)
	if err != nil {
		return screen.Frame{}, &screen.CaptureError{Region: region, Err: err}
	}
	return screen.Frame{
		Mat:  mat,
		Meta: screen.CaptureMeta{ScaleX: 1, ScaleY: 1, OffsetX: region.X, OffsetY: region.Y},
	}, nil
}

func staticCapturer(img image.Image) *fakeCapturer {
	return &fakeCapturer{frame: func(int) (image.Image, error) { return img, nil }}
}

// fakeMatcher 以模板宽度区分模板，返回预设的候选
type fakeMatcher struct {
	byWidth map[int]cv.RawMatch
	calls   int
}

func (f *fakeMatcher) FindBest(search, source gocv.Mat, threshold float64) (*cv.RawMatch, error) {
	f.calls++
	m, ok := f.byWidth[search.Cols()]
	if !ok || m.Confidence < threshold {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeMatcher) FindAll(search, source gocv.Mat, threshold float64) ([]cv.RawMatch, error) {
	m, err := f.FindBest(search, source, threshold)
	if m == nil || err != nil {
		return nil, err
	}
	return []cv.RawMatch{*m}, nil
}

type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) Sleep(d time.Duration) {
	s.slept = append(s.slept, d)
}

// newTestLocator 创建使用临时模板目录的定位器
func newTestLocator(t *testing.T, capturer screen.Capturer, opts ...LocatorOption) (*Locator, string, *sleepRecorder) {
	t.Helper()
	dir := t.TempDir()
	store := template.NewStore(dir)
	t.Cleanup(store.Reset)

	sleeper := &sleepRecorder{}
	base := []LocatorOption{WithLogger(quietLogger()), WithSleeper(sleeper)}
	return New(store, capturer, append(base, opts...)...), dir, sleeper
}
