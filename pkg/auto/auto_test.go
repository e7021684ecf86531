package auto

import (
	"testing"
)

func TestRegionFromBounds(t *testing.T) {
	r := RegionFromBounds(100, 50, 400, 250)
	if r != (Region{X: 100, Y: 50, Width: 300, Height: 200}) {
		t.Fatalf("RegionFromBounds = %v", r)
	}
	if r.Right() != 400 || r.Bottom() != 250 {
		t.Errorf("Right/Bottom = %d/%d", r.Right(), r.Bottom())
	}
	if r.String() != "(100,50 300x200)" {
		t.Errorf("String = %s", r.String())
	}
}

func TestRegionValid(t *testing.T) {
	tests := []struct {
		r    Region
		want bool
	}{
		{Region{Width: 1, Height: 1}, true},
		{Region{X: -50, Y: -50, Width: 10, Height: 10}, true},
		{Region{Width: 0, Height: 10}, false},
		{Region{Width: 10, Height: -1}, false},
		{RegionFromBounds(10, 10, 5, 20), false},
	}
	for _, tt := range tests {
		if got := tt.r.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.r, got, tt.want)
		}
	}
}

func TestRegionContains(t *testing.T) {
	screen := Region{Width: 1920, Height: 1080}

	tests := []struct {
		r    Region
		want bool
	}{
		{Region{Width: 1920, Height: 1080}, true},
		{Region{X: 100, Y: 100, Width: 50, Height: 50}, true},
		{Region{X: 1900, Y: 0, Width: 50, Height: 50}, false},
		{Region{X: -1, Y: 0, Width: 10, Height: 10}, false},
		{Region{X: 0, Y: 1070, Width: 10, Height: 11}, false},
	}
	for _, tt := range tests {
		if got := screen.Contains(tt.r); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.r, got, tt.want)
		}
	}
}

func TestRegionRelative(t *testing.T) {
	r := Region{X: 200, Y: 300, Width: 100, Height: 100}
	if got := r.Relative(Point{X: 250, Y: 310}); got != (Point{X: 50, Y: 10}) {
		t.Errorf("Relative = %v", got)
	}
	if got := (Point{X: 1, Y: 2}).Add(-3, 4); got != (Point{X: -2, Y: 6}) {
		t.Errorf("Add = %v", got)
	}
}

func TestScaleCoord(t *testing.T) {
	tests := []struct {
		value int
		scale float64
		want  int
	}{
		{100, 1, 100},
		{100, 2, 50},
		{101, 2, 51},
		{150, 1.5, 100},
		{100, 0, 100},
		{100, -1, 100},
	}
	for _, tt := range tests {
		if got := ScaleCoord(tt.value, tt.scale); got != tt.want {
			t.Errorf("ScaleCoord(%d, %v) = %d, want %d", tt.value, tt.scale, got, tt.want)
		}
	}

	if got := ScaleInt(100, 1.25); got != 125 {
		t.Errorf("ScaleInt = %d", got)
	}
}

func TestApplyOptions(t *testing.T) {
	o := ApplyOptions()
	if o.Threshold != DefaultThreshold || o.MaxAttempts != DefaultMaxAttempts || o.ClickOffset != (Point{}) {
		t.Errorf("默认选项错误: %+v", o)
	}

	o = ApplyOptions(WithThreshold(0.7), WithClickOffset(3, -4), WithMaxAttempts(9), WithThreshold(0.75))
	if o.Threshold != 0.75 {
		t.Errorf("后面的选项应覆盖前面的: %v", o.Threshold)
	}
	if o.ClickOffset != (Point{X: 3, Y: -4}) || o.MaxAttempts != 9 {
		t.Errorf("选项未生效: %+v", o)
	}
}

func TestNormalizeRegionForInput(t *testing.T) {
	r := Region{X: 10, Y: 20, Width: 30, Height: 40}
	got := NormalizeRegionForInput(r)
	if !got.Valid() {
		t.Errorf("归一化后的区域应有效: %v", got)
	}
	if GetDPIScale() == 1 && got != r {
		t.Errorf("缩放为 1 时应保持不变: %v", got)
	}
}
