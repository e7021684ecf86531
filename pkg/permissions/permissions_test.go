package permissions

import (
	"strings"
	"testing"
)

func TestInstructions(t *testing.T) {
	if got := Instructions(&PermissionStatus{ScreenRecording: true, AllGranted: true}); got != "" {
		t.Errorf("权限齐全时应返回空串: %q", got)
	}
	if got := Instructions(nil); got != "" {
		t.Errorf("nil 状态应返回空串: %q", got)
	}

	got := Instructions(&PermissionStatus{})
	if !strings.Contains(got, "屏幕录制") {
		t.Errorf("缺少屏幕录制说明: %q", got)
	}
}

func TestEnsureConsistent(t *testing.T) {
	ok, msg := Ensure()
	if ok && msg != "" {
		t.Errorf("已授权时不应有说明: %q", msg)
	}
	if !ok && msg == "" {
		t.Error("未授权时应有说明")
	}
}
