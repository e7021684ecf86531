package permissions

// PermissionStatus 权限状态
type PermissionStatus struct {
	ScreenRecording bool `json:"screen_recording"`
	AllGranted      bool `json:"all_granted"`
}

// Instructions 获取授权说明，权限齐全时返回空串
func Instructions(status *PermissionStatus) string {
	if status == nil || status.AllGranted {
		return ""
	}

	msg := "需要授权以下权限才能正常工作:\n\n"
	if !status.ScreenRecording {
		msg += "屏幕录制权限 (用于截屏和图像识别)\n"
		msg += "   系统设置 > 隐私与安全性 > 屏幕录制\n\n"
	}
	msg += "授权后需要重启终端才能生效。"
	return msg
}

// Ensure 确保权限已授予，未授予时返回说明
func Ensure() (bool, string) {
	status := CheckPermissions()
	if status.AllGranted {
		return true, ""
	}
	return false, Instructions(status)
}
