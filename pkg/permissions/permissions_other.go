//go:build !darwin

package permissions

// CheckPermissions 非 macOS 系统截屏不需要额外授权
func CheckPermissions() *PermissionStatus {
	return &PermissionStatus{
		ScreenRecording: true,
		AllGranted:      true,
	}
}

// OpenScreenRecordingSettings 非 macOS 系统无对应设置页
func OpenScreenRecordingSettings() {}
