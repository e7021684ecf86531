package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefaultLocatorConfig(t *testing.T) {
	config := DefaultLocatorConfig()

	if err := config.Validate(); err != nil {
		t.Fatalf("默认配置应合法: %v", err)
	}
	if config.Threshold != 0.8 || config.MaxAttempts != 5 {
		t.Errorf("默认阈值/次数错误: %+v", config)
	}
	if config.SettleDelay() != 500*time.Millisecond {
		t.Errorf("默认等待时间错误: %v", config.SettleDelay())
	}
	if !config.RGB {
		t.Error("默认应在彩色图上匹配")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *LocatorConfig)
		field  string
	}{
		{"empty dir", func(c *LocatorConfig) { c.TemplatesDir = "" }, "templates_dir"},
		{"zero threshold", func(c *LocatorConfig) { c.Threshold = 0 }, "threshold"},
		{"threshold above one", func(c *LocatorConfig) { c.Threshold = 1.2 }, "threshold"},
		{"no attempts", func(c *LocatorConfig) { c.MaxAttempts = 0 }, "max_attempts"},
		{"negative delay", func(c *LocatorConfig) { c.SettleDelayMs = -1 }, "settle_delay_ms"},
		{"negative relax", func(c *LocatorConfig) { c.RelaxSteps = -2 }, "relax_steps"},
		{"bad floor", func(c *LocatorConfig) { c.ThresholdFloor = 2 }, "threshold_floor"},
		{"unknown backend", func(c *LocatorConfig) { c.CaptureBackend = "x11" }, "x11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultLocatorConfig()
			tt.mutate(config)
			err := config.Validate()
			if err == nil {
				t.Fatal("应返回错误")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("错误信息应提及 %s: %v", tt.field, err)
			}
		})
	}

	// 多个问题一起报告
	config := DefaultLocatorConfig()
	config.TemplatesDir = ""
	config.MaxAttempts = 0
	err := config.Validate()
	if err == nil || !strings.Contains(err.Error(), "templates_dir") || !strings.Contains(err.Error(), "max_attempts") {
		t.Errorf("应同时报告所有问题: %v", err)
	}
}

func TestManagerSaveLoad(t *testing.T) {
	manager := NewManagerWithDir(filepath.Join(t.TempDir(), "nested"))

	if manager.Exists() {
		t.Fatal("初始不应存在配置文件")
	}

	config := DefaultLocatorConfig()
	config.TemplatesDir = "/opt/templates"
	config.Threshold = 0.9
	config.VariantSuffixes = []string{"-on", "-off"}
	config.CaptureBackend = "screenshot"
	config.RGB = false

	if err := manager.Save(config); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}
	if !manager.Exists() {
		t.Fatal("保存后配置文件应存在")
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if !reflect.DeepEqual(loaded, config) {
		t.Errorf("加载结果不一致:\n got %+v\nwant %+v", loaded, config)
	}

	if err := manager.Clear(); err != nil {
		t.Fatalf("清除配置失败: %v", err)
	}
	if manager.Exists() {
		t.Error("清除后配置文件不应存在")
	}
	// 重复清除不报错
	if err := manager.Clear(); err != nil {
		t.Errorf("重复清除不应报错: %v", err)
	}
}

func TestManagerSaveRejectsInvalid(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	config := DefaultLocatorConfig()
	config.Threshold = -1
	if err := manager.Save(config); err == nil {
		t.Fatal("非法配置不应被保存")
	}
	if manager.Exists() {
		t.Error("保存失败时不应写入文件")
	}
}

func TestManagerLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locator.json")
	if err := os.WriteFile(path, []byte(`{"threshold": 0.7, "max_attempts": 3}`), 0644); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	manager := NewManagerWithFile(path)
	config, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if config.Threshold != 0.7 || config.MaxAttempts != 3 {
		t.Errorf("文件中的字段未生效: %+v", config)
	}
	// 缺省字段保留默认值
	if config.TemplatesDir != "images" || config.RelaxStep != 0.05 || !config.RGB {
		t.Errorf("缺省字段应保留默认值: %+v", config)
	}
}

func TestManagerLoadNonExistent(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	config, err := manager.Load()
	if err != nil {
		t.Fatalf("加载不存在的配置不应报错: %v", err)
	}
	if !reflect.DeepEqual(config, DefaultLocatorConfig()) {
		t.Errorf("应返回默认配置: %+v", config)
	}
}

func TestManagerLoadCorruptedFile(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	if err := os.WriteFile(filepath.Join(tempDir, "config.json"), []byte("not valid json"), 0644); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	config, err := manager.Load()
	if err == nil {
		t.Error("加载损坏的配置应返回错误")
	}
	if config == nil {
		t.Error("即使出错也应返回默认配置")
	}
}

func TestDefaultManager(t *testing.T) {
	manager := GetDefaultManager()
	if manager == nil {
		t.Fatal("GetDefaultManager 返回 nil")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skip("无法获取用户目录")
	}
	want := filepath.Join(homeDir, ".zoey-locator", "config.json")
	if manager.GetConfigFile() != want {
		t.Errorf("默认配置文件应为 %s, 实际为 %s", want, manager.GetConfigFile())
	}
}
