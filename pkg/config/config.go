// Package config 管理定位器的本地配置文件
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LocatorConfig 定位器配置
type LocatorConfig struct {
	// TemplatesDir 模板图像目录
	TemplatesDir string `json:"templates_dir"`
	// Threshold 默认匹配阈值
	Threshold float64 `json:"threshold"`
	// MaxAttempts 动画搜索的最大截图次数
	MaxAttempts int `json:"max_attempts"`
	// SettleDelayMs 动画搜索两次截图之间的等待时间
	SettleDelayMs int `json:"settle_delay_ms"`
	// RelaxStep 每级阈值放宽的步长
	RelaxStep float64 `json:"relax_step"`
	// RelaxSteps 阈值放宽级数（不含初始阈值）
	RelaxSteps int `json:"relax_steps"`
	// ThresholdFloor 阈值下限
	ThresholdFloor float64 `json:"threshold_floor"`
	// VariantSuffixes UI 状态后缀，为空时使用内置列表
	VariantSuffixes []string `json:"variant_suffixes,omitempty"`
	// RGB 是否在彩色图上匹配，false 时转灰度
	RGB bool `json:"rgb"`
	// CaptureBackend 截图后端: robotgo / screenshot
	CaptureBackend string `json:"capture_backend"`
	// LogLevel 日志级别
	LogLevel string `json:"log_level"`
	// LogFile 日志文件路径，为空时只输出到控制台
	LogFile string `json:"log_file,omitempty"`
}

// DefaultLocatorConfig 默认配置
func DefaultLocatorConfig() *LocatorConfig {
	return &LocatorConfig{
		TemplatesDir:   "images",
		Threshold:      0.8,
		MaxAttempts:    5,
		SettleDelayMs:  500,
		RelaxStep:      0.05,
		RelaxSteps:     5,
		ThresholdFloor: 0.1,
		RGB:            true,
		CaptureBackend: "robotgo",
		LogLevel:       "INFO",
	}
}

// SettleDelay 返回 time.Duration 形式的等待时间
func (c *LocatorConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// Validate 校验配置
func (c *LocatorConfig) Validate() error {
	var errs []error
	if c.TemplatesDir == "" {
		errs = append(errs, errors.New("templates_dir 不能为空"))
	}
	if c.Threshold <= 0 || c.Threshold > 1 {
		errs = append(errs, fmt.Errorf("threshold 必须在 (0, 1] 内: %v", c.Threshold))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts 必须大于 0: %d", c.MaxAttempts))
	}
	if c.SettleDelayMs < 0 {
		errs = append(errs, fmt.Errorf("settle_delay_ms 不能为负: %d", c.SettleDelayMs))
	}
	if c.RelaxStep < 0 || c.RelaxSteps < 0 {
		errs = append(errs, errors.New("relax_step 和 relax_steps 不能为负"))
	}
	if c.ThresholdFloor < 0 || c.ThresholdFloor > 1 {
		errs = append(errs, fmt.Errorf("threshold_floor 必须在 [0, 1] 内: %v", c.ThresholdFloor))
	}
	switch c.CaptureBackend {
	case "", "robotgo", "screenshot":
	default:
		errs = append(errs, fmt.Errorf("不支持的截图后端: %s", c.CaptureBackend))
	}
	return errors.Join(errs...)
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器，配置位于 ~/.zoey-locator/config.json
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return NewManagerWithDir(filepath.Join(homeDir, ".zoey-locator"))
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// NewManagerWithFile 使用指定配置文件创建配置管理器
func NewManagerWithFile(configFile string) *Manager {
	return &Manager{
		configDir:  filepath.Dir(configFile),
		configFile: configFile,
	}
}

// Load 加载配置，文件不存在时返回默认配置
// 文件中缺省的字段保留默认值
func (m *Manager) Load() (*LocatorConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return DefaultLocatorConfig(), nil
	}

	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return DefaultLocatorConfig(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := DefaultLocatorConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return DefaultLocatorConfig(), fmt.Errorf("解析配置文件失败: %w", err)
	}

	return config, nil
}

// Save 保存配置
func (m *Manager) Save(config *LocatorConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("配置无效: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(m.configFile)
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// 全局配置管理器
var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}

// Load 使用默认管理器加载配置
func Load() (*LocatorConfig, error) {
	return defaultManager.Load()
}

// Save 使用默认管理器保存配置
func Save(config *LocatorConfig) error {
	return defaultManager.Save(config)
}
