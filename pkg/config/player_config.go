package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 播放器默认参数
const (
	DefaultReferenceTPS   = 60
	DefaultDriftTolerance = 500 * time.Millisecond
	DefaultWindowScale    = 1.0
	DefaultPreloadWorkers = 4
)

// PlayerConfig 播放器配置文件的顶层结构
//
// 配置文件示例:
//
//	player:
//	  reference_tps: 60
//	  drift_tolerance: 500ms
//	  precompute: false
//	  asset_root: assets
//	  window_scale: 1.0
//	  preload_workers: 4
type PlayerConfig struct {
	Player PlayerSection `yaml:"player"`
}

// PlayerSection 播放参数
type PlayerSection struct {
	// ReferenceTPS 宿主每秒调用 Tick 的次数；一个 tick 的 dt 为 1.0
	ReferenceTPS int `yaml:"reference_tps"`

	// DriftTolerance 音频漂移阈值，超过时重新定位
	DriftTolerance time.Duration `yaml:"drift_tolerance"`

	// Precompute 加载后立即展开稠密表（预计算模式）
	Precompute bool `yaml:"precompute"`

	// AssetRoot 资源相对路径的根目录；为空时使用影片文件所在目录
	AssetRoot string `yaml:"asset_root"`

	// WindowScale 窗口相对影片尺寸的缩放
	WindowScale float64 `yaml:"window_scale"`

	// PreloadWorkers 并发解码图片的协程数
	PreloadWorkers int `yaml:"preload_workers"`
}

// DefaultPlayerConfig 返回默认配置
func DefaultPlayerConfig() *PlayerConfig {
	return &PlayerConfig{
		Player: PlayerSection{
			ReferenceTPS:   DefaultReferenceTPS,
			DriftTolerance: DefaultDriftTolerance,
			WindowScale:    DefaultWindowScale,
			PreloadWorkers: DefaultPreloadWorkers,
		},
	}
}

// LoadPlayerConfig 加载播放器配置
//
// 参数:
//   - path: 配置文件路径；为空时返回默认配置
//
// 返回:
//   - *PlayerConfig: 缺失字段使用默认值
//   - error: 读取、解析或验证失败
func LoadPlayerConfig(path string) (*PlayerConfig, error) {
	if path == "" {
		return DefaultPlayerConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read player config: %w", err)
	}
	return ParsePlayerConfig(data)
}

// ParsePlayerConfig 从 YAML 数据解析配置
func ParsePlayerConfig(data []byte) (*PlayerConfig, error) {
	config := DefaultPlayerConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse player config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid player config: %w", err)
	}
	return config, nil
}

// Validate 验证配置有效性
func (c *PlayerConfig) Validate() error {
	p := c.Player
	if p.ReferenceTPS <= 0 {
		return fmt.Errorf("reference_tps must be positive, got %d", p.ReferenceTPS)
	}
	if p.DriftTolerance < 0 {
		return fmt.Errorf("drift_tolerance must not be negative, got %v", p.DriftTolerance)
	}
	if p.WindowScale <= 0 {
		return fmt.Errorf("window_scale must be positive, got %.2f", p.WindowScale)
	}
	if p.PreloadWorkers <= 0 {
		return fmt.Errorf("preload_workers must be positive, got %d", p.PreloadWorkers)
	}
	return nil
}
