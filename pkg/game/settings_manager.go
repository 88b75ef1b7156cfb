package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// PlayerSettings 播放器全局设置
// 与具体影片无关，所有影片共用
type PlayerSettings struct {
	// 音频设置
	Volume float64 `yaml:"volume"` // 音量 0.0 ~ 1.0
	Muted  bool    `yaml:"muted"`  // 静音

	// 显示设置
	ShowHUD    bool `yaml:"showHUD"`    // 显示帧号/状态叠加层
	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏
}

// DefaultSettings 返回默认设置
func DefaultSettings() *PlayerSettings {
	return &PlayerSettings{
		Volume:     0.8,
		Muted:      false,
		ShowHUD:    true,
		Fullscreen: false,
	}
}

// VolumeSetter 可调音量的播放器（*audio.Player 满足该接口）
type VolumeSetter interface {
	SetVolume(volume float64)
}

// SettingsManager 设置管理器
// 负责播放器设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager  // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *PlayerSettings // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "player"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 保留给调用方；加载失败只记录日志并使用默认设置
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 从默认值开始反序列化，缺失字段保持默认
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.Volume = clampVolume(loaded.Volume)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *PlayerSettings {
	return sm.settings
}

// SetVolume 设置音量，限制在 0.0 ~ 1.0
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetVolume(volume float64) {
	sm.settings.Volume = clampVolume(volume)
}

// SetMuted 设置静音
func (sm *SettingsManager) SetMuted(muted bool) {
	sm.settings.Muted = muted
}

// ToggleMuted 切换静音，返回新状态
func (sm *SettingsManager) ToggleMuted() bool {
	sm.settings.Muted = !sm.settings.Muted
	return sm.settings.Muted
}

// SetShowHUD 设置是否显示叠加层
func (sm *SettingsManager) SetShowHUD(show bool) {
	sm.settings.ShowHUD = show
}

// ToggleHUD 切换叠加层，返回新状态
func (sm *SettingsManager) ToggleHUD() bool {
	sm.settings.ShowHUD = !sm.settings.ShowHUD
	return sm.settings.ShowHUD
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// EffectiveVolume 静音时为 0，否则为设置的音量
func (sm *SettingsManager) EffectiveVolume() float64 {
	if sm.settings.Muted {
		return 0
	}
	return sm.settings.Volume
}

// ApplyVolume 把当前有效音量应用到播放器
func (sm *SettingsManager) ApplyVolume(players ...VolumeSetter) {
	volume := sm.EffectiveVolume()
	for _, p := range players {
		if p != nil {
			p.SetVolume(volume)
		}
	}
}

// clampVolume 将音量值限制在 0.0 ~ 1.0 范围内
func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}
