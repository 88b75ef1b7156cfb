package components

import (
	"github.com/decker502/keyreel/pkg/timeline"
	"github.com/hajimehoshi/ebiten/v2/audio"
)

// AudioComponent 音频元素持有的调度窗口和播放器
// 资源加载失败或元素 ID 重复时 Player 为 nil
type AudioComponent struct {
	Source string
	Window *timeline.AudioWindow
	Player *audio.Player
}
