package systems

import (
	"fmt"

	"github.com/decker502/keyreel/pkg/timeline"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// IssueCounter 媒体错误计数来源（game.DiagnosticsLog）
type IssueCounter interface {
	Count() int
}

// HUDSystem 左上角的帧号/状态叠加层
type HUDSystem struct {
	movie  *timeline.Movie
	issues IssueCounter
}

// NewHUDSystem 创建叠加层；issues 可以为 nil
func NewHUDSystem(m *timeline.Movie, issues IssueCounter) *HUDSystem {
	return &HUDSystem{movie: m, issues: issues}
}

// Text 返回叠加层文本
func (s *HUDSystem) Text() string {
	opts := s.movie.Options()
	mode := "lazy"
	if s.movie.IsPrecomputed() {
		mode = "eager"
	}
	line := fmt.Sprintf("frame %d/%d  %s  %.0ffps  %s", s.movie.Frame(), opts.Duration, s.movie.State(), opts.FPS, mode)
	if opts.Loop {
		line += "  loop"
	}
	if s.issues != nil {
		if n := s.issues.Count(); n > 0 {
			line += fmt.Sprintf("\nmedia errors: %d", n)
		}
	}
	return line
}

// Draw 绘制叠加层
func (s *HUDSystem) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, s.Text(), 4, 4)
}
