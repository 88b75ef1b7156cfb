package components

import "github.com/decker502/keyreel/internal/movie"

// ElementComponent 把 ECS 实体与影片元素关联起来
type ElementComponent struct {
	// ElementID 影片中的元素 ID
	ElementID string
	// Kind 元素类型（image/text/audio）
	Kind movie.Kind
	// Frame 最近一次展示的帧号，-1 表示尚未展示
	Frame int
}
