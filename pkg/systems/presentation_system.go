package systems

import (
	"log"

	"github.com/decker502/keyreel/internal/movie"
	"github.com/decker502/keyreel/pkg/components"
	"github.com/decker502/keyreel/pkg/ecs"
	"github.com/decker502/keyreel/pkg/timeline"
)

// PresentationSystem 把插值结果写到元素实体上
// 实现 timeline.Presenter；元素 ID -> 实体 的映射由 EntityManager 的名称索引维护
//
// 职责：
//   - 影片加载时为每个元素创建实体（Register）
//   - 每次展示时只覆盖结果中出现的可视属性，缺失的属性保持原值
type PresentationSystem struct {
	entityManager *ecs.EntityManager
	warned        map[string]bool // 已警告过的未知元素
}

var _ timeline.Presenter = (*PresentationSystem)(nil)

// NewPresentationSystem 创建展示系统
func NewPresentationSystem(em *ecs.EntityManager) *PresentationSystem {
	return &PresentationSystem{
		entityManager: em,
		warned:        make(map[string]bool),
	}
}

// Register 为元素创建实体并返回实体 ID，以及该 ID 是否首次出现
// 非音频元素带默认变换；重复 ID 的元素仍创建实体，但不会被展示
func (s *PresentationSystem) Register(elementID string, kind movie.Kind) (ecs.EntityID, bool) {
	id, unique := s.entityManager.CreateNamedEntity(elementID)
	if !unique {
		log.Printf("[PresentationSystem] Warning: duplicate element id '%s', only the first is presented", elementID)
	}

	ecs.AddComponent(s.entityManager, id, &components.ElementComponent{
		ElementID: elementID,
		Kind:      kind,
		Frame:     -1,
	})
	if kind != movie.KindAudio {
		ecs.AddComponent(s.entityManager, id, components.NewTransformComponent())
	}
	return id, unique
}

// ApplyState 实现 timeline.Presenter
func (s *PresentationSystem) ApplyState(elementID string, kind movie.Kind, state timeline.FrameState) {
	id, ok := s.entityManager.Lookup(elementID)
	if !ok {
		if !s.warned[elementID] {
			log.Printf("[PresentationSystem] Warning: no entity for element '%s'", elementID)
			s.warned[elementID] = true
		}
		return
	}

	el, ok := ecs.GetComponent[*components.ElementComponent](s.entityManager, id)
	if !ok {
		return
	}
	el.Frame = state.Frame

	tf, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
	if !ok {
		return
	}
	ApplyTransform(tf, state.Props)
}

// ApplyTransform 把出现的 x/y/alpha/scaleX/scaleY/rotation 写入变换
func ApplyTransform(tf *components.TransformComponent, props movie.Props) {
	if props.X != nil {
		tf.X = *props.X
	}
	if props.Y != nil {
		tf.Y = *props.Y
	}
	if props.Alpha != nil {
		tf.Alpha = *props.Alpha
	}
	if props.ScaleX != nil {
		tf.ScaleX = *props.ScaleX
	}
	if props.ScaleY != nil {
		tf.ScaleY = *props.ScaleY
	}
	if props.Rotation != nil {
		tf.Rotation = *props.Rotation
	}
}
