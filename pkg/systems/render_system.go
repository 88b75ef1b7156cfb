package systems

import (
	"math"

	"github.com/decker502/keyreel/pkg/components"
	"github.com/decker502/keyreel/pkg/ecs"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// RenderSystem 绘制图片和文本元素
//
// 绘制顺序即元素在影片文件中的顺序（后绘制的在上层）。
// 变换以元素左上角为原点：先缩放，再旋转，最后平移到 (x, y)。
type RenderSystem struct {
	entityManager *ecs.EntityManager
}

// NewRenderSystem 创建渲染系统
func NewRenderSystem(em *ecs.EntityManager) *RenderSystem {
	return &RenderSystem{entityManager: em}
}

// Visible 返回本帧需要绘制的实体（已展示过且不透明度大于 0）
func (s *RenderSystem) Visible() []ecs.EntityID {
	entities := ecs.GetEntitiesWith2[*components.ElementComponent, *components.TransformComponent](s.entityManager)

	visible := entities[:0]
	for _, id := range entities {
		el, _ := ecs.GetComponent[*components.ElementComponent](s.entityManager, id)
		tf, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		if el.Frame < 0 || tf.Alpha <= 0 {
			continue
		}
		visible = append(visible, id)
	}
	return visible
}

// Draw 绘制所有可见元素
func (s *RenderSystem) Draw(screen *ebiten.Image) {
	for _, id := range s.Visible() {
		tf, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		alpha := float32(math.Min(tf.Alpha, 1))

		if sprite, ok := ecs.GetComponent[*components.SpriteComponent](s.entityManager, id); ok && sprite.Image != nil {
			op := &ebiten.DrawImageOptions{}
			op.GeoM = ElementGeoM(tf)
			op.ColorScale.ScaleAlpha(alpha)
			op.Filter = ebiten.FilterLinear
			screen.DrawImage(sprite.Image, op)
		}

		if txt, ok := ecs.GetComponent[*components.TextComponent](s.entityManager, id); ok && txt.Face != nil {
			op := &text.DrawOptions{}
			op.GeoM = ElementGeoM(tf)
			if txt.Color != nil {
				op.ColorScale.ScaleWithColor(txt.Color)
			}
			op.ColorScale.ScaleAlpha(alpha)
			text.Draw(screen, txt.Content, txt.Face, op)
		}
	}
}

// ElementGeoM 由变换组件构造几何矩阵
func ElementGeoM(tf *components.TransformComponent) ebiten.GeoM {
	var g ebiten.GeoM
	g.Scale(tf.ScaleX, tf.ScaleY)
	if tf.Rotation != 0 {
		g.Rotate(tf.Rotation * math.Pi / 180)
	}
	g.Translate(tf.X, tf.Y)
	return g
}
