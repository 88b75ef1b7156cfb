package components

import "github.com/hajimehoshi/ebiten/v2"

// SpriteComponent 存储图片元素当前绘制的图像
// Image 为 nil 时（资源缺失）渲染系统跳过该实体
type SpriteComponent struct {
	Source string
	Image  *ebiten.Image
}
