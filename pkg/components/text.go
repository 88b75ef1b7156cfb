package components

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// TextComponent 文本元素的绘制数据
type TextComponent struct {
	Content string
	Face    text.Face
	Color   color.Color
}
