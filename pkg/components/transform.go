package components

// TransformComponent 存储元素当前的可视属性
//
// 展示系统只覆盖插值结果中出现的属性，未出现的属性保持上一次的值。
// 初始值为原点、完全不透明、原始大小、不旋转。
type TransformComponent struct {
	X, Y float64

	// Alpha 透明度 0.0 ~ 1.0
	Alpha float64

	// ScaleX / ScaleY 缩放因子（1.0 = 原始大小）
	ScaleX float64
	ScaleY float64

	// Rotation 旋转角度（度）
	Rotation float64
}

// NewTransformComponent 返回默认变换
func NewTransformComponent() *TransformComponent {
	return &TransformComponent{Alpha: 1, ScaleX: 1, ScaleY: 1}
}
