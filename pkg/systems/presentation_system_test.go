package systems

import (
	"math"
	"testing"

	"github.com/decker502/keyreel/internal/movie"
	"github.com/decker502/keyreel/pkg/components"
	"github.com/decker502/keyreel/pkg/ecs"
	"github.com/decker502/keyreel/pkg/timeline"
)

func props(kv map[string]float64) movie.Props {
	var p movie.Props
	for k, v := range kv {
		p.Set(k, movie.Number(v))
	}
	return p
}

// TestPresentationSystem_PartialState 只覆盖出现的属性
func TestPresentationSystem_PartialState(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewPresentationSystem(em)
	id, _ := ps.Register("logo", movie.KindImage)

	ps.ApplyState("logo", movie.KindImage, timeline.FrameState{Frame: 3, Props: props(map[string]float64{"x": 10, "rotation": 45})})
	ps.ApplyState("logo", movie.KindImage, timeline.FrameState{Frame: 4, Props: props(map[string]float64{"alpha": 0.25})})

	tf, ok := ecs.GetComponent[*components.TransformComponent](em, id)
	if !ok {
		t.Fatal("Expected transform on image entity")
	}
	if tf.X != 10 || tf.Rotation != 45 {
		t.Errorf("Expected x/rotation kept from the first state, got %+v", tf)
	}
	if tf.Alpha != 0.25 {
		t.Errorf("Expected alpha=0.25, got %v", tf.Alpha)
	}
	if tf.ScaleX != 1 || tf.ScaleY != 1 || tf.Y != 0 {
		t.Errorf("Expected untouched defaults, got %+v", tf)
	}

	el, _ := ecs.GetComponent[*components.ElementComponent](em, id)
	if el.Frame != 4 {
		t.Errorf("Expected last presented frame 4, got %d", el.Frame)
	}
}

// TestPresentationSystem_Register 音频元素没有变换，重复 ID 只展示第一个
func TestPresentationSystem_Register(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewPresentationSystem(em)

	music, unique := ps.Register("music", movie.KindAudio)
	if !unique {
		t.Error("Expected first 'music' reported unique")
	}
	if _, ok := ecs.GetComponent[*components.TransformComponent](em, music); ok {
		t.Error("Audio element must not get a transform")
	}

	first, _ := ps.Register("dup", movie.KindText)
	second, unique := ps.Register("dup", movie.KindText)
	if unique {
		t.Error("Expected second 'dup' reported as duplicate")
	}
	ps.ApplyState("dup", movie.KindText, timeline.FrameState{Frame: 1, Props: props(map[string]float64{"x": 7})})

	tf1, _ := ecs.GetComponent[*components.TransformComponent](em, first)
	tf2, _ := ecs.GetComponent[*components.TransformComponent](em, second)
	if tf1.X != 7 || tf2.X != 0 {
		t.Errorf("Expected only the first 'dup' updated, got %v / %v", tf1.X, tf2.X)
	}

	// 未知元素只记录警告
	ps.ApplyState("ghost", movie.KindImage, timeline.FrameState{Frame: 1})
	ps.ApplyState("ghost", movie.KindImage, timeline.FrameState{Frame: 2})
	if !ps.warned["ghost"] {
		t.Error("Expected unknown element to be remembered")
	}
}

// TestPresentationSystem_WithMovie 与 Movie 集成：Seek 后实体状态立即更新
func TestPresentationSystem_WithMovie(t *testing.T) {
	elements := []movie.Element{
		{ID: "box", Payload: movie.ImagePayload{Source: "box.png"}, Frames: []movie.Keyframe{
			{Frame: 0, Props: props(map[string]float64{"x": 0, "alpha": 0})},
			{Frame: 20, Props: props(map[string]float64{"x": 200, "alpha": 1})},
		}},
	}
	opts := timeline.DefaultOptions()
	opts.Duration = 20
	m := timeline.NewMovie(elements, opts)

	em := ecs.NewEntityManager()
	ps := NewPresentationSystem(em)
	id, _ := ps.Register("box", movie.KindImage)
	m.SetPresenter(ps)

	m.Seek(5)
	tf, _ := ecs.GetComponent[*components.TransformComponent](em, id)
	if math.Abs(tf.X-50) > 1e-9 || math.Abs(tf.Alpha-0.25) > 1e-9 {
		t.Errorf("Expected x=50 alpha=0.25 at frame 5, got %+v", tf)
	}
}
