package timeline

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/decker502/keyreel/internal/movie"
)

// kf 构造测试用关键帧，props 的值为 float64 / string / bool
func kf(frame int, props map[string]interface{}) movie.Keyframe {
	k := movie.Keyframe{Frame: frame}
	for name, v := range props {
		switch t := v.(type) {
		case float64:
			k.Set(name, movie.Number(t))
		case int:
			k.Set(name, movie.Number(float64(t)))
		case string:
			k.Set(name, movie.String(t))
		case bool:
			k.Set(name, movie.Bool(t))
		}
	}
	return k
}

func num(t testing.TB, s FrameState, name string) float64 {
	t.Helper()
	v, ok := s.Get(name)
	if !ok {
		t.Errorf("property %s missing from frame %d", name, s.Frame)
		return math.NaN()
	}
	f, ok := v.Float()
	if !ok {
		t.Errorf("property %s on frame %d is not numeric: %v", name, s.Frame, v)
		return math.NaN()
	}
	return f
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// fakePlayer 模拟 ebiten audio.Player
type fakePlayer struct {
	playing  bool
	position time.Duration

	playCalls  int
	pauseCalls int
	seeks      []time.Duration
	seekErr    error
}

func (p *fakePlayer) Play() {
	p.playing = true
	p.playCalls++
}

func (p *fakePlayer) Pause() {
	p.playing = false
	p.pauseCalls++
}

func (p *fakePlayer) IsPlaying() bool { return p.playing }

func (p *fakePlayer) Position() time.Duration { return p.position }

func (p *fakePlayer) SetPosition(offset time.Duration) error {
	p.seeks = append(p.seeks, offset)
	if p.seekErr != nil {
		return p.seekErr
	}
	p.position = offset
	return nil
}

var errSeek = errors.New("seek not supported")

type recordingDiagnostics struct {
	errs map[string][]error
}

func (d *recordingDiagnostics) MediaError(elementID string, err error) {
	if d.errs == nil {
		d.errs = make(map[string][]error)
	}
	d.errs[elementID] = append(d.errs[elementID], err)
}

type recordingPresenter struct {
	calls  []string
	states map[string]FrameState
}

func (p *recordingPresenter) ApplyState(elementID string, kind movie.Kind, state FrameState) {
	if p.states == nil {
		p.states = make(map[string]FrameState)
	}
	p.calls = append(p.calls, elementID)
	p.states[elementID] = state
}
