package timeline

import (
	"github.com/decker502/keyreel/internal/movie"
)

// FrameState 某个元素在某一帧的解析结果
// 每次查询都返回新的副本，调用方可以自由修改
type FrameState struct {
	Frame int
	movie.Props
}

// Resolve 计算关键帧列表在 target 帧的属性状态（惰性模式）
//
// 边界策略（按顺序判断）：
//  1. 无关键帧：只返回 Frame
//  2. 精确匹配：返回该关键帧（重复帧号取第一个）
//  3. 早于第一个 / 晚于最后一个关键帧：钳制到边界关键帧
//  4. prev 与 next 为同一关键帧：保持该值
//  5. 否则线性插值，ratio = (target - prev.Frame) / (next.Frame - prev.Frame)
//
// 属性合并策略见 mergeProps。
func Resolve(frames []movie.Keyframe, target int) FrameState {
	if len(frames) == 0 {
		return FrameState{Frame: target}
	}
	return resolveSorted(SortedKeyframes(frames), target)
}

// resolveSorted 要求 sorted 已按帧号升序排列且非空
func resolveSorted(sorted []movie.Keyframe, target int) FrameState {
	first := &sorted[0]
	last := &sorted[len(sorted)-1]

	var prev, next *movie.Keyframe
	for i := range sorted {
		kf := &sorted[i]
		if kf.Frame == target {
			return hold(kf, target)
		}
		if kf.Frame < target {
			prev = kf
			continue
		}
		next = kf
		break
	}
	if prev == nil {
		prev = first
	}
	if next == nil {
		next = last
	}

	if target < first.Frame {
		return hold(first, target)
	}
	if target > last.Frame {
		return hold(last, target)
	}
	if prev == next || next.Frame <= prev.Frame {
		return hold(prev, target)
	}

	ratio := float64(target-prev.Frame) / float64(next.Frame-prev.Frame)
	return FrameState{Frame: target, Props: mergeProps(prev.Props, next.Props, ratio)}
}

func hold(kf *movie.Keyframe, target int) FrameState {
	return FrameState{Frame: target, Props: kf.Props.Clone()}
}

// mergeProps 合并前后两个关键帧的属性
//
// 取两者键的并集：
//   - 两边都是数值：线性插值
//   - 否则 prev 有该键：保持 prev 的值（包括类型不一致的情况）
//   - 否则取 next 的值
func mergeProps(prev, next movie.Props, ratio float64) movie.Props {
	var out movie.Props

	for _, key := range prev.Keys() {
		pv, _ := prev.Get(key)
		if nv, ok := next.Get(key); ok {
			a, aNum := pv.Float()
			b, bNum := nv.Float()
			if aNum && bNum {
				out.Set(key, movie.Number(lerp(a, b, ratio)))
				continue
			}
		}
		out.Set(key, pv)
	}

	for _, key := range next.Keys() {
		if prev.Has(key) {
			continue
		}
		nv, _ := next.Get(key)
		out.Set(key, nv)
	}

	return out
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
