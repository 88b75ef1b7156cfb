package timeline

import (
	"github.com/decker502/keyreel/internal/movie"
)

// Precompute 为 [0, duration] 内每个整数帧计算一次 Resolve，返回稠密表（预计算模式）
//
// 返回的表满足 table[i].Frame == i，可以直接替换元素的关键帧列表。
// 对已经是稠密表的输入再次调用，结果与输入相同（每帧都是精确匹配）。
// duration < 0 时返回 nil。
func Precompute(frames []movie.Keyframe, duration int) []movie.Keyframe {
	if duration < 0 {
		return nil
	}

	table := make([]movie.Keyframe, duration+1)
	if len(frames) == 0 {
		for i := range table {
			table[i].Frame = i
		}
		return table
	}

	sorted := SortedKeyframes(frames)
	for i := range table {
		state := resolveSorted(sorted, i)
		table[i] = movie.Keyframe{Frame: i, Props: state.Props}
	}
	return table
}

// IsDense 检查 frames 是否为 [0, duration] 的稠密表
func IsDense(frames []movie.Keyframe, duration int) bool {
	if duration < 0 || len(frames) != duration+1 {
		return false
	}
	for i := range frames {
		if frames[i].Frame != i {
			return false
		}
	}
	return true
}

// Lookup 在稠密表中 O(1) 查找 target 帧
// target 超出表范围时返回 false，调用方应回退到 Resolve
func Lookup(table []movie.Keyframe, target int) (FrameState, bool) {
	if target < 0 || target >= len(table) || table[target].Frame != target {
		return FrameState{}, false
	}
	return hold(&table[target], target), true
}
