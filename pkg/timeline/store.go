// Package timeline 实现关键帧时间线引擎
//
// 包含四个部分：
//   - 关键帧存储（排序，不合并重复帧）
//   - 插值引擎（惰性查询 Resolve / 预计算稠密表 Precompute，两种模式结果一致）
//   - 播放时钟（按 fps / 参考 TPS 推进，循环取模或到尾暂停）
//   - 音频窗口调度（[startFrame, endFrame) 内播放，漂移超过阈值时重新对齐）
//
// 引擎是单线程、tick 驱动的：所有方法都应在同一个 goroutine（ebiten 的 Update）中调用。
package timeline

import (
	"sort"

	"github.com/decker502/keyreel/internal/movie"
)

// SortedKeyframes 返回按帧号升序排列的关键帧副本
//
// 使用稳定排序：相同帧号的关键帧保持原始相对顺序，
// 因此精确匹配时"升序扫描遇到的第一个"即原列表中最早出现的那个。
// 不修改调用方的切片。
func SortedKeyframes(frames []movie.Keyframe) []movie.Keyframe {
	sorted := make([]movie.Keyframe, len(frames))
	copy(sorted, frames)
	if isSorted(sorted) {
		return sorted
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Frame < sorted[j].Frame
	})
	return sorted
}

func isSorted(frames []movie.Keyframe) bool {
	for i := 1; i < len(frames); i++ {
		if frames[i].Frame < frames[i-1].Frame {
			return false
		}
	}
	return true
}
