package game

import (
	"log"
	"sync"
	"time"
)

// MediaIssue 一条媒体错误记录
type MediaIssue struct {
	ElementID string
	Err       error
	At        time.Time
}

// DiagnosticsLog 收集音频窗口上报的媒体错误
// 实现 timeline.Diagnostics；只记录，不影响播放
type DiagnosticsLog struct {
	mu     sync.Mutex
	issues []MediaIssue
	limit  int
}

// NewDiagnosticsLog 创建诊断日志，最多保留 limit 条（<=0 表示不限制）
func NewDiagnosticsLog(limit int) *DiagnosticsLog {
	return &DiagnosticsLog{limit: limit}
}

// MediaError 记录一条媒体错误
func (d *DiagnosticsLog) MediaError(elementID string, err error) {
	log.Printf("[Diagnostics] media error on '%s': %v", elementID, err)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.issues = append(d.issues, MediaIssue{ElementID: elementID, Err: err, At: time.Now()})
	if d.limit > 0 && len(d.issues) > d.limit {
		d.issues = d.issues[len(d.issues)-d.limit:]
	}
}

// Issues 返回记录副本（按时间顺序）
func (d *DiagnosticsLog) Issues() []MediaIssue {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]MediaIssue, len(d.issues))
	copy(out, d.issues)
	return out
}

// Count 返回当前保留的记录数
func (d *DiagnosticsLog) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.issues)
}
