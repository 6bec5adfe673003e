package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/tally/hooking"
	"github.com/sarchlab/tally/idgen"
	"github.com/sarchlab/tally/processor"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

var progressBarIDs = idgen.NewXID()

func newProgressBar(name string, total uint64) *ProgressBar {
	return &ProgressBar{
		ID:        progressBarIDs.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

type progressRsp struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func (b *ProgressBar) snapshot() progressRsp {
	b.Lock()
	defer b.Unlock()

	return progressRsp{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// LineProgressHook advances a progress bar as the processor works through
// its lines. The line being processed counts as in progress.
type LineProgressHook struct {
	bar     *ProgressBar
	started bool
}

// NewLineProgressHook creates a hook that reports to the bar.
func NewLineProgressHook(bar *ProgressBar) *LineProgressHook {
	return &LineProgressHook{bar: bar}
}

// Func moves the previous line to finished and marks the new one in progress.
func (h *LineProgressHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != processor.HookPosLine {
		return
	}

	if h.started {
		h.bar.MoveInProgressToFinished(1)
	}

	h.started = true
	h.bar.IncrementInProgress(1)
}

// Finish marks the last line as finished.
func (h *LineProgressHook) Finish() {
	if h.started {
		h.bar.MoveInProgressToFinished(1)
		h.started = false
	}
}
