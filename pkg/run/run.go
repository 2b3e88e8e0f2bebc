// Package run carries per-run collaborators (progress reporting and logging)
// through the voxelizer and packer without process-wide state.
package run

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Stage names a long-running pass.
type Stage string

const (
	StageLoad     Stage = "load"
	StageVoxelize Stage = "voxelize"
	StageRemap    Stage = "remap"
	StagePack     Stage = "pack"
	StageExport   Stage = "export"
)

// ProgressFunc receives monotonically increasing done counts for a stage.
// done == total marks the end of the stage.
type ProgressFunc func(stage Stage, done, total int)

// Context is threaded through every core call of a run.
// The zero value and a nil *Context are both valid and silent.
type Context struct {
	Progress ProgressFunc
	Logger   *log.Logger

	mu sync.Mutex
}

// New returns a Context reporting to fn and logging to logger.
// Either may be nil.
func New(fn ProgressFunc, logger *log.Logger) *Context {
	return &Context{Progress: fn, Logger: logger}
}

// Report forwards progress to the callback. Safe for concurrent use;
// calls are serialised so the callback need not lock.
func (c *Context) Report(stage Stage, done, total int) {
	if c == nil || c.Progress == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Progress(stage, done, total)
}

// Debugf logs at debug level when a logger is attached.
func (c *Context) Debugf(format string, args ...any) {
	if c == nil || c.Logger == nil {
		return
	}
	c.Logger.Debugf(format, args...)
}

// Infof logs at info level when a logger is attached.
func (c *Context) Infof(format string, args ...any) {
	if c == nil || c.Logger == nil {
		return
	}
	c.Logger.Infof(format, args...)
}

// Counter turns per-item completions into Report calls for one stage.
type Counter struct {
	rc    *Context
	stage Stage
	total int

	mu   sync.Mutex
	done int
}

// Counter returns a Counter for stage with the given total and reports 0.
func (c *Context) Counter(stage Stage, total int) *Counter {
	c.Report(stage, 0, total)
	return &Counter{rc: c, stage: stage, total: total}
}

// Add records n completed items.
func (k *Counter) Add(n int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.done += n
	k.rc.Report(k.stage, k.done, k.total)
}
