package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/bricklayer/pkg/run"
)

const barWidth = 28

// progressBar draws one line per stage on w. The displayed fill follows
// the reported fraction through a critically damped spring, so bursts of
// reports glide instead of jumping.
type progressBar struct {
	w io.Writer

	mu     sync.Mutex
	spring harmonica.Spring
	stage  run.Stage
	pos    float64
	vel    float64
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{
		w:      w,
		spring: harmonica.NewSpring(harmonica.FPS(30), 8.0, 1.0),
	}
}

// Report satisfies run.ProgressFunc.
func (p *progressBar) Report(stage run.Stage, done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if stage != p.stage {
		if p.stage != "" {
			fmt.Fprintln(p.w)
		}
		p.stage, p.pos, p.vel = stage, 0, 0
	}
	target := 1.0
	if total > 0 {
		target = float64(done) / float64(total)
	}
	p.pos, p.vel = p.spring.Update(p.pos, p.vel, target)
	if done >= total {
		p.pos, p.vel = 1, 0
	}
	p.pos = min(max(p.pos, 0), 1)
	fmt.Fprint(p.w, "\r"+renderBar(stage, p.pos))
}

// Finish terminates the current line.
func (p *progressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stage != "" {
		fmt.Fprintln(p.w)
		p.stage = ""
	}
}

func renderBar(stage run.Stage, frac float64) string {
	filled := int(frac*barWidth + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("%-9s %s %3d%%", stage, styleBar.Render(bar), int(frac*100+0.5))
}
