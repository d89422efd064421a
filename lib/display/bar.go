package display

import (
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/unclesp1d3r/keysmith/lib/engine"
)

const barTemplate = `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{etime . }}`

// AttackBar renders attack progress as a terminal progress bar.
type AttackBar struct {
	bar *pb.ProgressBar
}

// NewAttackBar starts a bar for target. A total of zero renders an open-ended counter.
func NewAttackBar(target string, start, total int64) *AttackBar {
	bar := pb.New64(total).SetTemplate(pb.ProgressBarTemplate(barTemplate))
	bar.SetCurrent(start)
	bar.Set("prefix", target+" ")
	bar.SetWriter(os.Stderr)
	bar.Start()

	return &AttackBar{bar: bar}
}

// Update moves the bar to the sample's index.
func (b *AttackBar) Update(p engine.Progress) {
	if p.Total > 0 && b.bar.Total() != p.Total {
		b.bar.SetTotal(p.Total)
	}
	b.bar.SetCurrent(p.Index)
}

// Finish stops rendering the bar.
func (b *AttackBar) Finish() {
	b.bar.Finish()
}
