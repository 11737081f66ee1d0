package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

type Bar struct {
	*progressbar.ProgressBar
}

func NewBar(max int, description string) *Bar {
	return NewBarTo(os.Stderr, max, description)
}

// NewBarTo renders the bar to w instead of stderr
func NewBarTo(w io.Writer, max int, description string) *Bar {
	bar := progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)

	return &Bar{ProgressBar: bar}
}

// Step advances the bar by one table and shows its name
func (b *Bar) Step(table string) {
	if b == nil || b.ProgressBar == nil {
		return
	}
	b.Describe(table)
	_ = b.Add(1)
}

func (b *Bar) Finish() {
	if b == nil || b.ProgressBar == nil {
		return
	}
	_ = b.ProgressBar.Finish()
}
