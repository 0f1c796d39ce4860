package clients

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

type spinnerProgress struct {
	s *spinner.Spinner
}

// NewSpinner returns a Progress that animates on w and erases itself on Stop
func NewSpinner(w io.Writer) Progress {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(w),
		spinner.WithHiddenCursor(true),
	)
	s.Suffix = " Waiting for response"
	return &spinnerProgress{s: s}
}

func (p *spinnerProgress) Start() {
	p.s.Start()
}

func (p *spinnerProgress) Stop() {
	p.s.Stop()
}
