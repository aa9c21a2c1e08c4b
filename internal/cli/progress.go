package cli

import (
	"io"

	"github.com/cheggaaa/pb/v3"
)

// progressObserver advances a bar by each window's size as it completes.
type progressObserver struct {
	bar *pb.ProgressBar
}

func newProgressObserver(w io.Writer, samples int) *progressObserver {
	bar := pb.New(samples)
	bar.SetWriter(w)
	bar.Start()
	return &progressObserver{bar: bar}
}

func (p *progressObserver) WindowStarted(int, int) {}

func (p *progressObserver) WindowFinished(_, size int, err error) {
	if err == nil {
		p.bar.Add(size)
	}
}

func (p *progressObserver) Finish() {
	p.bar.Finish()
}
