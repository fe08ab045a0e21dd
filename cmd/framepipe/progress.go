package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/vnykmshr/framepipe/pkg/encoding/gif"
)

// newProgressReporter shows a progress bar on out when it is a terminal and
// reports nothing otherwise.
func newProgressReporter(out io.Writer, frames int) (gif.ProgressReporter, func()) {
	if !isTerminal(out) || frames <= 0 {
		return gif.NoopReporter{}, func() {}
	}

	bar := progressbar.NewOptions(frames,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("encoding"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	reporter := gif.ProgressFunc(func() bool {
		return bar.Add(1) == nil
	})
	return reporter, func() { _ = bar.Finish() }
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
