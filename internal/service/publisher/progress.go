package publisher

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// startProgress shows a spinner on stderr when it is a terminal and returns its stop function.
func startProgress(suffix string) func() {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return func() {}
	}

	loader := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	_ = loader.Color("yellow")
	loader.Suffix = " " + suffix
	loader.Start()

	return loader.Stop
}
