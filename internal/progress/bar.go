package progress

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Config determines whether and how progress bars are displayed.
type Config struct {
	Enabled bool
	Writer  io.Writer
	NoColor bool
}

// NewConfig builds a Config from the CLI's verbosity flags and TTY
// detection: progress is suppressed for --quiet, --json output, and
// any non-TTY stderr (piped output, CI).
func NewConfig(quiet, jsonOutput, noColor bool) Config {
	enabled := !quiet && !jsonOutput && isatty.IsTerminal(os.Stderr.Fd())
	return Config{Enabled: enabled, Writer: os.Stderr, NoColor: noColor}
}

// NewBar creates a bounded progress bar for a worklist of known size
// (the parse stage). Returns nil when progress is
// disabled; callers must nil-check before use.
func NewBar(cfg Config, total int64, description string) *progressbar.ProgressBar {
	if !cfg.Enabled {
		return nil
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(cfg.Writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(!cfg.NoColor),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
