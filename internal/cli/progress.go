package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/lng-shipment-tracker/internal/scrape"
	"github.com/schollz/progressbar/v3"
)

// DetailProgress returns a scrape progress callback that draws a bar over
// the detail page fetches. The bar is created on the first callback, once
// the number of departures is known.
func DetailProgress(w io.Writer) scrape.Progress {
	var bar *progressbar.ProgressBar

	return func(done, total int, vessel string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan][bold]Fetching vessel details...[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					if _, err := fmt.Fprintln(w); err != nil {
						slog.Warn("Failed to write newline after progress bar", "error", err)
					}
				}),
			)
		}

		bar.Describe(fmt.Sprintf("[cyan][bold]%s[reset]", vessel))
		if err := bar.Set(done); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}
