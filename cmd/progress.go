package main

import (
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("fables"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// rateBar redraws a bar from a counter that callbacks bump, showing the
// current rate in the description.
type rateBar struct {
	bar   *progressbar.ProgressBar
	count atomic.Int32
	done  chan struct{}
}

func startRateBar(total int, description, unit string) *rateBar {
	rb := &rateBar{
		bar:  getProgressBar(total, description),
		done: make(chan struct{}),
	}

	go func() {
		startTime := time.Now()
		lastCount := int32(0)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-rb.done:
				return
			case <-ticker.C:
			}

			count := rb.count.Load()
			rb.bar.Set(int(count))
			if count > lastCount {
				elapsed := time.Since(startTime).Seconds()
				rb.bar.Describe(color.BlueString("%s (%.1f %s/sec)", description, float64(count)/elapsed, unit))
			}
			lastCount = count
		}
	}()

	return rb
}

func (rb *rateBar) Add(n int) {
	rb.count.Add(int32(n))
}

func (rb *rateBar) Finish() {
	close(rb.done)
	rb.bar.Set(int(rb.count.Load()))
	rb.bar.Finish()
}
