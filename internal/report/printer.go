// Package report renders training progress and history for people and for
// plotting tools.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/born-ml/xnn/internal/nn"
)

// Rule separates training sections in Printer output.
var Rule = strings.Repeat("=", 81)

// progressMarks is the number of progress steps drawn per epoch.
const progressMarks = 20

// Printer is an nn.Observer that writes human-readable progress:
//
//	Epoch: 0/5
//	############################################################
//	Validating the model...
//	Time taken: 20.49 sec
//	Time per input: 0.023 sec
//	Average training loss: 1.747
//	Validation Accuracy 0.81
//
// Write errors are remembered and returned by Err; output stops after the
// first one.
type Printer struct {
	w   io.Writer
	err error
}

var _ nn.Observer = (*Printer)(nil)

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Err returns the first write error, if any.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// TrainingStarted prints the run header.
func (p *Printer) TrainingStarted(info nn.TrainingInfo) {
	p.printf("\nBeginning Training...\n%s\n", Rule)
	p.printf("Number of epochs: %d\n", info.Epochs)
	p.printf("Training dataset size: %d\n", info.TrainSize)
	if info.ValidationSize > 0 {
		p.printf("Validation dataset size: %d\n\n", info.ValidationSize)
	}
}

// EpochStarted prints the epoch counter.
func (p *Printer) EpochStarted(epoch, total int) {
	p.printf("Epoch: %d/%d\n", epoch, total)
}

// ExampleDone draws the progress bar, one mark per twentieth of the epoch.
func (p *Printer) ExampleDone(index, total int) {
	step := max(total/progressMarks, 1)
	if index%step == 0 && index/step < progressMarks {
		p.printf("###")
	}
	if index == total-1 {
		p.printf("\n")
	}
}

// Validating announces the validation pass.
func (p *Printer) Validating() {
	p.printf("Validating the model...\n")
}

// EpochFinished prints the epoch metrics.
func (p *Printer) EpochFinished(m nn.EpochMetrics) {
	p.printf("Time taken: %s sec\n", Round(m.Duration.Seconds(), 2))
	p.printf("Time per input: %s sec\n", Round(m.TimePerExample().Seconds(), 3))
	p.printf("Average training loss: %s\n", Round(m.Loss, 3))
	if m.Validated {
		p.printf("Validation Accuracy %s\n", formatFloat(m.Accuracy))
	}
	p.printf("%s\n\n", Rule)
}

// TrainingFinished prints the total wall time.
func (p *Printer) TrainingFinished(elapsed time.Duration) {
	p.printf("Time taken: %s sec\n", Round(elapsed.Seconds(), 2))
}

// Round formats x rounded to the given number of decimals, keeping at least
// one decimal: Round(20, 2) is "20.0", Round(1.74712, 3) is "1.747".
func Round(x float64, decimals int) string {
	scale := math.Pow(10, float64(decimals))
	return formatFloat(math.Round(x*scale) / scale)
}

func formatFloat(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if math.IsInf(x, 0) || math.IsNaN(x) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
