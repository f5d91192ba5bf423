package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/born-ml/xnn/internal/nn"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WriteHistoryCSV writes one row per epoch with the columns
// epoch, loss, accuracy and seconds. Accuracy is empty for epochs that ran
// without validation.
func WriteHistoryCSV(w io.Writer, h nn.History) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"epoch", "loss", "accuracy", "seconds"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, e := range h.Epochs {
		accuracy := ""
		if e.Validated {
			accuracy = strconv.FormatFloat(e.Accuracy, 'g', -1, 64)
		}
		record := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(e.Loss, 'g', -1, 64),
			accuracy,
			strconv.FormatFloat(e.Duration.Seconds(), 'f', 6, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write epoch %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Summary aggregates a training history.
type Summary struct {
	Epochs       int
	FinalLoss    float64
	MeanLoss     float64
	BestAccuracy float64 // 0 when no epoch was validated
	BestEpoch    int     // -1 when no epoch was validated
	MeanSeconds  float64 // mean epoch wall time
	StdSeconds   float64 // sample standard deviation of epoch wall time
}

// Summarize computes aggregate statistics of h. An empty history yields
// the zero Summary with BestEpoch -1.
func Summarize(h nn.History) Summary {
	s := Summary{Epochs: len(h.Epochs), BestEpoch: -1}
	if s.Epochs == 0 {
		return s
	}

	losses := h.Loss()
	s.FinalLoss = losses[len(losses)-1]
	s.MeanLoss = stat.Mean(losses, nil)

	seconds := make([]float64, len(h.Epochs))
	for i, d := range h.Durations() {
		seconds[i] = d.Seconds()
	}
	s.MeanSeconds = stat.Mean(seconds, nil)
	if len(seconds) > 1 {
		s.StdSeconds = stat.StdDev(seconds, nil)
	}

	var acc []float64
	var epochs []int
	for i, e := range h.Epochs {
		if e.Validated {
			acc = append(acc, e.Accuracy)
			epochs = append(epochs, i)
		}
	}
	if len(acc) > 0 {
		best := floats.MaxIdx(acc)
		s.BestAccuracy = acc[best]
		s.BestEpoch = epochs[best]
	}
	return s
}

// WriteSummary prints s in the style of Printer.
func WriteSummary(w io.Writer, s Summary) error {
	p := NewPrinter(w)
	p.printf("Epochs trained: %d\n", s.Epochs)
	if s.Epochs == 0 {
		return p.Err()
	}
	p.printf("Final training loss: %s\n", Round(s.FinalLoss, 3))
	p.printf("Mean training loss: %s\n", Round(s.MeanLoss, 3))
	if s.BestEpoch >= 0 {
		p.printf("Best validation accuracy: %s (epoch %d)\n", formatFloat(s.BestAccuracy), s.BestEpoch)
	}
	p.printf("Time per epoch: %s ± %s sec\n", Round(s.MeanSeconds, 2), Round(s.StdSeconds, 2))
	return p.Err()
}
