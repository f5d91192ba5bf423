package nn

import "time"

// TrainingInfo describes a Fit run before its first epoch.
type TrainingInfo struct {
	Epochs         int
	TrainSize      int
	ValidationSize int // 0 when no validation split was requested
}

// EpochMetrics summarizes one training epoch.
type EpochMetrics struct {
	Epoch     int           // Zero-based epoch index within its Fit call; restarts at 0 on every call
	Loss      float64       // Mean cross-entropy over the training examples
	Accuracy  float64       // Validation accuracy, meaningful when Validated
	Validated bool          // Whether a validation pass ran
	Duration  time.Duration // Wall time including validation
	TrainSize int           // Training examples seen in the epoch
}

// TimePerExample returns the epoch wall time divided by the number of
// training examples.
func (m EpochMetrics) TimePerExample() time.Duration {
	if m.TrainSize == 0 {
		return 0
	}
	return m.Duration / time.Duration(m.TrainSize)
}

// History accumulates epoch metrics across every Fit call of a Network.
// Entries keep the per-call Epoch numbering, so a second Fit appends
// epochs numbered from 0 again; the position in Epochs is the global order.
type History struct {
	Epochs []EpochMetrics
}

// Loss returns the mean training loss of every epoch.
func (h History) Loss() []float64 {
	out := make([]float64, len(h.Epochs))
	for i, e := range h.Epochs {
		out[i] = e.Loss
	}
	return out
}

// Accuracy returns the validation accuracy of every validated epoch.
func (h History) Accuracy() []float64 {
	var out []float64
	for _, e := range h.Epochs {
		if e.Validated {
			out = append(out, e.Accuracy)
		}
	}
	return out
}

// Durations returns the wall time of every epoch.
func (h History) Durations() []time.Duration {
	out := make([]time.Duration, len(h.Epochs))
	for i, e := range h.Epochs {
		out[i] = e.Duration
	}
	return out
}

// Observer receives training progress from Fit.
//
// Calls are made synchronously from the training goroutine in this order:
// TrainingStarted once, then per epoch EpochStarted, ExampleDone for each
// training example, Validating when a validation split exists and
// EpochFinished, and finally TrainingFinished.
type Observer interface {
	TrainingStarted(info TrainingInfo)
	EpochStarted(epoch, total int)
	ExampleDone(index, total int)
	Validating()
	EpochFinished(metrics EpochMetrics)
	TrainingFinished(elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) TrainingStarted(TrainingInfo) {}
func (nopObserver) EpochStarted(int, int) {}
func (nopObserver) ExampleDone(int, int) {}
func (nopObserver) Validating() {}
func (nopObserver) EpochFinished(EpochMetrics) {}
func (nopObserver) TrainingFinished(time.Duration) {}
