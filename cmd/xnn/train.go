package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"time"

	"github.com/born-ml/xnn/internal/dataset"
	"github.com/born-ml/xnn/internal/nn"
	"github.com/born-ml/xnn/internal/parallel"
	"github.com/born-ml/xnn/internal/report"
)

func runTrain(args []string) error {
	flags := flag.NewFlagSet("train", flag.ExitOnError)
	dataDir := flags.String("data", "./data", "Directory containing MNIST data files")
	useSynthetic := flags.Bool("synthetic", false, "Use synthetic data (for testing without MNIST files)")
	maxSamples := flags.Int("samples", 0, "Max training samples to load (0 = all, synthetic default 2000)")
	testSamples := flags.Int("test-samples", 100, "Max test samples to evaluate (0 = all)")
	epochs := flags.Int("epochs", 5, "Number of training epochs")
	valSplit := flags.Float64("val", 0.1, "Trailing fraction held out for validation")
	lr := flags.Float64("lr", 0.01, "Learning rate")
	momentum := flags.Float64("momentum", 0, "SGD momentum")
	hidden := flags.String("hidden", "1000,100", "Comma separated hidden layer widths")
	normalize := flags.Float64("normalize", 255, "Divisor applied to raw pixels")
	gradient := flags.String("gradient", "exact", "Hidden layer gradient rule: exact or relu")
	trainBias := flags.Bool("train-bias", false, "Update biases as well as weights")
	seed := flags.Uint64("seed", 0, "Weight initialization seed (0 = random)")
	useParallel := flags.Bool("parallel", false, "Run inference across all CPUs")
	savePath := flags.String("save", "", "Write the trained network to this file")
	metricsPath := flags.String("metrics", "", "Write per-epoch metrics as CSV to this file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	widths, err := parseHidden(*hidden)
	if err != nil {
		return err
	}
	mode, err := nn.ParseGradientMode(*gradient)
	if err != nil {
		return err
	}

	trainX, trainY, testX, testY, err := loadData(*dataDir, *useSynthetic, *maxSamples, *testSamples, *seed)
	if err != nil {
		return err
	}

	var src rand.Source
	if *seed != 0 {
		src = rand.NewPCG(*seed, *seed)
	}
	var opts []nn.Option
	if *useParallel {
		opts = append(opts, nn.WithParallel(parallel.DefaultConfig()))
	}

	net := buildNetwork(architecture{
		inputs:    trainX.SampleSize(),
		hidden:    widths,
		classes:   dataset.MNISTClasses,
		normalize: *normalize,
		lr:        *lr,
		momentum:  *momentum,
		gradient:  mode,
		trainBias: *trainBias,
		src:       src,
	}, opts...)

	if err := nn.WriteSummary(os.Stdout, net.Describe()); err != nil {
		return err
	}

	printer := report.NewPrinter(os.Stdout)
	if _, err := net.Fit(trainX, trainY, nn.FitConfig{
		Epochs:          *epochs,
		ValidationSplit: *valSplit,
		Classes:         dataset.MNISTClasses,
		Observer:        printer,
	}); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	if err := printer.Err(); err != nil {
		return err
	}

	fmt.Println()
	if err := report.WriteSummary(os.Stdout, report.Summarize(net.History())); err != nil {
		return err
	}

	if testX != nil {
		start := time.Now()
		pred, err := net.Predict(testX)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
		acc, err := nn.Accuracy(pred, testY)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
		fmt.Printf("Final accuracy: %s (%d test samples, %s sec)\n",
			report.Round(acc, 4), len(pred), report.Round(time.Since(start).Seconds(), 2))
	}

	if *savePath != "" {
		if err := net.Save(*savePath); err != nil {
			return err
		}
		fmt.Printf("Saved network to %s\n", *savePath)
	}
	if *metricsPath != "" {
		if err := writeMetrics(*metricsPath, net.History()); err != nil {
			return err
		}
		fmt.Printf("Wrote metrics to %s\n", *metricsPath)
	}
	return nil
}

// loadData returns the training set and, when available, the test set.
// A missing MNIST test set disables evaluation instead of failing.
func loadData(dir string, synthetic bool, maxSamples, testSamples int, seed uint64) (trainX *dataset.Images, trainY []int, testX *dataset.Images, testY []int, err error) {
	if synthetic {
		if maxSamples <= 0 {
			maxSamples = 2000
		}
		if testSamples <= 0 {
			testSamples = 500
		}
		fmt.Printf("Using synthetic data: %d training and %d test samples\n", maxSamples, testSamples)
		trainX, trainY, err = dataset.Synthetic(maxSamples, dataset.MNISTRows, dataset.MNISTCols, dataset.MNISTClasses, rand.NewPCG(seed, 1))
		if err != nil {
			return nil, nil, nil, nil, err
		}
		testX, testY, err = dataset.Synthetic(testSamples, dataset.MNISTRows, dataset.MNISTCols, dataset.MNISTClasses, rand.NewPCG(seed, 2))
		return trainX, trainY, testX, testY, err
	}

	fmt.Printf("Loading MNIST data from: %s\n", dir)
	trainX, trainY, err = dataset.LoadMNIST(dir, true, maxSamples)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil, nil, fmt.Errorf("%w (download the MNIST IDX files into %s or pass -synthetic)", err, dir)
		}
		return nil, nil, nil, nil, err
	}

	testX, testY, err = dataset.LoadMNIST(dir, false, testSamples)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Println("Test set not found, skipping final evaluation")
		return trainX, trainY, nil, nil, nil
	}
	return trainX, trainY, testX, testY, err
}

func writeMetrics(path string, h nn.History) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	if err := report.WriteHistoryCSV(f, h); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
