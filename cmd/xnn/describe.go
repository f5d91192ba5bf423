package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/born-ml/xnn/internal/dataset"
	"github.com/born-ml/xnn/internal/nn"
	"github.com/born-ml/xnn/internal/report"
)

func runDescribe(args []string) error {
	flags := flag.NewFlagSet("describe", flag.ExitOnError)
	loadPath := flags.String("load", "", "Describe a saved network instead of a fresh one")
	hidden := flags.String("hidden", "1000,100", "Comma separated hidden layer widths of a fresh network")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var net *nn.Network
	if *loadPath != "" {
		var err error
		if net, err = nn.Load(*loadPath); err != nil {
			return err
		}
	} else {
		widths, err := parseHidden(*hidden)
		if err != nil {
			return err
		}
		net = buildNetwork(architecture{
			inputs:    dataset.MNISTRows * dataset.MNISTCols,
			hidden:    widths,
			classes:   dataset.MNISTClasses,
			normalize: 255,
		})
	}

	if err := nn.WriteSummary(os.Stdout, net.Describe()); err != nil {
		return err
	}

	if h := net.History(); len(h.Epochs) > 0 {
		fmt.Println()
		return report.WriteSummary(os.Stdout, report.Summarize(h))
	}
	return nil
}
