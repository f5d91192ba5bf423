// Package main provides the xnn command line tool.
package main

import (
	"fmt"
	"log"
	"os"
)

const version = "v0.1.0"

func usage() {
	fmt.Println("xnn - fully connected networks trained by per-example SGD")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train      Train a network on MNIST or synthetic data")
	fmt.Println("  describe   Print the layer table of a network")
	fmt.Println("  version    Show version")
	fmt.Println("")
	fmt.Println("Run 'xnn <command> -h' for command flags.")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "train":
		err = runTrain(os.Args[2:])
	case "describe":
		err = runDescribe(os.Args[2:])
	case "version":
		fmt.Printf("xnn %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		log.Fatalf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}
