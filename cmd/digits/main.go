// Package main provides the digits CLI.
//
// Usage:
//
//	digits train   [-config digits.yaml] [-data dataset] [-build build] [-epochs 10] ...
//	digits serve   [-config digits.yaml] [-build build] [-addr :8080]
//	digits predict [-build build] image.png ...
//	digits version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
)

const version = "v0.1.0"

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Fatalf("digits: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) error {
	if len(args) == 0 {
		usage(stdout)
		return errUsage
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "train":
		return trainCmd(ctx, rest, logger)
	case "serve":
		return serveCmd(ctx, rest, logger)
	case "predict":
		return predictCmd(rest, stdout)
	case "version":
		fmt.Fprintf(stdout, "digits %s\n", version)
		return nil
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(stdout)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "digits - handwritten digit recognition")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  train      Train a network on MNIST and save it to the build directory")
	fmt.Fprintln(w, "  serve      Serve predictions and the drawing canvas over HTTP")
	fmt.Fprintln(w, "  predict    Classify image files with the saved network")
	fmt.Fprintln(w, "  version    Show version")
}
