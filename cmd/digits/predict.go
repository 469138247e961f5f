package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/born-ml/digits/internal/preprocess"
	"github.com/born-ml/digits/internal/serialization"
)

func predictCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	buildDir := fs.String("build", "build", "directory holding model.json and config.json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: predict needs at least one image file", errUsage)
	}

	net, _, err := serialization.NewStore(*buildDir).Load()
	if err != nil {
		return err
	}

	for _, path := range fs.Args() {
		input, err := readImage(path, net.InputSize())
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		pred, output, err := net.Predict(input)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(stdout, "%s\tprediction=%d\toutput=%s\n", path, pred, formatOutput(output))
	}
	return nil
}

func readImage(path string, size int) ([]float64, error) {
	//nolint:gosec // G304: image paths are supplied by the operator
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return preprocess.Decode(f, size)
}

func formatOutput(output []float64) string {
	parts := make([]string, len(output))
	for i, v := range output {
		parts[i] = fmt.Sprintf("%.2f", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
