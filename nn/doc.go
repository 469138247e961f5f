// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a single-hidden-layer perceptron for digit classification.
//
// # Overview
//
// This package contains:
//   - Network: input → sigmoid hidden layer → sigmoid output layer
//   - Training: one stochastic gradient descent step per sample
//   - Snapshots: deep copies of all parameters for persistence
//   - Activations: Sigmoid and its derivative
//
// # Basic Usage
//
//	import "github.com/born-ml/digits/nn"
//
//	func main() {
//	    net, err := nn.New(784, 64, 10, nn.NewSource(42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // One training step
//	    if err := net.Train(image, target, 0.1); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Inference
//	    digit, output, err := net.Predict(image)
//	}
//
// # Snapshots
//
// Export returns a Snapshot that can be encoded as JSON. FromSnapshot and
// Import validate every dimension before touching a network:
//
//	snap := net.Export()
//	restored, err := nn.FromSnapshot(snap)
//
// # Concurrency
//
// Train mutates the network in place. Forward and Predict only read it and
// may be called from several goroutines as long as no Train is running.
package nn
