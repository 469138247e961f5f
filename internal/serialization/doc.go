// Package serialization persists trained networks as two JSON documents.
//
// A trained model is stored in a build directory as:
//
//	model.json   network dimensions, weights and biases (nn.Snapshot)
//	config.json  run configuration: inputSize, hiddenSize, outputSize,
//	             learningRate, epochs
//
// Both files must exist for a load to succeed; if either is missing Load
// returns ErrNoModel rather than attempting a partial load. Snapshots are
// not versioned: saving again overwrites the previous run.
//
// Training and serving against the same directory at the same time is not
// supported. Each file is replaced atomically, but nothing coordinates the
// pair, so a reader may observe a new model.json next to an old config.json.
//
// Example usage:
//
//	store := serialization.NewStore("build")
//	if err := store.Save(net.Export(), cfg); err != nil {
//	    log.Fatal(err)
//	}
//
//	net, cfg, err := store.Load()
//	if errors.Is(err, serialization.ErrNoModel) {
//	    // not trained yet
//	}
package serialization
