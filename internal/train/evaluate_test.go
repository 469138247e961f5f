package train

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/digits/internal/mnist"
	"github.com/born-ml/digits/internal/nn"
)

func TestEvaluateMatchesSequentialPredictions(t *testing.T) {
	cfg := runConfig(16, 20)
	net := newNet(t, cfg, 9)
	trainer, err := New(net, cfg)
	require.NoError(t, err)
	_, err = trainer.Run(context.Background(), mnist.Synthetic(10))
	require.NoError(t, err)

	data := mnist.Synthetic(200)
	ev, err := Evaluate(net, data, 4)
	require.NoError(t, err)
	assert.Equal(t, 200, ev.Total)

	correct := 0
	for i, img := range data.Images {
		pred, _, err := net.Predict(img)
		require.NoError(t, err)
		if pred == data.Labels[i] {
			correct++
		}
	}
	assert.Equal(t, correct, ev.Correct)
	assert.InDelta(t, float64(correct)/200, ev.Accuracy, 1e-12)
	assert.Greater(t, ev.Loss, 0.0)
}

func TestEvaluatePerfectNetwork(t *testing.T) {
	// Output unit k fires only when input unit k is set.
	s := &nn.Snapshot{InputSize: 3, HiddenSize: 3, OutputSize: 3}
	for k := 0; k < 3; k++ {
		row := []float64{0, 0, 0}
		row[k] = 20
		s.WeightsIH = append(s.WeightsIH, row)
		s.WeightsHO = append(s.WeightsHO, append([]float64(nil), row...))
	}
	s.BiasH = []float64{-10, -10, -10}
	s.BiasO = []float64{-10, -10, -10}
	net, err := nn.FromSnapshot(s)
	require.NoError(t, err)

	data := &mnist.Dataset{
		Images: [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Labels: []int{0, 1, 2},
	}
	ev, err := Evaluate(net, data, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, ev.Correct)
	assert.Equal(t, 1.0, ev.Accuracy)
}

func TestEvaluateRejectsMismatchedData(t *testing.T) {
	net := newNet(t, runConfig(4, 1), 1)
	_, err := Evaluate(net, &mnist.Dataset{Images: [][]float64{{1}}, Labels: []int{0}}, 1)
	assert.Error(t, err)

	_, err = Evaluate(net, &mnist.Dataset{}, 1)
	assert.Error(t, err)
}

func TestPredictFirstAndLog(t *testing.T) {
	net := newNet(t, runConfig(4, 1), 1)
	data := mnist.Synthetic(3)

	preds, err := PredictFirst(net, data, 5)
	require.NoError(t, err)
	require.Len(t, preds, 3)
	assert.Equal(t, 2, preds[2].Label)
	assert.Len(t, preds[0].Output, 10)

	buf := &bytes.Buffer{}
	LogPredictions(log.New(buf, "", 0), preds[:1])
	assert.Contains(t, buf.String(), "sample=1 label=0 pred=")
}

func TestPredictFirstNonPositive(t *testing.T) {
	net := newNet(t, runConfig(4, 1), 1)

	for _, n := range []int{0, -1} {
		preds, err := PredictFirst(net, mnist.Synthetic(3), n)
		require.NoError(t, err)
		assert.Empty(t, preds)
	}
}
