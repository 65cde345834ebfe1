package sequence

import (
	"fmt"
	"os"
	"time"

	"github.com/aristath/baccarat/internal/domain"
	"github.com/aristath/baccarat/internal/modules/history"
	"github.com/vmihailenco/msgpack/v5"
)

// ArtifactVersion is bumped whenever the network layout or encoding changes.
// Artifacts with any other version are ignored.
const ArtifactVersion = 1

// Artifact is the persisted form of a trained network
type Artifact struct {
	Version   int       `msgpack:"version"`
	Window    int       `msgpack:"window"`
	Hidden    int       `msgpack:"hidden"`
	W1        []float64 `msgpack:"w1"`
	B1        []float64 `msgpack:"b1"`
	W2        []float64 `msgpack:"w2"`
	B2        []float64 `msgpack:"b2"`
	Accuracy  float64   `msgpack:"accuracy"`
	Examples  int       `msgpack:"examples"`
	Epochs    int       `msgpack:"epochs"`
	TrainedAt time.Time `msgpack:"trained_at"`
}

func newArtifact(net *Network, accuracy float64, examples, epochs int, trainedAt time.Time) Artifact {
	p := net.params()
	copyOf := func(v []float64) []float64 { return append([]float64(nil), v...) }
	return Artifact{
		Version:   ArtifactVersion,
		Window:    net.window,
		Hidden:    net.hidden,
		W1:        copyOf(p[0]),
		B1:        copyOf(p[1]),
		W2:        copyOf(p[2]),
		B2:        copyOf(p[3]),
		Accuracy:  accuracy,
		Examples:  examples,
		Epochs:    epochs,
		TrainedAt: trainedAt,
	}
}

// Network rebuilds the network, validating version and shape.
func (a Artifact) Network() (*Network, error) {
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("artifact version %d, want %d", a.Version, ArtifactVersion)
	}
	if a.Window != Window {
		return nil, fmt.Errorf("artifact window %d, want %d", a.Window, Window)
	}
	return networkFromWeights(a.Window, a.Hidden, a.W1, a.B1, a.W2, a.B2)
}

// writeArtifact encodes a and replaces the file at path atomically.
func writeArtifact(path string, a Artifact) error {
	data, err := msgpack.Marshal(&a)
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Path: path, Err: err}
	}
	if err := history.WriteFileAtomic(path, data); err != nil {
		return &domain.PersistenceError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// readArtifact decodes the file at path. A missing file is reported with
// os.ErrNotExist in the chain.
func readArtifact(path string) (Artifact, error) {
	var a Artifact
	data, err := os.ReadFile(path)
	if err != nil {
		return a, &domain.PersistenceError{Op: "read", Path: path, Err: err}
	}
	if err := msgpack.Unmarshal(data, &a); err != nil {
		return a, &domain.PersistenceError{Op: "decode", Path: path, Err: err}
	}
	return a, nil
}
