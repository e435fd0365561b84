package ml

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Classifier is a trained binary classifier. Class 1 is a home win.
type Classifier interface {
	PredictProba(x []float64) (pAway, pHome float64, err error)
}

// Importancer is implemented by classifiers that expose a weight per input
// feature, in input order.
type Importancer interface {
	FeatureImportances() []float64
}

// Persistable is a classifier that can be written as an artifact
type Persistable interface {
	Classifier
	Kind() string
}

// Decoder rebuilds a classifier from an artifact payload
type Decoder func(payload json.RawMessage) (Classifier, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Decoder{}
)

// Register makes a classifier kind loadable from artifacts
func Register(kind string, d Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = d
}

func decoderFor(kind string) (Decoder, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown classifier kind %q (registered: %v)", kind, registeredKinds())
	}
	return d, nil
}

func registeredKinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
