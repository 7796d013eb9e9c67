package similarity_test

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/testdesk/backend/internal/similarity"
)

var (
	dictOnce   sync.Once
	dictEngine *similarity.Engine
)

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce log noise in tests
	return logrus.NewEntry(logger)
}

// newDictEngine loads the embedded dictionary once per test binary.
func newDictEngine(t *testing.T) *similarity.Engine {
	t.Helper()
	dictOnce.Do(func() {
		dictEngine = similarity.New(similarity.DefaultConfig(), quietLogger())
	})
	return dictEngine
}

// newPlainEngine tokenizes on whitespace only.
func newPlainEngine() *similarity.Engine {
	return similarity.NewWithSegmenter(similarity.DefaultWeights(), nil, quietLogger())
}
