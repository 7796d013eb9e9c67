package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/testdesk/backend/internal/config"
	"github.com/testdesk/backend/internal/provider"
	"github.com/testdesk/backend/internal/search"
	"github.com/testdesk/backend/internal/similarity"
	"github.com/testdesk/backend/internal/storage"
)

// ErrInvalidInput marks a request the engine rejects before doing any work.
var ErrInvalidInput = errors.New("invalid input")

// Engine orchestrates duplicate detection, analysis and test case generation
type Engine struct {
	Config     *config.Config
	Logger     *logrus.Entry
	Storage    storage.BugStorage
	Similarity *similarity.Engine
	Index      *search.Index
	LLM        provider.LLMProvider

	// Scan state
	isRunning  bool
	mu         sync.RWMutex
	cancelScan context.CancelFunc
	scanDone   chan struct{}
	stats      ScanStats
}

// NewEngine wires the components. A nil sim is built from cfg.Similarity and
// a nil index is created over sim's tokenizer.
func NewEngine(cfg *config.Config, logger *logrus.Entry, store storage.BugStorage, sim *similarity.Engine, index *search.Index) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = logrus.WithField("component", "engine")
	}

	if sim == nil {
		sim = similarity.New(SimilarityConfig(cfg.Similarity), logger.WithField("component", "similarity"))
	}
	if index == nil {
		index = search.NewIndex(sim.Tokenizer())
	}

	llm := provider.New(cfg.LLM)
	if llm != nil {
		logger.WithField("provider", llm.Name()).Info("LLM provider enabled")
	} else {
		logger.Info("No LLM provider configured, using rule and template fallbacks")
	}

	return &Engine{
		Config:     cfg,
		Logger:     logger,
		Storage:    store,
		Similarity: sim,
		Index:      index,
		LLM:        llm,
	}, nil
}

// SimilarityConfig converts the service configuration into engine settings.
func SimilarityConfig(c config.SimilarityConfig) similarity.Config {
	return similarity.Config{
		Weights: similarity.Weights{
			Jaccard:  c.JaccardWeight,
			Cosine:   c.CosineWeight,
			Sequence: c.SequenceWeight,
		},
		DictPath:          c.DictPath,
		DisableDictionary: c.DisableDict,
	}
}
