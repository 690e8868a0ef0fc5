// Package analyzer runs the full identify pipeline: decode, preprocess,
// predict, rank. An Analyzer is built once at startup and shared by every
// front end.
package analyzer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/Brownie44l1/analyart/internal/preprocess"
	"github.com/Brownie44l1/analyart/internal/ranking"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// ErrDecode is returned when uploaded bytes are not a supported image.
var ErrDecode = errors.New("unsupported or corrupt image")

// Predictor scores one preprocessed tensor.
type Predictor interface {
	Predict(ctx context.Context, input []float32) ([]float32, error)
}

// Options configures New.
type Options struct {
	Labels     []string
	Preprocess preprocess.Options
	// CacheSize bounds the number of results remembered per image digest.
	// Zero disables caching.
	CacheSize int
	Logger    *zap.Logger
}

// Analyzer holds the loaded model and everything needed to score an image.
type Analyzer struct {
	predictor Predictor
	labels    []string
	pre       preprocess.Options
	cache     *lru.Cache[string, ranking.Result]
	logger    *zap.Logger
}

// New builds an Analyzer around a loaded predictor.
func New(p Predictor, opts Options) (*Analyzer, error) {
	if p == nil {
		return nil, fmt.Errorf("analyzer requires a predictor")
	}
	if len(opts.Labels) == 0 {
		return nil, fmt.Errorf("analyzer requires a label table")
	}
	if err := opts.Preprocess.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	a := &Analyzer{
		predictor: p,
		labels:    append([]string(nil), opts.Labels...),
		pre:       opts.Preprocess,
		logger:    opts.Logger,
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, ranking.Result](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		a.cache = cache
	}
	return a, nil
}

// Labels returns a copy of the class table.
func (a *Analyzer) Labels() []string {
	return append([]string(nil), a.labels...)
}

// InputSize is the number of values a raw tensor must have.
func (a *Analyzer) InputSize() int {
	return a.pre.InputSize()
}

// Identify classifies a decoded image.
func (a *Analyzer) Identify(ctx context.Context, img image.Image) (ranking.Result, error) {
	return a.IdentifyTensor(ctx, preprocess.Tensor(img, a.pre))
}

// IdentifyTensor classifies an already preprocessed tensor.
func (a *Analyzer) IdentifyTensor(ctx context.Context, input []float32) (ranking.Result, error) {
	scores, err := a.predictor.Predict(ctx, input)
	if err != nil {
		return ranking.Result{}, fmt.Errorf("prediction failed: %w", err)
	}
	res := ranking.Rank(scores, a.labels)
	a.logger.Debug("image classified",
		zap.String("top", res.Top.Label),
		zap.Int("percent", res.Top.Percent),
		zap.Bool("recognized", res.Recognized))
	return res, nil
}

// IdentifyBytes decodes an encoded image and classifies it. Identical bytes
// are answered from the cache when one is configured.
func (a *Analyzer) IdentifyBytes(ctx context.Context, data []byte) (ranking.Result, error) {
	var key string
	if a.cache != nil {
		sum := sha256.Sum256(data)
		key = hex.EncodeToString(sum[:])
		if res, ok := a.cache.Get(key); ok {
			a.logger.Debug("result cache hit", zap.String("digest", key))
			return res, nil
		}
	}

	img, format, err := preprocess.Decode(bytes.NewReader(data))
	if err != nil {
		return ranking.Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	a.logger.Debug("image decoded",
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))

	res, err := a.Identify(ctx, img)
	if err != nil {
		return ranking.Result{}, err
	}
	if a.cache != nil {
		a.cache.Add(key, res)
	}
	return res, nil
}

// Close releases the predictor when it holds resources.
func (a *Analyzer) Close() error {
	if c, ok := a.predictor.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
