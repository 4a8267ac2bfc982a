package tidy

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cybergodev/tidy/internal"
	"github.com/cybergodev/tidy/internal/engine"
	"github.com/cybergodev/tidy/internal/logger"
)

// Default configuration values.
const (
	DefaultMaxInputSize      = 50 * 1024 * 1024 // 50MB
	DefaultMaxCacheEntries   = 1000             // 1000 entries
	DefaultWorkerPoolSize    = 4                // 4 workers
	DefaultCacheTTL          = time.Hour        // 1 hour
	DefaultMaxDepth          = 500              // 500 levels
	DefaultProcessingTimeout = 30 * time.Second // 30 seconds
)

// MaxNestingDepth is the largest MaxDepth a Config may ask for; the HTML
// tree builder holds no deeper nesting.
const MaxNestingDepth = engine.MaxNestingDepth

// Processor tidies documents with shared limits, a result cache and
// statistics. It is safe for concurrent use.
type Processor struct {
	config *Config
	cache  *internal.Cache[*Result]
	closed atomic.Bool
	stats  struct {
		totalProcessed   atomic.Int64
		cacheHits        atomic.Int64
		cacheMisses      atomic.Int64
		errorCount       atomic.Int64
		timeoutCount     atomic.Int64
		totalProcessTime atomic.Int64
	}
}

// Config holds processor configuration.
type Config struct {
	MaxInputSize      int
	MaxCacheEntries   int
	CacheTTL          time.Duration
	WorkerPoolSize    int
	MaxDepth          int
	ProcessingTimeout time.Duration
	Engine            string // registered engine name; empty selects the default
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		MaxInputSize:      DefaultMaxInputSize,
		MaxCacheEntries:   DefaultMaxCacheEntries,
		CacheTTL:          DefaultCacheTTL,
		WorkerPoolSize:    DefaultWorkerPoolSize,
		MaxDepth:          DefaultMaxDepth,
		ProcessingTimeout: DefaultProcessingTimeout,
		Engine:            engine.DefaultBackend,
	}
}

func validateConfig(c Config) error {
	switch {
	case c.MaxInputSize <= 0:
		return fmt.Errorf("%w: MaxInputSize must be positive", ErrInvalidConfig)
	case c.MaxCacheEntries < 0:
		return fmt.Errorf("%w: MaxCacheEntries cannot be negative", ErrInvalidConfig)
	case c.CacheTTL < 0:
		return fmt.Errorf("%w: CacheTTL cannot be negative", ErrInvalidConfig)
	case c.WorkerPoolSize <= 0:
		return fmt.Errorf("%w: WorkerPoolSize must be positive", ErrInvalidConfig)
	case c.MaxDepth <= 0:
		return fmt.Errorf("%w: MaxDepth must be positive", ErrInvalidConfig)
	case c.MaxDepth > MaxNestingDepth:
		return fmt.Errorf("%w: MaxDepth cannot exceed %d", ErrInvalidConfig, MaxNestingDepth)
	case c.ProcessingTimeout < 0:
		return fmt.Errorf("%w: ProcessingTimeout cannot be negative", ErrInvalidConfig)
	}
	if _, ok := engine.Lookup(c.Engine); !ok {
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnknownEngine, c.Engine)
	}
	return nil
}

// Statistics contains processing metrics.
type Statistics struct {
	TotalProcessed     int64
	CacheHits          int64
	CacheMisses        int64
	ErrorCount         int64
	TimeoutCount       int64
	AverageProcessTime time.Duration
}

// New creates a Processor with the given configuration.
func New(config Config) (*Processor, error) {
	if config.Engine == "" {
		config.Engine = engine.DefaultBackend
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &Processor{
		config: &config,
		cache:  internal.NewCache[*Result](config.MaxCacheEntries, config.CacheTTL),
	}, nil
}

// NewWithDefaults creates a Processor with default configuration.
func NewWithDefaults() *Processor {
	p, _ := New(DefaultConfig())
	return p
}

// ParseString tidies document and returns only the serialized output.
func (p *Processor) ParseString(document string, options Options) (string, error) {
	res, err := p.Tidy(document, options)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Tidy tidies document with the given options. Results are cached by
// document and options; a cached Result is shared and must not be
// modified.
func (p *Processor) Tidy(document string, options Options) (*Result, error) {
	if p.closed.Load() {
		return nil, ErrProcessorClosed
	}

	startTime := time.Now()

	if len(document) > p.config.MaxInputSize {
		p.stats.errorCount.Add(1)
		return nil, fmt.Errorf("%w: size=%d, max=%d", ErrInputTooLarge, len(document), p.config.MaxInputSize)
	}

	cacheKey := p.generateCacheKey(document, options)
	if cached, ok := p.cache.Get(cacheKey); ok {
		p.stats.cacheHits.Add(1)
		p.stats.totalProcessed.Add(1)
		return cached, nil
	}
	p.stats.cacheMisses.Add(1)

	var result *Result
	var err error
	if p.config.ProcessingTimeout > 0 {
		result, err = p.processWithTimeout(document, options)
	} else {
		result, err = p.process(document, options)
	}

	if err != nil {
		p.stats.errorCount.Add(1)
		logger.Debug("tidy failed", "engine", p.config.Engine, "error", err)
		return nil, err
	}

	processingTime := time.Since(startTime)
	result.ProcessingTime = processingTime
	p.stats.totalProcessTime.Add(int64(processingTime))
	p.stats.totalProcessed.Add(1)

	if p.config.MaxCacheEntries > 0 {
		p.cache.Set(cacheKey, result)
	}

	return result, nil
}

func (p *Processor) process(document string, options Options) (*Result, error) {
	return run(p.config.Engine, engine.Limits{MaxDepth: p.config.MaxDepth}, []byte(document), options)
}

// processWithTimeout processes content with timeout protection. The
// worker keeps running after a timeout and still releases its handle.
func (p *Processor) processWithTimeout(document string, options Options) (*Result, error) {
	type processResult struct {
		result *Result
		err    error
	}

	resultChan := make(chan processResult, 1)
	go func() {
		result, err := p.process(document, options)
		resultChan <- processResult{result: result, err: err}
	}()

	timer := time.NewTimer(p.config.ProcessingTimeout)
	defer timer.Stop()

	select {
	case res := <-resultChan:
		return res.result, res.err
	case <-timer.C:
		p.stats.timeoutCount.Add(1)
		logger.Warn("tidy timed out", "timeout", p.config.ProcessingTimeout, "bytes", len(document))
		return nil, ErrProcessingTimeout
	}
}

// TidyFile reads and tidies a file. The file content is handed to the
// engine as bytes, so input-encoding applies.
func (p *Processor) TidyFile(filePath string, options Options) (*Result, error) {
	if p.closed.Load() {
		return nil, ErrProcessorClosed
	}
	if filePath == "" {
		return nil, errors.New("empty file path")
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", filePath, err)
	}
	return p.Tidy(string(data), options)
}

// TidyBatch tidies multiple documents in parallel using a worker pool.
// Results keep the input order; failed items are nil.
func (p *Processor) TidyBatch(documents []string, options Options) ([]*Result, error) {
	if p.closed.Load() {
		return nil, ErrProcessorClosed
	}

	if len(documents) == 0 {
		return []*Result{}, nil
	}

	results := make([]*Result, len(documents))
	errs := make([]error, len(documents))
	sem := make(chan struct{}, p.config.WorkerPoolSize)
	var wg sync.WaitGroup

	for i, document := range documents {
		wg.Add(1)
		go func(idx int, doc string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx], errs[idx] = p.Tidy(doc, options)
		}(i, document)
	}

	wg.Wait()
	return collectResults(results, errs, nil)
}

// TidyBatchFiles tidies multiple files in parallel using a worker pool.
func (p *Processor) TidyBatchFiles(filePaths []string, options Options) ([]*Result, error) {
	if p.closed.Load() {
		return nil, ErrProcessorClosed
	}

	if len(filePaths) == 0 {
		return []*Result{}, nil
	}

	results := make([]*Result, len(filePaths))
	errs := make([]error, len(filePaths))
	sem := make(chan struct{}, p.config.WorkerPoolSize)
	var wg sync.WaitGroup

	for i, path := range filePaths {
		wg.Add(1)
		go func(idx int, filePath string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx], errs[idx] = p.TidyFile(filePath, options)
		}(i, path)
	}

	wg.Wait()
	return collectResults(results, errs, filePaths)
}

func collectResults(results []*Result, errs []error, names []string) ([]*Result, error) {
	var firstErr error
	successCount := 0
	failCount := 0

	for i, err := range errs {
		if err != nil {
			failCount++
			if firstErr == nil {
				if names != nil {
					firstErr = fmt.Errorf("%s: %w", names[i], err)
				} else {
					firstErr = fmt.Errorf("item %d: %w", i, err)
				}
			}
		} else {
			successCount++
		}
	}

	switch {
	case successCount == 0:
		return results, fmt.Errorf("all %d items failed: %w", len(results), firstErr)
	case failCount > 0:
		return results, fmt.Errorf("partial failure (%d/%d succeeded): %w", successCount, len(results), firstErr)
	default:
		return results, nil
	}
}

// GetStatistics returns processing statistics.
func (p *Processor) GetStatistics() Statistics {
	totalProcessed := p.stats.totalProcessed.Load()
	totalTime := time.Duration(p.stats.totalProcessTime.Load())
	var avgTime time.Duration
	if totalProcessed > 0 {
		avgTime = totalTime / time.Duration(totalProcessed)
	}
	return Statistics{
		TotalProcessed:     totalProcessed,
		CacheHits:          p.stats.cacheHits.Load(),
		CacheMisses:        p.stats.cacheMisses.Load(),
		ErrorCount:         p.stats.errorCount.Load(),
		TimeoutCount:       p.stats.timeoutCount.Load(),
		AverageProcessTime: avgTime,
	}
}

// ClearCache clears the cache and resets cache statistics.
func (p *Processor) ClearCache() {
	p.cache.Clear()
	p.stats.cacheHits.Store(0)
	p.stats.cacheMisses.Store(0)
}

// Close releases processor resources.
func (p *Processor) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.cache.Clear()
	return nil
}

// generateCacheKey hashes the document together with the options in
// sorted order. Values are written with their dynamic type so that 1 and
// "1" produce different keys.
func (p *Processor) generateCacheKey(document string, options Options) string {
	h := sha256.New()
	for _, name := range sortedNames(options) {
		fmt.Fprintf(h, "%s\x00%T\x00%v\x00", strings.ToLower(name), options[name], options[name])
	}
	h.Write([]byte{0xff})
	h.Write([]byte(document))
	var buf [64]byte
	sum := h.Sum(buf[:0])
	return hex.EncodeToString(sum)
}
