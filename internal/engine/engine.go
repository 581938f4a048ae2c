// Package engine runs previews and privacy scans across containers and
// tables, wiring the catalog, sampler, scanner and risk packages.
//
// An Engine holds no per-run state and may run several previews or scans
// at once.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/dbsmedya/piiscan/internal/catalog"
	"github.com/dbsmedya/piiscan/internal/config"
	"github.com/dbsmedya/piiscan/internal/estimate"
	"github.com/dbsmedya/piiscan/internal/logger"
	"github.com/dbsmedya/piiscan/internal/pattern"
	"github.com/dbsmedya/piiscan/internal/sampler"
)

// Phase labels passed to a ProgressFunc.
type Phase string

const (
	PhaseConnect     Phase = "connect"
	PhaseStructure   Phase = "structure"
	PhasePatternScan Phase = "pattern-scan"
	PhaseSummarize   Phase = "summarize"
)

// ProgressFunc receives coarse progress updates. Calls are serialized
// even when tables are scanned by several workers. container and table
// are empty for run-level phases.
type ProgressFunc func(container, table string, phase Phase, percent float64)

// Options tune a run.
type Options struct {
	EngineLabel string   // "MySQL" or "Oracle", copied into documents
	SampleSize  int      // rows per table, clamped to [10, 1000]
	Workers     int      // tables scanned concurrently per container; <= 1 is sequential
	Denylist    []string // containers treated as system in addition to the pattern rules
}

// Engine coordinates one backend.
type Engine struct {
	introspector catalog.Introspector
	sampler      sampler.Sampler
	library      *pattern.Library
	profile      estimate.Profile
	opts         Options
	logger       *logger.Logger
}

// New creates an engine from its collaborators.
func New(intro catalog.Introspector, s sampler.Sampler, lib *pattern.Library, profile estimate.Profile, opts Options, log *logger.Logger) (*Engine, error) {
	if intro == nil {
		return nil, fmt.Errorf("introspector is nil")
	}
	if s == nil {
		return nil, fmt.Errorf("sampler is nil")
	}
	if lib == nil {
		return nil, fmt.Errorf("pattern library is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	opts.SampleSize = config.ClampSampleSize(opts.SampleSize)
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.EngineLabel == "" {
		opts.EngineLabel = intro.Engine()
	}
	if len(opts.Denylist) == 0 {
		opts.Denylist = catalog.SystemDenylist(intro.Engine())
	}

	return &Engine{
		introspector: intro,
		sampler:      s,
		library:      lib,
		profile:      profile,
		opts:         opts,
		logger:       log,
	}, nil
}

// Build assembles the engine for cfg's backend over an open pool.
func Build(cfg *config.Config, db *sql.DB, log *logger.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	engine := cfg.Source.Engine
	lib, err := pattern.DefaultLibrary(engine).WithExtra(cfg.Patterns.Extra)
	if err != nil {
		return nil, err
	}
	lib = lib.WithKeywords(cfg.Patterns.Keywords...)

	sampleSize := config.ClampSampleSize(cfg.Scan.SampleSize)
	samplerOpts := sampler.Options{
		SampleSize:   sampleSize,
		QueryTimeout: cfg.Scan.QueryTimeout,
		Logger:       log,
	}

	var (
		intro catalog.Introspector
		s     sampler.Sampler
	)
	switch engine {
	case config.EngineOracle:
		intro = catalog.NewOracle(db, cfg.Scan.QueryTimeout, log)
		s = sampler.NewOracle(db, samplerOpts)
	case config.EngineMySQL:
		intro = catalog.NewMySQL(db, cfg.Scan.QueryTimeout, log)
		s = sampler.NewMySQL(db, samplerOpts)
	default:
		return nil, fmt.Errorf("unsupported engine %q", engine)
	}

	denylist := append(catalog.SystemDenylist(engine), cfg.Scan.ExcludeContainers...)

	return New(intro, s, lib, estimate.ProfileFor(engine), Options{
		EngineLabel: cfg.EngineLabel(),
		SampleSize:  sampleSize,
		Workers:     cfg.Scan.Workers,
		Denylist:    denylist,
	}, log)
}

// SampleSize returns the effective sample size.
func (e *Engine) SampleSize() int {
	return e.opts.SampleSize
}

// Library returns the pattern library in use.
func (e *Engine) Library() *pattern.Library {
	return e.library
}

// ListContainers returns user and system containers. System containers
// are those on the denylist or matching the system name rules.
func (e *Engine) ListContainers(ctx context.Context) (user, system []string, err error) {
	all, err := e.introspector.ListContainers(ctx)
	if err != nil {
		return nil, nil, err
	}
	user, system = catalog.FilterSystemContainers(all, e.opts.Denylist)
	return user, system, nil
}

// resolveContainers applies the container filter. Explicit names are
// honored even if they look like system containers; names the server
// does not know are skipped with a warning.
func (e *Engine) resolveContainers(ctx context.Context, filter []string) ([]string, error) {
	if len(filter) == 0 {
		user, system, err := e.ListContainers(ctx)
		if err != nil {
			return nil, err
		}
		if len(system) > 0 {
			e.logger.Debugf("Skipping %d system containers: %s", len(system), strings.Join(system, ", "))
		}
		return user, nil
	}

	all, err := e.introspector.ListContainers(ctx)
	if err != nil {
		return nil, err
	}

	var selected []string
	for _, want := range filter {
		found := ""
		for _, have := range all {
			if have == want || (found == "" && strings.EqualFold(have, want)) {
				found = have
			}
		}
		if found == "" {
			e.logger.Warnf("Container %q not found, skipping", want)
			continue
		}
		selected = append(selected, found)
	}
	return selected, nil
}

// progressReporter serializes progress callbacks.
type progressReporter struct {
	mu sync.Mutex
	fn ProgressFunc
}

func (p *progressReporter) report(container, table string, phase Phase, percent float64) {
	if p == nil || p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fn(container, table, phase, percent)
}

func percentOf(done, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(done) / float64(total) * 100
}
