package parser

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/slopgraph/internal/logging"
	"github.com/dusk-indust/slopgraph/internal/source"
)

// Options configures ParseAll.
type Options struct {
	// Workers bounds concurrent parses; 0 means runtime.NumCPU().
	Workers int
	Logger  logrus.FieldLogger
}

// ParseAll parses files concurrently and returns the records keyed by
// path. It returns once every worker has finished. Files with an
// unsupported language tag are skipped. The only error is cancellation of
// ctx, in which case the records parsed so far are returned with it.
func ParseAll(ctx context.Context, files []source.File, opts Options) (source.Collection, error) {
	log := logging.OrDiscard(opts.Logger)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	parsers := make(map[source.Language]Parser)
	for _, f := range files {
		if _, seen := parsers[f.Language]; seen {
			continue
		}
		p, err := ForLanguage(f.Language, log)
		if err != nil {
			log.WithError(err).WithField("path", f.Path).Warn("skipping files with unsupported language")
		}
		parsers[f.Language] = p
	}

	var (
		mu      sync.Mutex
		results = make(source.Collection, len(files))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, f := range files {
		p := parsers[f.Language]
		if p == nil {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pf := p.Parse(f.Path)

			mu.Lock()
			results[f.Path] = pf
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("parse files: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("parse files: %w", err)
	}

	log.WithFields(logrus.Fields{"files": len(results), "workers": workers}).Debug("parsed source files")
	return results, nil
}
