package audit

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/seoscan/internal/model"
)

// DefaultBatchConcurrency bounds how many sites a batch audits at once.
// Each site is still crawled sequentially and rate limited on its own.
const DefaultBatchConcurrency = 3

// BatchResult pairs one site of a batch with its outcome.
type BatchResult struct {
	// Site is the seed URL as given.
	Site string

	// Result is the audit result, nil when the audit failed outright.
	Result *model.AuditResult

	// Err is the audit failure, nil on success.
	Err error
}

// RunBatch audits several sites concurrently, each with its own
// Auditor so rate limits and cookie jars are not shared. Failures are
// collected per site rather than aborting the batch; the slice keeps
// the input order.
func RunBatch(ctx context.Context, sites []string, opts Options, concurrency int, logger *slog.Logger) []BatchResult {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Each goroutine writes only its own slice element, so no locking
	// is needed.
	results := make([]BatchResult, len(sites))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, site := range sites {
		g.Go(func() error {
			auditor, err := New(opts, logger.With("site", site))
			if err != nil {
				results[i] = BatchResult{Site: site, Err: err}
				return nil
			}

			result, err := auditor.Run(ctx, site)
			results[i] = BatchResult{Site: site, Result: result, Err: err}
			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()
	return results
}
