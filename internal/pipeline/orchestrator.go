package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/cardcrawl/internal/model"
	"github.com/nao1215/cardcrawl/internal/render"
	"github.com/nao1215/cardcrawl/internal/storage"
)

// Discoverer lists the card identifiers on one listing page.
// crawler.Walker implements it.
type Discoverer interface {
	DiscoverIDs(ctx context.Context, session render.Session, page int) ([]string, error)
}

// CardResolver turns one identifier into a card, or nil when the detail
// page could not be resolved. crawler.Resolver implements it.
type CardResolver interface {
	Resolve(ctx context.Context, session render.Session, id string) *model.Card
}

// State is the orchestrator's lifecycle state.
type State string

const (
	// StateInit covers opening the session and reading the checkpoint.
	StateInit State = "init"
	// StatePageLoop is the sweep over listing pages.
	StatePageLoop State = "page_loop"
	// StateCompleted means every page up to the bound was processed.
	StateCompleted State = "completed"
	// StateAborted means the run stopped early on a fatal error.
	StateAborted State = "aborted"
)

// Result summarizes one run.
type Result struct {
	// StartPage is the first page the run attempted.
	StartPage int

	// LastCompletedPage is the checkpoint value when the run ended.
	LastCompletedPage int

	// PagesProcessed counts pages whose checkpoint was written by this run.
	PagesProcessed int

	// Appended counts records written to the dataset.
	Appended int

	// Skipped counts identifiers whose detail page could not be resolved.
	Skipped int

	// SkippedIDs lists the skipped identifiers in encounter order.
	SkippedIDs []string

	// State is StateCompleted or StateAborted.
	State State

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// Progress describes one completed page.
type Progress struct {
	Page       int
	TotalPages int
	IDs        int
	Appended   int
	Skipped    int
}

// ProgressFunc receives a Progress after each page's checkpoint is written.
type ProgressFunc func(Progress)

// Orchestrator drives the resumable sweep: for each listing page after the
// checkpoint it discovers identifiers, resolves and appends each card, and
// then advances the checkpoint.
//
// Pages and identifiers are processed strictly in order on one goroutine
// through a single renderer session. The checkpoint is written only after
// every identifier of a page was attempted, so a page is either fully
// claimed or redone on the next run.
type Orchestrator struct {
	renderer   render.Renderer
	walker     Discoverer
	resolver   CardResolver
	checkpoint storage.CheckpointStore
	dataset    storage.DatasetStore

	totalPages   int
	requestDelay time.Duration
	progress     ProgressFunc
	logger       *slog.Logger
}

// Option is a function that configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger for the orchestrator.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithTotalPages sets the inclusive upper bound of the sweep.
func WithTotalPages(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.totalPages = n
		}
	}
}

// WithRequestDelay sets a pause before every detail load after the first.
func WithRequestDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.requestDelay = d
		}
	}
}

// WithProgress registers a callback invoked after each completed page.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// DefaultTotalPages is the bound used when WithTotalPages is not given.
const DefaultTotalPages = 1500

// New creates an Orchestrator.
func New(
	renderer render.Renderer,
	walker Discoverer,
	resolver CardResolver,
	checkpoint storage.CheckpointStore,
	dataset storage.DatasetStore,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		renderer:   renderer,
		walker:     walker,
		resolver:   resolver,
		checkpoint: checkpoint,
		dataset:    dataset,
		totalPages: DefaultTotalPages,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Run performs one sweep from the page after the checkpoint up to the
// configured bound.
//
// A listing failure, a persistence failure or cancellation aborts the run.
// The returned error then wraps the cause (crawler.ErrPageLoad,
// storage.ErrPersistence or ErrInterrupted) and the checkpoint is left at
// the last fully processed page. The renderer session is closed on every
// path. The Result is never nil.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	result := &Result{State: StateInit}
	defer func() {
		result.Elapsed = time.Since(started)
	}()

	session, err := o.renderer.Open(ctx)
	if err != nil {
		result.State = StateAborted
		return result, fmt.Errorf("open renderer session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			o.logger.Warn("failed to close renderer session", "error", err)
		}
	}()

	last, err := o.checkpoint.Read(ctx)
	if err != nil {
		result.State = StateAborted
		return result, fmt.Errorf("read checkpoint: %w", err)
	}
	result.StartPage = last + 1
	result.LastCompletedPage = last

	o.logger.Info("starting crawl",
		"start_page", result.StartPage,
		"total_pages", o.totalPages,
	)

	result.State = StatePageLoop
	loads := 0
	for page := result.StartPage; page <= o.totalPages; page++ {
		if err := ctx.Err(); err != nil {
			return o.abort(result, fmt.Errorf("%w before page %d: %w", ErrInterrupted, page, err))
		}

		ids, err := o.walker.DiscoverIDs(ctx, session, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return o.abort(result, fmt.Errorf("%w at page %d: %w", ErrInterrupted, page, ctxErr))
			}
			return o.abort(result, err)
		}
		if len(ids) == 0 {
			o.logger.Info("listing page has no cards", "page", page)
		}

		pageAppended, pageSkipped := 0, 0
		for _, id := range ids {
			if loads > 0 && o.requestDelay > 0 {
				if err := wait(ctx, o.requestDelay); err != nil {
					break
				}
			}
			loads++

			card := o.resolver.Resolve(ctx, session, id)
			if card == nil {
				pageSkipped++
				result.Skipped++
				result.SkippedIDs = append(result.SkippedIDs, id)
				continue
			}

			if err := o.dataset.Append(ctx, card); err != nil {
				return o.abort(result, fmt.Errorf("append card %s from page %d: %w", id, page, err))
			}
			pageAppended++
			result.Appended++
		}

		// An interrupted page is never claimed; its cards are redone next run.
		if err := ctx.Err(); err != nil {
			return o.abort(result, fmt.Errorf("%w during page %d: %w", ErrInterrupted, page, err))
		}

		if err := o.checkpoint.Write(ctx, page); err != nil {
			return o.abort(result, fmt.Errorf("write checkpoint %d: %w", page, err))
		}
		result.LastCompletedPage = page
		result.PagesProcessed++

		o.logger.Info("page completed",
			"page", page,
			"ids", len(ids),
			"appended", pageAppended,
			"skipped", pageSkipped,
		)
		if o.progress != nil {
			o.progress(Progress{
				Page:       page,
				TotalPages: o.totalPages,
				IDs:        len(ids),
				Appended:   pageAppended,
				Skipped:    pageSkipped,
			})
		}
	}

	result.State = StateCompleted
	o.logger.Info("crawl completed",
		"pages", result.PagesProcessed,
		"appended", result.Appended,
		"skipped", result.Skipped,
	)
	return result, nil
}

// abort marks result aborted and logs the cause.
func (o *Orchestrator) abort(result *Result, err error) (*Result, error) {
	result.State = StateAborted
	level := slog.LevelError
	if errors.Is(err, ErrInterrupted) {
		level = slog.LevelWarn
	}
	o.logger.Log(context.Background(), level, "crawl aborted",
		"last_completed_page", result.LastCompletedPage,
		"error", err,
	)
	return result, err
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
