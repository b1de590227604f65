package ids

import (
	"context"

	"github.com/mwantia/tomodb/pkg/log"
)

// Source lists every identifier currently held by the backing table.
type Source interface {
	ListDatasetIDs(ctx context.Context) ([]string, error)
}

// FailureObserver is notified when the identifier source cannot be read.
type FailureObserver func(err error)

// Allocator computes the next identifier from a Source.
//
// The result is advisory. Two callers reading the source at the same time get
// the same identifier; the store rejects the second insert and the caller is
// expected to allocate again.
type Allocator struct {
	pattern  Pattern
	source   Source
	log      log.LoggerService
	observer FailureObserver
}

func NewAllocator(pattern Pattern, source Source, logger log.LoggerService) *Allocator {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Allocator{
		pattern: pattern,
		source:  source,
		log:     logger,
	}
}

// OnFailure registers an observer for source failures, e.g. a metrics counter.
func (a *Allocator) OnFailure(observer FailureObserver) *Allocator {
	a.observer = observer
	return a
}

func (a *Allocator) Pattern() Pattern {
	return a.pattern
}

// Next never fails: when the source is unavailable it reports the error and
// returns the base identifier.
func (a *Allocator) Next(ctx context.Context) string {
	existing, ok := a.list(ctx)
	if !ok {
		return a.pattern.Base()
	}

	next := a.pattern.Next(existing)
	a.log.Debug("Allocated identifier %s from %d existing", next, len(existing))
	return next
}

// NextAfter allocates again after taken was rejected by the store. When the
// regular allocation would not move past taken, e.g. because the catalog has
// grown beyond the padded width, the result steps past every stored
// identifier instead.
func (a *Allocator) NextAfter(ctx context.Context, taken string) string {
	existing, ok := a.list(ctx)
	if !ok {
		return a.pattern.Base()
	}

	next := a.pattern.Next(existing)
	if floor := a.pattern.Sequence(taken); a.pattern.Sequence(next) <= floor {
		highest := max(a.pattern.Highest(existing), floor)
		next = a.pattern.Format(highest + 1)
	}
	a.log.Debug("Allocated identifier %s after %s was taken", next, taken)
	return next
}

func (a *Allocator) list(ctx context.Context) ([]string, bool) {
	existing, err := a.source.ListDatasetIDs(ctx)
	if err != nil {
		a.log.Error("Failed to list dataset identifiers, falling back to %s: %v", a.pattern.Base(), err)
		if a.observer != nil {
			a.observer(err)
		}
		return nil, false
	}
	return existing, true
}
