package mmapvec

import "log/slog"

// DefaultIncrement is the element count by which capacity grows when a vector
// runs out of room, and the default capacity of anonymous vectors. Persisted
// files in the wild were sized against this value; change it only for
// freshly created data sets.
const DefaultIncrement = 1024 * 1024

// MemoryAcquirer is an interface for budgeting mapped memory. A refusal
// surfaces as a resource error on the triggering operation.
// resource.Controller implements it.
type MemoryAcquirer interface {
	TryAcquireMemory(bytes int64) bool
	ReleaseMemory(bytes int64)
}

// Tracker records which indices have been written, so that a deliberately
// stored sentinel value survives ShrinkToFit. occupancy.Tracker implements it.
type Tracker interface {
	// Mark records index i as written.
	Mark(i int)
	// TrimmedLen returns one past the highest marked index below limit,
	// or 0 when no index below limit is marked.
	TrimmedLen(limit int) int
}

type options struct {
	capacity  int
	increment int
	logger    *slog.Logger
	acquirer  MemoryAcquirer
	tracker   Tracker
}

func defaultOptions() options {
	return options{
		increment: DefaultIncrement,
		logger:    slog.New(slog.DiscardHandler),
	}
}

// Option configures a Vector at construction time.
type Option func(*options)

// WithCapacity sets the initial capacity of an anonymous vector. It is
// ignored by NewFile, which takes the capacity directly. Defaults to the
// growth increment.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		o.capacity = capacity
	}
}

// WithIncrement sets the growth increment in elements. Growth always reserves
// one increment beyond the immediate need, amortizing remap cost.
func WithIncrement(increment int) Option {
	return func(o *options) {
		if increment > 0 {
			o.increment = increment
		}
	}
}

// WithLogger sets the logger used for growth and lifecycle events.
// Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMemoryAcquirer budgets the vector's mapped bytes against the given
// acquirer. Mapping and growth acquire, Close releases.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(o *options) {
		o.acquirer = acquirer
	}
}

// WithTracker attaches an occupancy tracker. Set and PushBack mark written
// indices; ShrinkToFit then trims by tracked occupancy instead of scanning
// for trailing sentinels.
func WithTracker(tracker Tracker) Option {
	return func(o *options) {
		o.tracker = tracker
	}
}
