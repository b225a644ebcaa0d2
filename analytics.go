package showcase

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const defaultAnalyticsBuffer = 256

// AnalyticsAction names what the user did.
type AnalyticsAction struct {
	Name  string // e.g. "navigate", "zoom", "toggle"
	Field string // the control or surface acted on
	Value string
}

// AnalyticsRecord is one structured interaction record.
type AnalyticsRecord struct {
	Session  uuid.UUID
	Category string
	Index    int
	ItemKind MediaKind
	Action   AnalyticsAction
	At       time.Time
}

// AnalyticsSink receives records on the delivery goroutine.
type AnalyticsSink interface {
	Track(AnalyticsRecord)
}

// AnalyticsFunc adapts a function to AnalyticsSink.
type AnalyticsFunc func(AnalyticsRecord)

// Track implements AnalyticsSink.
func (f AnalyticsFunc) Track(r AnalyticsRecord) { f(r) }

// Analytics delivers records to a sink from its own goroutine. Record
// never blocks: when the buffer is full the record is dropped and counted.
type Analytics struct {
	session uuid.UUID
	sink    AnalyticsSink
	ch      chan AnalyticsRecord
	done    chan struct{}
	dropped atomic.Int64

	mu     sync.Mutex
	closed bool
}

// NewAnalytics starts delivery to sink with a buffer of the given size
// (zero selects the default). Every record carries a fresh session id.
func NewAnalytics(sink AnalyticsSink, buffer int) *Analytics {
	if buffer <= 0 {
		buffer = defaultAnalyticsBuffer
	}
	a := &Analytics{
		session: uuid.New(),
		sink:    sink,
		ch:      make(chan AnalyticsRecord, buffer),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Analytics) run() {
	defer close(a.done)
	for r := range a.ch {
		a.sink.Track(r)
	}
}

// Session returns the id stamped on every record.
func (a *Analytics) Session() uuid.UUID { return a.session }

// Dropped returns how many records were discarded because the buffer was
// full or delivery had stopped.
func (a *Analytics) Dropped() int64 { return a.dropped.Load() }

// Record queues r for delivery without blocking.
func (a *Analytics) Record(r AnalyticsRecord) {
	if a == nil {
		return
	}
	r.Session = a.session
	if r.At.IsZero() {
		r.At = time.Now()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		a.dropped.Add(1)
		return
	}
	select {
	case a.ch <- r:
	default:
		a.dropped.Add(1)
	}
}

// Close stops accepting records and waits until the queued ones have been
// delivered.
func (a *Analytics) Close() {
	if a == nil {
		return
	}
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.ch)
	}
	a.mu.Unlock()
	<-a.done
}
