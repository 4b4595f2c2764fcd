// Package history records processed commands.
//
// Failover fronts a persistent store (MongoDB or SQLite) with a bounded
// in-memory ring. Every operation first waits on a one-shot readiness
// barrier that closes when the startup connection attempt finishes. After
// that, operations go to the persistent store while it is marked available
// and demote to the ring on the first failure. A connectivity signal from
// the store or a successful background probe promotes it again; records
// written while degraded stay in memory.
package history

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/pkg/logger"
	"github.com/doeshing/voicectl/internal/ports"
)

// Failover implements ports.HistoryRepository.
type Failover struct {
	store          ports.PersistentStore
	logger         ports.Logger
	connectTimeout time.Duration
	probeInterval  time.Duration
	now            func() time.Time

	persistent atomic.Bool
	ready      chan struct{}
	readyOnce  sync.Once
	startOnce  sync.Once
	buffer     *ring

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option customizes a Failover.
type Option func(*Failover)

// WithLogger sets the logger.
func WithLogger(log ports.Logger) Option {
	return func(f *Failover) {
		if log != nil {
			f.logger = log
		}
	}
}

// WithConnectTimeout bounds the startup connection attempt and the readiness wait.
func WithConnectTimeout(d time.Duration) Option {
	return func(f *Failover) {
		if d > 0 {
			f.connectTimeout = d
		}
	}
}

// WithProbeInterval sets how often a degraded layer pings the store. Zero disables probing.
func WithProbeInterval(d time.Duration) Option {
	return func(f *Failover) { f.probeInterval = d }
}

// WithCapacity sets the in-memory ring size.
func WithCapacity(n int) Option {
	return func(f *Failover) { f.buffer = newRing(n) }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(f *Failover) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFailover builds the layer. A nil store runs in degraded mode from the start.
func NewFailover(store ports.PersistentStore, opts ...Option) *Failover {
	f := &Failover{
		store:          store,
		logger:         logger.NewNop(),
		connectTimeout: domain.DefaultConnectTimeout,
		probeInterval:  domain.DefaultProbeInterval,
		now:            time.Now,
		ready:          make(chan struct{}),
		buffer:         newRing(domain.FallbackBufferCapacity),
		stop:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start launches the one-time asynchronous connection attempt. Later calls are no-ops.
func (f *Failover) Start(ctx context.Context) {
	f.startOnce.Do(func() {
		if f.store == nil {
			f.logger.Info("no persistent store configured, history kept in memory", nil)
			f.markReady()
			return
		}
		if notifier, ok := f.store.(ports.ConnectivityNotifier); ok {
			notifier.OnConnectivityChange(func(up bool) {
				if up {
					f.promote("connectivity regained")
				} else {
					f.demote("connectivity lost", nil)
				}
			})
		}

		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			f.connect(ctx)
			f.probeLoop(ctx)
		}()
	})
}

func (f *Failover) connect(ctx context.Context) {
	defer f.markReady()

	connectCtx, cancel := context.WithTimeout(ctx, f.connectTimeout)
	defer cancel()
	if err := f.store.Connect(connectCtx); err != nil {
		f.persistent.Store(false)
		f.logger.Warn("persistent store unavailable, history kept in memory", map[string]interface{}{
			"store": f.store.Name(),
			"error": err.Error(),
		})
		return
	}
	f.persistent.Store(true)
	f.logger.Info("persistent store connected", map[string]interface{}{"store": f.store.Name()})
}

func (f *Failover) probeLoop(ctx context.Context) {
	if f.probeInterval <= 0 {
		return
	}
	ticker := time.NewTicker(f.probeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.stop:
			return
		case <-ticker.C:
			if f.persistent.Load() {
				continue
			}
			probeCtx, cancel := context.WithTimeout(ctx, f.connectTimeout)
			err := f.store.Ping(probeCtx)
			cancel()
			if err == nil {
				f.promote("probe succeeded")
			}
		}
	}
}

func (f *Failover) markReady() {
	f.readyOnce.Do(func() { close(f.ready) })
}

// await blocks until the barrier closes or the connect timeout expires.
// Expiry leaves the persistent flag unset, so callers take the in-memory path.
// Caller cancellation is ignored: the command has already run and must be recorded.
func (f *Failover) await() {
	select {
	case <-f.ready:
		return
	default:
	}
	timer := time.NewTimer(f.connectTimeout)
	defer timer.Stop()
	select {
	case <-f.ready:
	case <-timer.C:
		f.logger.Warn("storage readiness wait expired, using in-memory history", nil)
	}
}

// storeContext detaches store calls from the caller and bounds them by the
// connect timeout.
func (f *Failover) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), f.connectTimeout)
}

func (f *Failover) demote(reason string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if !f.persistent.CompareAndSwap(true, false) {
		return
	}
	fields := map[string]interface{}{"reason": reason}
	if f.store != nil {
		fields["store"] = f.store.Name()
	}
	f.logger.Error("persistent store demoted, history kept in memory", err, fields)
}

func (f *Failover) promote(reason string) {
	if f.store == nil || !f.persistent.CompareAndSwap(false, true) {
		return
	}
	f.logger.Info("persistent store available again", map[string]interface{}{
		"store":  f.store.Name(),
		"reason": reason,
	})
}

// Save implements ports.HistoryRepository.
func (f *Failover) Save(ctx context.Context, rec domain.CommandRecord) (domain.CommandRecord, error) {
	f.await()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = f.now().UTC()
	}
	if f.persistent.Load() {
		storeCtx, cancel := f.storeContext(ctx)
		saved, err := f.store.Insert(storeCtx, rec)
		cancel()
		if err == nil {
			return saved, nil
		}
		f.demote("save", err)
	}
	if rec.ID == "" {
		rec.ID = newRecordID()
	}
	f.buffer.push(rec)
	return rec, nil
}

// List implements ports.HistoryRepository.
func (f *Failover) List(ctx context.Context, limit int) ([]domain.CommandRecord, error) {
	f.await()
	if f.persistent.Load() {
		storeCtx, cancel := f.storeContext(ctx)
		records, err := f.store.Recent(storeCtx, limit)
		cancel()
		if err == nil {
			return records, nil
		}
		f.demote("list", err)
	}
	return f.buffer.first(limit), nil
}

// Clear implements ports.HistoryRepository.
func (f *Failover) Clear(ctx context.Context) error {
	f.await()
	if f.persistent.Load() {
		storeCtx, cancel := f.storeContext(ctx)
		err := f.store.DeleteAll(storeCtx)
		cancel()
		if err == nil {
			return nil
		}
		f.demote("clear", err)
	}
	f.buffer.clear()
	return nil
}

// Ready is closed once the startup connection attempt has finished.
func (f *Failover) Ready() <-chan struct{} {
	return f.ready
}

// Persistent reports whether operations currently target the persistent store.
func (f *Failover) Persistent() bool {
	return f.persistent.Load()
}

// StoreName names the configured persistent store, or "memory".
func (f *Failover) StoreName() string {
	if f.store == nil {
		return domain.StorageDriverMemory
	}
	return f.store.Name()
}

// Buffered reports how many records the in-memory ring holds.
func (f *Failover) Buffered() int {
	return f.buffer.len()
}

// Close stops background probing and closes the persistent store.
func (f *Failover) Close(ctx context.Context) error {
	f.stopOnce.Do(func() { close(f.stop) })
	f.wg.Wait()
	if f.store == nil {
		return nil
	}
	return f.store.Close(ctx)
}

var _ ports.HistoryRepository = (*Failover)(nil)
