package audit

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Event is a single security-relevant occurrence. Fields never contain
// secrets; only identifiers, outcomes and counts.
type Event struct {
	Action     string
	IdentityID string
	Email      string
	TenantID   string
	IPAddress  string
	Success    bool
	Detail     string
	At         time.Time
}

// Sink accepts audit events without ever blocking the caller.
type Sink interface {
	Record(ev Event)
	Close()
}

// logSink drains a bounded queue into zap on a background goroutine. When
// the queue is full the event is dropped and counted; the primary path must
// never wait on auditing. Shutdown is signalled on a separate channel so
// the queue is never closed and a late Record after Close only drops.
type logSink struct {
	logger    *zap.Logger
	queue     chan Event
	done      chan struct{}
	drained   chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
}

func NewSink(logger *zap.Logger, buffer int) Sink {
	if buffer <= 0 {
		buffer = 1024
	}
	s := &logSink{
		logger:  logger,
		queue:   make(chan Event, buffer),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
	go s.drain()
	return s
}

func (s *logSink) Record(ev Event) {
	select {
	case <-s.done:
		s.dropped.Add(1)
		return
	default:
	}

	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case s.queue <- ev:
	default:
		s.dropped.Add(1)
	}
}

func (s *logSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	<-s.drained
}

func (s *logSink) drain() {
	defer close(s.drained)
	for {
		select {
		case ev := <-s.queue:
			s.log(ev)
		case <-s.done:
			// Flush whatever was queued before shutdown.
			for {
				select {
				case ev := <-s.queue:
					s.log(ev)
				default:
					if n := s.dropped.Load(); n > 0 {
						s.logger.Warn("audit events dropped", zap.Int64("count", n))
					}
					return
				}
			}
		}
	}
}

func (s *logSink) log(ev Event) {
	s.logger.Info("audit",
		zap.String("action", ev.Action),
		zap.String("identity_id", ev.IdentityID),
		zap.String("email", ev.Email),
		zap.String("tenant_id", ev.TenantID),
		zap.String("ip", ev.IPAddress),
		zap.Bool("success", ev.Success),
		zap.String("detail", ev.Detail),
		zap.Time("at", ev.At),
	)
}

// nopSink discards everything. Used in tests.
type nopSink struct{}

func (nopSink) Record(Event) {}
func (nopSink) Close()       {}

func NewNop() Sink {
	return nopSink{}
}
