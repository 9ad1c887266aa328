package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Loader reads a previously saved state. It returns ErrNoState when there
// is nothing to read and wraps ErrCorruptState when the data is unreadable.
type Loader interface {
	Load(ctx context.Context) (State, error)
}

// Persister receives the ledger state after every committed mutation.
type Persister interface {
	Save(ctx context.Context, s State) error
}

// Observer is told about session activity. Implementations must be cheap;
// they run under the session lock.
type Observer interface {
	Appended(rec TradeRecord, balance float64)
	Rebased(start, balance float64)
	Rejected(op string, err error)
	Saved(d time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) Appended(TradeRecord, float64) {}
func (nopObserver) Rebased(float64, float64)      {}
func (nopObserver) Rejected(string, error)        {}
func (nopObserver) Saved(time.Duration, error)    {}

// Load builds a ledger from loader. Missing state gives an empty ledger at
// defaultStart. Corrupt or invalid state is logged and also gives an empty
// ledger; any other load error is returned.
func Load(ctx context.Context, loader Loader, defaultStart float64, log *slog.Logger, opts ...Option) (*Ledger, error) {
	if log == nil {
		log = slog.Default()
	}
	l := New(defaultStart, opts...)

	st, err := loader.Load(ctx)
	switch {
	case errors.Is(err, ErrNoState):
		return l, nil
	case errors.Is(err, ErrCorruptState):
		log.Warn("discarding unreadable ledger state", "error", err)
		return l, nil
	case err != nil:
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	if err := l.Restore(st); err != nil {
		log.Warn("discarding invalid ledger state", "error", err)
		return New(defaultStart, opts...), nil
	}
	return l, nil
}

// Session serialises access to a Ledger and saves it after each mutation.
// Every committed mutation bumps the version; the *IfVersion calls only
// commit when the caller saw the latest version.
type Session struct {
	mu      sync.Mutex
	ledger  *Ledger
	version uint64

	store Persister
	obs   Observer
	log   *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

func WithObserver(o Observer) SessionOption {
	return func(s *Session) { s.obs = o }
}

func WithLogger(log *slog.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// NewSession wraps l. A nil store disables saving.
func NewSession(l *Ledger, store Persister, opts ...SessionOption) *Session {
	s := &Session{
		ledger: l,
		store:  store,
		obs:    nopObserver{},
		log:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Version returns the number of committed mutations.
func (s *Session) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Snapshot returns the ledger state and the version it belongs to.
func (s *Session) Snapshot() (State, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot(), s.version
}

// AppendTrade appends a trade. An error wrapping ErrPersist means the trade
// was committed but could not be saved.
func (s *Session) AppendTrade(ctx context.Context, in TradeInput) (TradeRecord, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.append(ctx, in)
}

// AppendIfVersion appends only if the session is still at version want.
func (s *Session) AppendIfVersion(ctx context.Context, want uint64, in TradeInput) (TradeRecord, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkVersion("append", want); err != nil {
		return TradeRecord{}, s.version, err
	}
	return s.append(ctx, in)
}

// Rebase changes the starting balance. An error wrapping ErrPersist means
// the change was committed but could not be saved.
func (s *Session) Rebase(ctx context.Context, start float64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebase(ctx, start)
}

// RebaseIfVersion rebases only if the session is still at version want.
func (s *Session) RebaseIfVersion(ctx context.Context, want uint64, start float64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkVersion("rebase", want); err != nil {
		return s.version, err
	}
	return s.rebase(ctx, start)
}

func (s *Session) checkVersion(op string, want uint64) error {
	if want == s.version {
		return nil
	}
	err := fmt.Errorf("%w: at %d, caller expected %d", ErrVersionConflict, s.version, want)
	s.obs.Rejected(op, err)
	return err
}

func (s *Session) append(ctx context.Context, in TradeInput) (TradeRecord, uint64, error) {
	rec, err := s.ledger.AppendTrade(in)
	if err != nil {
		s.obs.Rejected("append", err)
		return TradeRecord{}, s.version, err
	}
	s.version++
	s.obs.Appended(rec, s.ledger.CurrentBalance())
	s.log.Info("trade appended",
		"id", rec.ID, "symbol", rec.Symbol, "direction", rec.Direction.String(),
		"pnl", rec.PnL, "balance", rec.RunningBalance, "version", s.version)
	return rec, s.version, s.save(ctx)
}

func (s *Session) rebase(ctx context.Context, start float64) (uint64, error) {
	if err := s.ledger.Rebase(start); err != nil {
		s.obs.Rejected("rebase", err)
		return s.version, err
	}
	s.version++
	s.obs.Rebased(start, s.ledger.CurrentBalance())
	s.log.Info("starting balance changed",
		"start", start, "records", s.ledger.Len(), "balance", s.ledger.CurrentBalance(), "version", s.version)
	return s.version, s.save(ctx)
}

func (s *Session) save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	t0 := time.Now()
	err := s.store.Save(ctx, s.ledger.Snapshot())
	s.obs.Saved(time.Since(t0), err)
	if err != nil {
		s.log.Error("saving ledger failed", "error", err, "version", s.version)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
