package resolution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/internal/metrics"
)

// LotLocks serializes all bid admission and finalization per lot. At most
// one submission (including its entire cascade) runs for a lot at a time;
// different lots proceed in parallel. The finalizer shares the same table so
// a close never races a submission.
type LotLocks struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

// NewLotLocks creates an empty lock table.
func NewLotLocks() *LotLocks {
	return &LotLocks{gates: make(map[string]chan struct{})}
}

func (l *LotLocks) gate(lotID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	gate, ok := l.gates[lotID]
	if !ok {
		gate = make(chan struct{}, 1)
		l.gates[lotID] = gate
	}
	return gate
}

// Acquire enters the lot's exclusive section, waiting at most timeout. It
// returns a release func on success and ErrLotBusy when the section could
// not be acquired in time, so worst-case latency stays bounded under bid
// storms.
func (l *LotLocks) Acquire(ctx context.Context, lotID string, timeout time.Duration) (func(), error) {
	gate := l.gate(lotID)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case gate <- struct{}{}:
		return func() { <-gate }, nil
	case <-timer.C:
		metrics.RecordLotLockTimeout()
		return nil, fmt.Errorf("acquire lot %s: %w", lotID, biddingerrors.ErrLotBusy)
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire lot %s: %w", lotID, ctx.Err())
	}
}
