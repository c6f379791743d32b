package ledger

import (
	"context"
	"fmt"
	"sync"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/internal/metrics"
	model "bid-ledger/internal/models"
)

// MemoryLedger is a concurrency-safe in-memory EventLedger. It keeps an
// incrementally maintained per-lot leader read model alongside the event
// slice; the read model is advisory and always matches FoldLeader over the
// stored events.
type MemoryLedger struct {
	mu      sync.RWMutex
	events  []model.BidEvent
	leaders map[string]*Leader // key: lotID
	winners map[string]int     // key: lotID -> index into events
	lastSeq uint64
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		leaders: make(map[string]*Leader),
		winners: make(map[string]int),
	}
}

// AppendBatch assigns the next sequence numbers and stores the batch. The
// whole batch commits under one lock acquisition, so a cascade's events are
// never partially visible.
func (l *MemoryLedger) AppendBatch(_ context.Context, events []model.BidEvent) ([]uint64, error) {
	if len(events) == 0 {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	seqs := make([]uint64, 0, len(events))
	for _, e := range events {
		l.lastSeq++
		e.Seq = l.lastSeq
		l.events = append(l.events, e)
		seqs = append(seqs, e.Seq)
		l.applyLocked(e)
	}

	metrics.RecordEventsAppended(len(events))
	return seqs, nil
}

// applyLocked advances the derived read models for one appended event.
func (l *MemoryLedger) applyLocked(e model.BidEvent) {
	switch d := e.Detail.(type) {
	case model.BidPlacedDetail:
		l.leaders[e.LotID] = &Leader{BidderID: d.BidderID, Amount: d.Amount, MaxBid: d.MaxBid}
	case model.AutoBidDetail:
		maxBid := d.MaxBid
		l.leaders[e.LotID] = &Leader{BidderID: d.BidderID, Amount: d.Amount, MaxBid: &maxBid}
	case model.WinnerDetail:
		l.winners[e.LotID] = len(l.events) - 1
	}
}

// Query returns matching events ascending by seq with the total match count.
func (l *MemoryLedger) Query(_ context.Context, f Filter, page, limit int) ([]model.BidEvent, int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	filtered := make([]model.BidEvent, 0, len(l.events))
	for _, e := range l.events {
		if matches(e, f) {
			filtered = append(filtered, e)
		}
	}
	if f.Descending {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	return paginate(filtered, page, limit), len(filtered), nil
}

// CurrentLeader returns the lot's derived leader, or nil with ErrNoEvents
// wrapped when no bid has been admitted.
func (l *MemoryLedger) CurrentLeader(_ context.Context, lotID string) (*Leader, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	leader, ok := l.leaders[lotID]
	if !ok {
		return nil, fmt.Errorf("current leader for lot %s: %w", lotID, biddingerrors.ErrNoEvents)
	}
	copied := *leader
	return &copied, nil
}

// WinnerEvent returns the lot's terminal winner event if one was appended.
func (l *MemoryLedger) WinnerEvent(_ context.Context, lotID string) (*model.BidEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx, ok := l.winners[lotID]
	if !ok {
		return nil, nil
	}
	e := l.events[idx]
	return &e, nil
}

// LastSeq returns the highest assigned sequence number (0 when empty).
func (l *MemoryLedger) LastSeq(_ context.Context) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastSeq, nil
}
