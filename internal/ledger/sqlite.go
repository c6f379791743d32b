package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/internal/metrics"
	model "bid-ledger/internal/models"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS bid_events (
	seq              INTEGER PRIMARY KEY,
	auction_id       TEXT    NOT NULL,
	lot_id           TEXT    NOT NULL DEFAULT '',
	event_type       TEXT    NOT NULL,
	bidder_id        TEXT    NOT NULL,
	amount           TEXT    NOT NULL,
	previous_amount  TEXT,
	max_bid          TEXT,
	trigger_kind     TEXT    NOT NULL DEFAULT '',
	requester_ip     TEXT    NOT NULL DEFAULT '',
	requester_device TEXT    NOT NULL DEFAULT '',
	created_at_ms    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bid_events_lot ON bid_events(lot_id, seq);
CREATE INDEX IF NOT EXISTS idx_bid_events_auction ON bid_events(auction_id, seq);
`

// SQLiteStore is a durable EventLedger backed by SQLite. Sequence numbers
// are assigned inside the insert transaction, so a failed append rolls back
// without consuming one. Appends serialize on appendMu: seq assignment needs
// a single writer anyway, and SQLite allows only one write transaction at a
// time, so queueing here turns cross-lot write contention into a short wait
// instead of SQLITE_BUSY errors.
type SQLiteStore struct {
	appendMu sync.Mutex
	sqlDB    *sql.DB
}

// OpenSQLite opens (or creates) a SQLite ledger at path and applies the
// schema. WAL keeps live pushes readable while a batch commits; _txlock
// makes append transactions take the write lock up front rather than
// upgrading from a read.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	dsn := filepath.Clean(path) +
		"?_txlock=immediate" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite ledger: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite ledger: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendBatch writes the batch in one transaction, assigning seq values from
// MAX(seq)+1 so they stay strictly increasing, gapless and never reused even
// across restarts.
func (s *SQLiteStore) AppendBatch(ctx context.Context, events []model.BidEvent) ([]uint64, error) {
	if len(events) == 0 {
		return nil, nil
	}

	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var base, count uint64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0), COUNT(*) FROM bid_events`).Scan(&base, &count); err != nil {
		return nil, fmt.Errorf("read last seq: %w", err)
	}
	// A gapless ledger has exactly MAX(seq) rows. Anything else means rows
	// went missing outside this store and the sequence can no longer be
	// trusted for backfill cursors.
	if base != count {
		return nil, fmt.Errorf("ledger has %d rows up to seq %d: %w", count, base, biddingerrors.ErrSequenceGap)
	}

	seqs := make([]uint64, 0, len(events))
	for i, e := range events {
		seq := base + uint64(i) + 1
		row, err := rowFromEvent(e)
		if err != nil {
			return nil, fmt.Errorf("encode event: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO bid_events
				(seq, auction_id, lot_id, event_type, bidder_id, amount,
				 previous_amount, max_bid, trigger_kind, requester_ip, requester_device, created_at_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			seq, e.AuctionID, e.LotID, string(e.Type), row.bidderID, row.amount,
			row.previousAmount, row.maxBid, row.trigger, e.Requester.IP, e.Requester.Device,
			e.Timestamp.UTC().UnixMilli(),
		)
		if err != nil {
			return nil, fmt.Errorf("append event: %w", err)
		}
		seqs = append(seqs, seq)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}

	metrics.RecordEventsAppended(len(events))
	return seqs, nil
}

// Query filters the ledger with SQL mirroring the admin filter set.
func (s *SQLiteStore) Query(ctx context.Context, f Filter, page, limit int) ([]model.BidEvent, int, error) {
	where, args := buildWhere(f)

	var total int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM bid_events`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	direction := "ASC"
	if f.Descending {
		direction = "DESC"
	}
	query := `SELECT seq, auction_id, lot_id, event_type, bidder_id, amount,
		previous_amount, max_bid, trigger_kind, requester_ip, requester_device, created_at_ms
		FROM bid_events` + where + ` ORDER BY seq ` + direction
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, (page-1)*limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := make([]model.BidEvent, 0, limit)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate events: %w", err)
	}
	return events, total, nil
}

// CurrentLeader derives the leader from the latest bid-bearing event for the
// lot. There is no separate leader table to diverge from the ledger.
func (s *SQLiteStore) CurrentLeader(ctx context.Context, lotID string) (*Leader, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
		SELECT bidder_id, amount, max_bid FROM bid_events
		WHERE lot_id = ? AND event_type IN (?, ?)
		ORDER BY seq DESC LIMIT 1`,
		lotID, string(model.EventBidPlaced), string(model.EventAutoBid))

	var bidderID, amountStr string
	var maxBidStr sql.NullString
	if err := row.Scan(&bidderID, &amountStr, &maxBidStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("current leader for lot %s: %w", lotID, biddingerrors.ErrNoEvents)
		}
		return nil, fmt.Errorf("read leader: %w", err)
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parse leader amount: %w", err)
	}
	leader := &Leader{BidderID: bidderID, Amount: amount}
	if maxBidStr.Valid {
		maxBid, err := decimal.NewFromString(maxBidStr.String)
		if err != nil {
			return nil, fmt.Errorf("parse leader max bid: %w", err)
		}
		leader.MaxBid = &maxBid
	}
	return leader, nil
}

// WinnerEvent returns the lot's terminal winner event, or nil.
func (s *SQLiteStore) WinnerEvent(ctx context.Context, lotID string) (*model.BidEvent, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT seq, auction_id, lot_id, event_type, bidder_id, amount,
			previous_amount, max_bid, trigger_kind, requester_ip, requester_device, created_at_ms
		FROM bid_events WHERE lot_id = ? AND event_type = ?
		ORDER BY seq DESC LIMIT 1`,
		lotID, string(model.EventWinner))
	if err != nil {
		return nil, fmt.Errorf("query winner: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	e, err := scanEvent(rows)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// LastSeq returns the highest assigned sequence number (0 when empty).
func (s *SQLiteStore) LastSeq(ctx context.Context) (uint64, error) {
	var last uint64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM bid_events`).Scan(&last); err != nil {
		return 0, fmt.Errorf("read last seq: %w", err)
	}
	return last, nil
}

func buildWhere(f Filter) (string, []any) {
	clauses := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if f.AuctionID != "" {
		clauses = append(clauses, "auction_id = ?")
		args = append(args, f.AuctionID)
	}
	if f.LotID == AuctionLevelLot {
		clauses = append(clauses, "lot_id = ''")
	} else if f.LotID != "" {
		clauses = append(clauses, "lot_id = ?")
		args = append(args, f.LotID)
	}
	if f.EventType != "" {
		clauses = append(clauses, "event_type = ?")
		args = append(args, string(f.EventType))
	}
	if !f.From.IsZero() {
		clauses = append(clauses, "created_at_ms >= ?")
		args = append(args, f.From.UTC().UnixMilli())
	}
	if !f.To.IsZero() {
		clauses = append(clauses, "created_at_ms <= ?")
		args = append(args, f.To.UTC().UnixMilli())
	}
	if f.AfterSeq > 0 {
		clauses = append(clauses, "seq > ?")
		args = append(args, f.AfterSeq)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// eventRow holds the nullable column encoding of a variant payload.
type eventRow struct {
	bidderID       string
	amount         string
	previousAmount sql.NullString
	maxBid         sql.NullString
	trigger        string
}

func rowFromEvent(e model.BidEvent) (eventRow, error) {
	switch d := e.Detail.(type) {
	case model.BidPlacedDetail:
		row := eventRow{bidderID: d.BidderID, amount: d.Amount.String(), trigger: string(d.Trigger)}
		if d.MaxBid != nil {
			row.maxBid = sql.NullString{String: d.MaxBid.String(), Valid: true}
		}
		return row, nil
	case model.AutoBidDetail:
		return eventRow{
			bidderID: d.BidderID,
			amount:   d.Amount.String(),
			maxBid:   sql.NullString{String: d.MaxBid.String(), Valid: true},
			trigger:  string(d.Trigger),
		}, nil
	case model.OutbidDetail:
		return eventRow{
			bidderID:       d.BidderID,
			amount:         d.Amount.String(),
			previousAmount: sql.NullString{String: d.PreviousAmount.String(), Valid: true},
		}, nil
	case model.WinnerDetail:
		return eventRow{bidderID: d.BidderID, amount: d.Amount.String()}, nil
	default:
		return eventRow{}, fmt.Errorf("unknown event detail for type %q", e.Type)
	}
}

func scanEvent(rows *sql.Rows) (model.BidEvent, error) {
	var (
		e           model.BidEvent
		eventType   string
		row         eventRow
		ip, device  string
		createdAtMS int64
	)
	err := rows.Scan(&e.Seq, &e.AuctionID, &e.LotID, &eventType, &row.bidderID, &row.amount,
		&row.previousAmount, &row.maxBid, &row.trigger, &ip, &device, &createdAtMS)
	if err != nil {
		return model.BidEvent{}, fmt.Errorf("scan event: %w", err)
	}

	amount, err := decimal.NewFromString(row.amount)
	if err != nil {
		return model.BidEvent{}, fmt.Errorf("parse event amount: %w", err)
	}
	var previousAmount, maxBid *decimal.Decimal
	if row.previousAmount.Valid {
		v, err := decimal.NewFromString(row.previousAmount.String)
		if err != nil {
			return model.BidEvent{}, fmt.Errorf("parse previous amount: %w", err)
		}
		previousAmount = &v
	}
	if row.maxBid.Valid {
		v, err := decimal.NewFromString(row.maxBid.String)
		if err != nil {
			return model.BidEvent{}, fmt.Errorf("parse max bid: %w", err)
		}
		maxBid = &v
	}

	e.Type = model.EventType(eventType)
	e.Timestamp = time.UnixMilli(createdAtMS).UTC()
	e.Requester = model.RequesterMeta{IP: ip, Device: device}
	e.Detail, err = model.DetailFor(e.Type, row.bidderID, amount, previousAmount, maxBid, model.Trigger(row.trigger))
	if err != nil {
		return model.BidEvent{}, err
	}
	return e, nil
}
