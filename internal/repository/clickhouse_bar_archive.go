package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ChartSignals/internal/domain/models"
	domrepo "ChartSignals/internal/domain/repository"
	pkgch "ChartSignals/pkg/clickhouse"
	applogger "ChartSignals/pkg/logger"
	xutil "ChartSignals/pkg/util"
)

// CHBarArchive implements BarArchive backed by ClickHouse. Bars are stored
// at base resolution only; coarser timeframes are derived in memory.
type CHBarArchive struct {
	db       *sql.DB
	client   *pkgch.Client
	database string
	l        *applogger.Logger
}

func NewCHBarArchive(ch *pkgch.Client, database string) *CHBarArchive {
	if database == "" {
		database = "chartsignals"
	}
	return &CHBarArchive{db: ch.DB(), client: ch, database: database}
}

// SetLogger injects a structured logger.
func (s *CHBarArchive) SetLogger(l *applogger.Logger) { s.l = l }

// Init creates the database and bars table if missing (idempotent).
// ReplacingMergeTree keyed by (symbol, ts) makes re-appended bars collapse
// to the latest version on merge.
func (s *CHBarArchive) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.database),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s.bars_1min (
            ts      DateTime,
            symbol  LowCardinality(String),
            open    Float64,
            high    Float64,
            low     Float64,
            close   Float64,
            volume  Float64
        ) ENGINE = ReplacingMergeTree
        PARTITION BY toYYYYMM(ts)
        ORDER BY (symbol, ts)
    `, s.database),
	}
	return s.client.InitSchema(ctx, stmts)
}

func (s *CHBarArchive) LoadRecent(ctx context.Context, symbol string, tf domrepo.Timeframe, daysBack int) ([]models.Bar, error) {
	start := time.Now()
	table, err := s.tableFor(tf)
	if err != nil {
		return nil, err
	}
	if daysBack <= 0 {
		daysBack = 7
	}
	now := time.Now().UTC()
	since, _ := xutil.AlignFromTo(now.AddDate(0, 0, -daysBack), now, string(tf))

	const qtpl = `
        SELECT ts, symbol, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND ts >= ?
        ORDER BY ts ASC
    `
	q := fmt.Sprintf(qtpl, table)
	rows, err := s.db.QueryContext(ctx, q, symbol, since)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse load_recent query error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("load recent bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 1024)
	for rows.Next() {
		var (
			b  models.Bar
			ts time.Time
		)
		if err := rows.Scan(&ts, &b.Symbol, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse load_recent scan error",
					applogger.String("table", table),
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Timestamp = ts.Unix()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse load_recent ok",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHBarArchive) AppendBatch(ctx context.Context, tf domrepo.Timeframe, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	table, err := s.tableFor(tf)
	if err != nil {
		return err
	}

	// multi-row VALUES to cut round-trips; chunked to keep statements bounded
	const chunkSize = 2000
	for start := 0; start < len(bars); start += chunkSize {
		end := start + chunkSize
		if end > len(bars) {
			end = len(bars)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, b := range bars[start:end] {
			if b.Symbol == "" || b.Timestamp <= 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(b.Timestamp, 0).UTC(),
				b.Symbol,
				b.Open,
				b.High,
				b.Low,
				b.Close,
				b.Volume,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, open, high, low, close, volume) VALUES %s",
			table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse append_batch error",
					applogger.String("table", table),
					applogger.Int("bars", end-start),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("append bars: %w", err)
		}
	}
	return nil
}

func (s *CHBarArchive) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHBarArchive) Close() error {
	return nil // pool managed by pkg
}

func (s *CHBarArchive) tableFor(tf domrepo.Timeframe) (string, error) {
	if tf != domrepo.BaseTimeframe() {
		return "", fmt.Errorf("unsupported archive timeframe: %s", tf)
	}
	return s.database + ".bars_1min", nil
}

var _ domrepo.BarArchive = (*CHBarArchive)(nil)
