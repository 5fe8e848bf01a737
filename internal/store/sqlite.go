package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"StockRadar/internal/model"

	_ "modernc.org/sqlite"
)

const dateFormat = "2006-01-02"

// SQLiteStore persists pipeline output to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stock_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			stock_code     TEXT NOT NULL,
			stock_name     TEXT NOT NULL,
			price          REAL,
			change_percent REAL,
			volume         INTEGER,
			amount         INTEGER,
			rank_no        INTEGER,
			high_52w       REAL,
			low_52w        REAL,
			snapshot_date  TEXT NOT NULL,
			created_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_code_date ON stock_snapshots(stock_code, snapshot_date)`,

		`CREATE TABLE IF NOT EXISTS daily_prices (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			stock_code TEXT NOT NULL,
			trade_date TEXT NOT NULL,
			open       REAL,
			close      REAL,
			high       REAL,
			low        REAL,
			volume     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_code_date ON daily_prices(stock_code, trade_date)`,

		`CREATE TABLE IF NOT EXISTS analysis_results (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			stock_code     TEXT NOT NULL,
			stock_name     TEXT NOT NULL,
			analysis_date  TEXT NOT NULL,
			analysis       TEXT,
			recommendation TEXT NOT NULL,
			confidence     REAL,
			summary        TEXT,
			created_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_result_code_date ON analysis_results(stock_code, analysis_date)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveSnapshot(ds *model.StockDataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO stock_snapshots
		(stock_code, stock_name, price, change_percent, volume, amount, rank_no,
		 high_52w, low_52w, snapshot_date, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		ds.Rank.Code, ds.Rank.Name, ds.Rank.Price, ds.Rank.ChangePercent,
		ds.Rank.Volume, ds.Rank.Amount, ds.Rank.Rank,
		ds.High52w, ds.Low52w,
		time.Now().Format(dateFormat), time.Now().Unix(),
	)
	return err
}

func (s *SQLiteStore) SaveDailyPrices(prices []model.DailyPrice) error {
	if len(prices) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO daily_prices
		(stock_code, trade_date, open, close, high, low, volume)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.Exec(p.Code, p.TradeDate.Format(dateFormat),
			p.Open, p.Close, p.High, p.Low, p.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert daily price %s/%s: %w", p.Code, p.TradeDate.Format(dateFormat), err)
		}
	}
	return tx.Commit()
}

// SaveResults writes the whole batch in one transaction.
func (s *SQLiteStore) SaveResults(results []*model.AnalysisResult) error {
	if len(results) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO analysis_results
		(stock_code, stock_name, analysis_date, analysis, recommendation, confidence, summary, created_at)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.Exec(r.Code, r.Name, r.AnalysisDate.Format(dateFormat),
			r.Analysis, string(r.Recommendation), r.Confidence, r.Summary,
			r.CreatedAt.Unix()); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert result %s: %w", r.Code, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ResultByCodeAndDate(code string, date time.Time) (*model.AnalysisResult, error) {
	row := s.db.QueryRow(`SELECT stock_code, stock_name, analysis_date, analysis,
		recommendation, confidence, summary, created_at
		FROM analysis_results
		WHERE stock_code = ? AND analysis_date = ?
		ORDER BY created_at DESC LIMIT 1`,
		code, date.Format(dateFormat))

	result, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return result, err
}

func (s *SQLiteStore) LatestResults(date time.Time, n int) ([]*model.AnalysisResult, error) {
	rows, err := s.db.Query(`SELECT stock_code, stock_name, analysis_date, analysis,
		recommendation, confidence, summary, created_at
		FROM analysis_results
		WHERE analysis_date = ?
		ORDER BY created_at DESC LIMIT ?`,
		date.Format(dateFormat), n)
	if err != nil {
		return nil, fmt.Errorf("query latest results: %w", err)
	}
	defer rows.Close()

	var results []*model.AnalysisResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row rowScanner) (*model.AnalysisResult, error) {
	var r model.AnalysisResult
	var dateStr, rec string
	var createdAt int64
	if err := row.Scan(&r.Code, &r.Name, &dateStr, &r.Analysis,
		&rec, &r.Confidence, &r.Summary, &createdAt); err != nil {
		return nil, err
	}
	date, err := time.Parse(dateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("parse analysis date %q: %w", dateStr, err)
	}
	r.AnalysisDate = date
	r.Recommendation = model.Recommendation(rec)
	r.CreatedAt = time.Unix(createdAt, 0)
	return &r, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
