// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"options-visualizer/internal/errors"
	"options-visualizer/internal/models"
	"options-visualizer/internal/strategy"
)

// SQLiteStore implements EvaluationStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the history database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS evaluations (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		ticker TEXT NOT NULL,
		expiry DATETIME,
		spot REAL NOT NULL,
		strategy TEXT NOT NULL,
		strike REAL NOT NULL,
		premium REAL NOT NULL,
		net_kind TEXT NOT NULL,
		net_amount REAL NOT NULL,
		max_profit REAL,
		probability TEXT NOT NULL,
		margin REAL,
		theta REAL,
		curve TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_evaluations_ticker ON evaluations(ticker, created_at);
	CREATE INDEX IF NOT EXISTS idx_evaluations_created ON evaluations(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveEvaluation stores summary and returns its ID, assigning a new one when empty.
// An unlimited max profit and an inapplicable margin are stored as NULL.
func (s *SQLiteStore) SaveEvaluation(ctx context.Context, summary *models.StrategySummary) (string, error) {
	id := summary.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := summary.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	curve := summary.Curve
	if curve == nil {
		curve = strategy.Curve{}
	}
	curveJSON, err := json.Marshal(curve)
	if err != nil {
		return "", fmt.Errorf("failed to encode curve: %w", err)
	}

	var expiry sql.NullTime
	if !summary.Expiry.IsZero() {
		expiry = sql.NullTime{Time: summary.Expiry.UTC(), Valid: true}
	}
	var maxProfit sql.NullFloat64
	if !summary.MaxProfit.Unbounded {
		maxProfit = sql.NullFloat64{Float64: summary.MaxProfit.Value, Valid: true}
	}
	var margin sql.NullFloat64
	if summary.EstimatedMargin.Applicable {
		margin = sql.NullFloat64{Float64: summary.EstimatedMargin.Value, Valid: true}
	}
	var theta sql.NullFloat64
	if summary.Theta != nil {
		theta = sql.NullFloat64{Float64: *summary.Theta, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO evaluations
		(id, created_at, ticker, expiry, spot, strategy, strike, premium, net_kind, net_amount, max_profit, probability, margin, theta, curve)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, createdAt.UTC(), summary.Ticker, expiry, summary.Spot, summary.Strategy.Slug(), summary.Strike, summary.Premium,
		string(summary.NetFlow.Kind), summary.NetFlow.Amount, maxProfit, summary.ProbabilityOfProfit, margin, theta, string(curveJSON))
	if err != nil {
		return "", fmt.Errorf("%w: failed to save evaluation: %v", errors.ErrDatabaseError, err)
	}

	return id, nil
}

const evaluationColumns = "id, created_at, ticker, expiry, spot, strategy, strike, premium, net_kind, net_amount, max_profit, probability, margin, theta, curve"

// ListEvaluations retrieves evaluations, newest first.
func (s *SQLiteStore) ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]models.StrategySummary, error) {
	query := "SELECT " + evaluationColumns + " FROM evaluations WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND ticker = ?"
		args = append(args, strings.ToUpper(strings.TrimSpace(filter.Symbol)))
	}
	if filter.Strategy.Valid() {
		query += " AND strategy = ?"
		args = append(args, filter.Strategy.Slug())
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query evaluations: %v", errors.ErrDatabaseError, err)
	}
	defer rows.Close()

	evaluations := []models.StrategySummary{}
	for rows.Next() {
		summary, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, *summary)
	}

	return evaluations, rows.Err()
}

// GetEvaluation retrieves one evaluation by ID.
func (s *SQLiteStore) GetEvaluation(ctx context.Context, id string) (*models.StrategySummary, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+evaluationColumns+" FROM evaluations WHERE id = ?", id)

	summary, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("evaluation %s: %w", id, errors.ErrDataNotFound)
	}
	return summary, err
}

// DeleteEvaluation removes one evaluation by ID.
func (s *SQLiteStore) DeleteEvaluation(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM evaluations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete evaluation: %v", errors.ErrDatabaseError, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("evaluation %s: %w", id, errors.ErrDataNotFound)
	}

	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvaluation(row scanner) (*models.StrategySummary, error) {
	var (
		s                    models.StrategySummary
		expiry               sql.NullTime
		slug, netKind, curve string
		maxProfit, margin    sql.NullFloat64
		theta                sql.NullFloat64
	)

	err := row.Scan(&s.ID, &s.CreatedAt, &s.Ticker, &expiry, &s.Spot, &slug, &s.Strike, &s.Premium,
		&netKind, &s.NetFlow.Amount, &maxProfit, &s.ProbabilityOfProfit, &margin, &theta, &curve)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan evaluation: %w", err)
	}

	variant, err := strategy.ParseVariant(slug)
	if err != nil {
		return nil, fmt.Errorf("evaluation %s: %w", s.ID, err)
	}
	s.Strategy = variant
	s.NetFlow.Kind = strategy.FlowKind(netKind)
	s.CreatedAt = s.CreatedAt.UTC()

	if expiry.Valid {
		s.Expiry = expiry.Time.UTC()
	}
	if maxProfit.Valid {
		s.MaxProfit = strategy.MaxProfit{Value: maxProfit.Float64}
	} else {
		s.MaxProfit = strategy.Unlimited
	}
	if margin.Valid {
		s.EstimatedMargin = strategy.Margin{Value: margin.Float64, Applicable: true}
	}
	if theta.Valid {
		v := theta.Float64
		s.Theta = &v
	}
	if err := json.Unmarshal([]byte(curve), &s.Curve); err != nil {
		return nil, fmt.Errorf("evaluation %s: failed to decode curve: %w", s.ID, err)
	}

	return &s, nil
}
