package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/arenadelta/pdptw-solver/internal/pdptw"
)

// Postgres is the durable Store, backed by database/sql over pgx/v5's
// stdlib driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Migrate applies the migrations in dir to p's database.
func (p *Postgres) Migrate(ctx context.Context, dir string) error {
	return MigrateDir(ctx, p.db, dir)
}

// MigrateDir applies every *.sql file in dir, in lexical order, inside its
// own transaction. Migrations are not tracked by name: this is meant for
// a fresh database bootstrapped from db/migrations, not repeated upgrades.
func MigrateDir(ctx context.Context, db *sql.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(data)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
	}
	return nil
}

func (p *Postgres) CreateRun(ctx context.Context, instanceName string, cfg pdptw.Config) (*Run, error) {
	id := uuid.New().String()
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	_, err = p.db.ExecContext(ctx, `INSERT INTO solve_runs (id, instance_name, config, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$5)`, id, instanceName, cfgJSON, RunQueued, now)
	if err != nil {
		return nil, err
	}
	return &Run{ID: id, InstanceName: instanceName, Config: cfg, Status: RunQueued, CreatedAt: now, UpdatedAt: now}, nil
}

func (p *Postgres) GetRun(ctx context.Context, id string) (*Run, error) {
	row := p.db.QueryRowContext(ctx, `SELECT id, instance_name, config, status, result, error, created_at, updated_at
		FROM solve_runs WHERE id=$1`, id)
	return scanRun(row)
}

func (p *Postgres) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `SELECT id, instance_name, config, status, result, error, created_at, updated_at
		FROM solve_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Run{}
	for rows.Next() {
		r, err := scanRunRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (p *Postgres) UpdateRunRunning(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE solve_runs SET status=$1, updated_at=now() WHERE id=$2`, RunRunning, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (p *Postgres) CompleteRun(ctx context.Context, id string, status RunStatus, result *pdptw.SolveResult, errMsg string) error {
	var resultJSON []byte
	if result != nil {
		var err error
		resultJSON, err = json.Marshal(result)
		if err != nil {
			return err
		}
	}
	res, err := p.db.ExecContext(ctx, `UPDATE solve_runs SET status=$1, result=$2, error=$3, updated_at=now() WHERE id=$4`,
		status, nullBytes(resultJSON), nullIfEmpty(errMsg), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (p *Postgres) AppendMetricsSnapshot(ctx context.Context, snap MetricsSnapshot) error {
	_, err := p.db.ExecContext(ctx, `INSERT INTO solve_metrics_snapshots (id, run_id, iteration, vehicles, distance, kind, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`, uuid.New().String(), snap.RunID, snap.Iteration, snap.Vehicles, snap.Distance, snap.Kind, snap.RecordedAt)
	return err
}

func (p *Postgres) ListMetricsSnapshots(ctx context.Context, runID string) ([]MetricsSnapshot, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT run_id, iteration, vehicles, distance, kind, recorded_at
		FROM solve_metrics_snapshots WHERE run_id=$1 ORDER BY recorded_at ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []MetricsSnapshot{}
	for rows.Next() {
		var s MetricsSnapshot
		if err := rows.Scan(&s.RunID, &s.Iteration, &s.Vehicles, &s.Distance, &s.Kind, &s.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *Postgres) CreateSubscription(ctx context.Context, url, secret string, eventTypes []string) (*Subscription, error) {
	id := uuid.New().String()
	now := time.Now()
	typesJSON, err := json.Marshal(eventTypes)
	if err != nil {
		return nil, err
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO webhook_subscriptions (id, url, secret, event_types, created_at)
		VALUES ($1,$2,$3,$4,$5)`, id, url, nullIfEmpty(secret), typesJSON, now)
	if err != nil {
		return nil, err
	}
	return &Subscription{ID: id, URL: url, Secret: secret, EventTypes: eventTypes, CreatedAt: now}, nil
}

func (p *Postgres) ListSubscriptions(ctx context.Context) ([]*Subscription, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, url, COALESCE(secret,''), event_types, created_at FROM webhook_subscriptions ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Subscription{}
	for rows.Next() {
		var s Subscription
		var typesJSON []byte
		if err := rows.Scan(&s.ID, &s.URL, &s.Secret, &typesJSON, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(typesJSON, &s.EventTypes); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, nil
}

func (p *Postgres) DeleteSubscription(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM webhook_subscriptions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (p *Postgres) EnqueueDelivery(ctx context.Context, sub *Subscription, eventType string, payload []byte) (string, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx, `INSERT INTO webhook_deliveries (id, subscription_id, event_type, url, secret, payload, status, attempts, next_attempt_at)
		VALUES ($1,$2,$3,$4,$5,$6,'pending',0,now())`, id, sub.ID, eventType, sub.URL, nullIfEmpty(sub.Secret), payload)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) FetchDueDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, subscription_id, event_type, url, COALESCE(secret,''), payload, status, attempts
		FROM webhook_deliveries WHERE status IN ('pending','retry') AND next_attempt_at <= now() ORDER BY next_attempt_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Delivery{}
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (p *Postgres) MarkDelivered(ctx context.Context, id string, responseCode, latencyMs int) error {
	res, err := p.db.ExecContext(ctx, `UPDATE webhook_deliveries SET status='delivered', delivered_at=now(), response_code=$2, latency_ms=$3 WHERE id=$1`,
		id, responseCode, latencyMs)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (p *Postgres) MarkRetry(ctx context.Context, id string, nextAttemptAt time.Time, lastError string, responseCode, latencyMs int) error {
	res, err := p.db.ExecContext(ctx, `UPDATE webhook_deliveries SET status='retry', attempts=attempts+1, next_attempt_at=$2, last_error=$3, response_code=$4, latency_ms=$5 WHERE id=$1`,
		id, nextAttemptAt, nullIfEmpty(lastError), responseCode, latencyMs)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (p *Postgres) MarkFailed(ctx context.Context, id string, lastError string, responseCode, latencyMs int) error {
	res, err := p.db.ExecContext(ctx, `UPDATE webhook_deliveries SET status='failed', attempts=attempts+1, last_error=$2, response_code=$3, latency_ms=$4 WHERE id=$1`,
		id, nullIfEmpty(lastError), responseCode, latencyMs)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO webhook_dlq (id, delivery_id, subscription_id, event_type, url, secret, payload, attempts, last_error)
		SELECT gen_random_uuid(), id, subscription_id, event_type, url, secret, payload, attempts, $2 FROM webhook_deliveries WHERE id=$1`,
		id, nullIfEmpty(lastError))
	return err
}

func (p *Postgres) ListDLQ(ctx context.Context, limit int) ([]Delivery, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `SELECT delivery_id, subscription_id, event_type, url, COALESCE(secret,''), payload, 'failed', attempts
		FROM webhook_dlq ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Delivery{}
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func scanRun(row *sql.Row) (*Run, error) {
	var r Run
	var cfgJSON, resultJSON []byte
	var errMsg sql.NullString
	if err := row.Scan(&r.ID, &r.InstanceName, &cfgJSON, &r.Status, &resultJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return finishRunScan(&r, cfgJSON, resultJSON, errMsg)
}

func scanRunRow(rows *sql.Rows) (*Run, error) {
	var r Run
	var cfgJSON, resultJSON []byte
	var errMsg sql.NullString
	if err := rows.Scan(&r.ID, &r.InstanceName, &cfgJSON, &r.Status, &resultJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return finishRunScan(&r, cfgJSON, resultJSON, errMsg)
}

func finishRunScan(r *Run, cfgJSON, resultJSON []byte, errMsg sql.NullString) (*Run, error) {
	if len(cfgJSON) > 0 {
		if err := json.Unmarshal(cfgJSON, &r.Config); err != nil {
			return nil, err
		}
	}
	if len(resultJSON) > 0 {
		r.Result = &pdptw.SolveResult{}
		if err := json.Unmarshal(resultJSON, r.Result); err != nil {
			return nil, err
		}
	}
	r.Error = errMsg.String
	return r, nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
