/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists what the deployment around the engine needs between requests:
  override layers, the sell points of each org and saved evaluations.
  The engine itself never touches the database.

INTERFACES IMPLEMENTED:
  generic.LayerStore:      System and org override layers
  generic.SellPointStore:  Sell points per org
  generic.PreventivoStore: Saved evaluation reports

KEY TABLES:
  config_layers: One row per stored layer; values_json is the whole layer
  sell_points:   One row per (org, code); seq keeps insertion order
  preventivi:    Saved reports; report_json is opaque to the store

LAYERS ARE WHOLE VALUES:
  SaveLayer replaces the row. A layer is never patched path by path, so a
  half-applied admin edit cannot be observed by an evaluation.

DECIMALS:
  Layer values and discounts are stored as decimal strings, never REAL, so
  a stored 1.1 reads back as exactly 1.1.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers never block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/incentive.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/generic"
)

// timeLayout is fixed width so ORDER BY on the text column is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements generic.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ generic.Store = (*Store)(nil)

// New opens the database at dbPath and migrates it.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open database")
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate database")
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS config_layers (
		layer TEXT NOT NULL,
		org TEXT NOT NULL DEFAULT '',
		values_json TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (layer, org)
	);

	CREATE TABLE IF NOT EXISTS sell_points (
		org TEXT NOT NULL,
		code TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		legal_entity TEXT NOT NULL,
		position TEXT NOT NULL DEFAULT '',
		mobile_cluster TEXT NOT NULL DEFAULT '',
		fixed_cluster TEXT NOT NULL DEFAULT '',
		customer_base_cluster TEXT NOT NULL DEFAULT '',
		vat_cluster TEXT NOT NULL DEFAULT '',
		calendar_ref TEXT NOT NULL DEFAULT '',
		threshold_discount TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (org, code)
	);

	CREATE INDEX IF NOT EXISTS idx_sell_points_org_seq
		ON sell_points(org, seq);

	CREATE TABLE IF NOT EXISTS preventivi (
		id TEXT PRIMARY KEY,
		org TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		period TEXT NOT NULL,
		mode TEXT NOT NULL,
		report_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_preventivi_org_created
		ON preventivi(org, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LAYER STORE
// =============================================================================

// LoadLayer returns the stored layer, or an empty layer if none was saved.
func (s *Store) LoadLayer(ctx context.Context, name generic.LayerName, org string) (generic.Layer, error) {
	key, err := layerKey(name, org)
	if err != nil {
		return generic.Layer{}, err
	}

	var raw string
	err = s.db.QueryRowContext(ctx,
		`SELECT values_json FROM config_layers WHERE layer = ? AND org = ?`,
		string(name), key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.NewLayer(name), nil
	}
	if err != nil {
		return generic.Layer{}, eris.Wrapf(err, "sqlite: load %s layer", name)
	}

	layer := generic.NewLayer(name)
	if err := json.Unmarshal([]byte(raw), &layer.Values); err != nil {
		return generic.Layer{}, eris.Wrapf(err, "sqlite: decode %s layer", name)
	}
	return layer, nil
}

// SaveLayer replaces a stored layer.
func (s *Store) SaveLayer(ctx context.Context, org string, layer generic.Layer) error {
	key, err := layerKey(layer.Name, org)
	if err != nil {
		return err
	}
	values := layer.Values
	if values == nil {
		values = map[string]generic.Value{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return eris.Wrapf(err, "sqlite: encode %s layer", layer.Name)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO config_layers (layer, org, values_json, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (layer, org) DO UPDATE SET values_json = excluded.values_json, updated_at = excluded.updated_at`,
		string(layer.Name), key, string(raw), time.Now().UTC().Format(timeLayout),
	)
	return eris.Wrapf(err, "sqlite: save %s layer", layer.Name)
}

// layerKey returns the org column for a stored layer.
func layerKey(name generic.LayerName, org string) (string, error) {
	switch name {
	case generic.LayerSystem:
		return "", nil
	case generic.LayerOrg:
		if org == "" {
			return "", fmt.Errorf("%w: org layer without org", generic.ErrInvalidInput)
		}
		return org, nil
	default:
		return "", fmt.Errorf("%w: layer %q is not stored", generic.ErrInvalidInput, name)
	}
}

// =============================================================================
// SELL POINT STORE
// =============================================================================

// ListSellPoints returns an org's sell points in insertion order.
func (s *Store) ListSellPoints(ctx context.Context, org string) ([]generic.SellPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, name, legal_entity, position, mobile_cluster, fixed_cluster,
		        customer_base_cluster, vat_cluster, calendar_ref, threshold_discount
		 FROM sell_points WHERE org = ? ORDER BY seq`,
		org,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sell points")
	}
	defer rows.Close()

	var out []generic.SellPoint
	for rows.Next() {
		var (
			sp       generic.SellPoint
			position string
			discount string
		)
		if err := rows.Scan(&sp.Code, &sp.Name, &sp.LegalEntity, &position, &sp.MobileCluster,
			&sp.FixedCluster, &sp.CustomerBaseCluster, &sp.VATCluster, &sp.CalendarRef, &discount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sell point")
		}
		sp.Position = generic.Position(position)
		d, err := decimal.NewFromString(discount)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: sell point %s discount", sp.Code)
		}
		sp.ThresholdDiscount = d
		out = append(out, sp)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list sell points")
}

// SaveSellPoints upserts by code. Known codes keep their position.
func (s *Store) SaveSellPoints(ctx context.Context, org string, sellPoints []generic.SellPoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save sell points")
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM sell_points WHERE org = ?`, org,
	).Scan(&next); err != nil {
		return eris.Wrap(err, "sqlite: next sell point seq")
	}

	for _, sp := range sellPoints {
		next++
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sell_points (org, code, seq, name, legal_entity, position, mobile_cluster,
			        fixed_cluster, customer_base_cluster, vat_cluster, calendar_ref, threshold_discount)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (org, code) DO UPDATE SET
			        name = excluded.name,
			        legal_entity = excluded.legal_entity,
			        position = excluded.position,
			        mobile_cluster = excluded.mobile_cluster,
			        fixed_cluster = excluded.fixed_cluster,
			        customer_base_cluster = excluded.customer_base_cluster,
			        vat_cluster = excluded.vat_cluster,
			        calendar_ref = excluded.calendar_ref,
			        threshold_discount = excluded.threshold_discount`,
			org, sp.Code, next, sp.Name, sp.LegalEntity, string(sp.Position), sp.MobileCluster,
			sp.FixedCluster, sp.CustomerBaseCluster, sp.VATCluster, sp.CalendarRef, sp.ThresholdDiscount.String(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: save sell point %s", sp.Code)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit sell points")
}

// =============================================================================
// PREVENTIVO STORE
// =============================================================================

// SavePreventivo inserts or replaces a saved evaluation.
func (s *Store) SavePreventivo(ctx context.Context, p generic.Preventivo) error {
	if p.ID == "" || p.Org == "" {
		return fmt.Errorf("%w: preventivo needs an id and an org", generic.ErrInvalidInput)
	}
	if len(p.Report) == 0 {
		p.Report = []byte("null")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO preventivi (id, org, name, period, mode, report_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Org, p.Name, p.Period.String(), string(p.Mode), string(p.Report),
		p.CreatedAt.UTC().Format(timeLayout),
	)
	return eris.Wrapf(err, "sqlite: save preventivo %s", p.ID)
}

// GetPreventivo returns a saved evaluation including its report.
func (s *Store) GetPreventivo(ctx context.Context, id string) (generic.Preventivo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, org, name, period, mode, report_json, created_at FROM preventivi WHERE id = ?`, id)
	p, err := scanPreventivo(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Preventivo{}, fmt.Errorf("%w: preventivo %s", generic.ErrNotFound, id)
	}
	if err != nil {
		return generic.Preventivo{}, eris.Wrapf(err, "sqlite: get preventivo %s", id)
	}
	return p, nil
}

// ListPreventivi returns an org's preventivi, newest first, without reports.
func (s *Store) ListPreventivi(ctx context.Context, org string) ([]generic.Preventivo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, org, name, period, mode, created_at FROM preventivi
		 WHERE org = ? ORDER BY created_at DESC, id`, org)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list preventivi")
	}
	defer rows.Close()

	var out []generic.Preventivo
	for rows.Next() {
		p, err := scanPreventivo(rows.Scan, false)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan preventivo")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list preventivi")
}

func scanPreventivo(scan func(dest ...any) error, withReport bool) (generic.Preventivo, error) {
	var (
		p               generic.Preventivo
		period, created string
		mode, report    string
	)
	dest := []any{&p.ID, &p.Org, &p.Name, &period, &mode}
	if withReport {
		dest = append(dest, &report)
	}
	dest = append(dest, &created)
	if err := scan(dest...); err != nil {
		return generic.Preventivo{}, err
	}

	pp, err := generic.ParsePeriod(period)
	if err != nil {
		return generic.Preventivo{}, err
	}
	at, err := time.Parse(timeLayout, created)
	if err != nil {
		return generic.Preventivo{}, err
	}
	p.Period = pp
	p.Mode = generic.EntryMode(mode)
	p.CreatedAt = at
	if withReport {
		p.Report = []byte(report)
	}
	return p, nil
}
