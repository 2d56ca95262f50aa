package vehicles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// Meta keys stored per vehicle.
const (
	metaCategories   = "_categories"
	metaImageURL     = "_image_url"
	metaBasePrice    = "_base_price"
	metaWatching     = "_watching_count"
	metaWhatsApp     = "_whatsapp_number"
	metaSubscription = "_subscription_options"
	metaInsurance    = "_insurance_options"
	metaMileage      = "_mileage_options"
)

const timeFormat = time.RFC3339

const schema = `
CREATE TABLE IF NOT EXISTS vehicles (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	slug       TEXT NOT NULL UNIQUE,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS vehicle_meta (
	vehicle_id INTEGER NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
	meta_key   TEXT NOT NULL,
	meta_value TEXT NOT NULL,
	PRIMARY KEY (vehicle_id, meta_key)
);`

// SQLiteRepository stores vehicles as rows plus a key/value meta table.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		schema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Seed inserts the given vehicles when the table is empty. It reports how many were inserted.
func (r *SQLiteRepository) Seed(ctx context.Context, seed []Vehicle) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vehicles").Scan(&count); err != nil {
		return 0, fmt.Errorf("count vehicles: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, v := range seed {
		if v.Slug == "" {
			v.Slug = Slugify(v.Title)
		}
		v.UpdatedAt = r.now().UTC()
		var id any
		if v.ID != 0 {
			id = v.ID
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO vehicles (id, slug, title, content, updated_at) VALUES (?, ?, ?, ?, ?)",
			id, v.Slug, v.Title, v.Description, v.UpdatedAt.Format(timeFormat))
		if err != nil {
			return 0, fmt.Errorf("seed vehicle %q: %w", v.Slug, err)
		}
		if v.ID == 0 {
			if v.ID, err = res.LastInsertId(); err != nil {
				return 0, err
			}
		}
		if err := writeMeta(ctx, tx, v); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(seed), nil
}

// List returns vehicles ordered by id.
func (r *SQLiteRepository) List(ctx context.Context) ([]Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, slug, title, content, updated_at FROM vehicles ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	var out []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	meta, err := r.loadMeta(ctx, "SELECT vehicle_id, meta_key, meta_value FROM vehicle_meta")
	if err != nil {
		return nil, err
	}
	for i := range out {
		applyMeta(&out[i], meta[out[i].ID])
	}
	return out, nil
}

// Get returns a vehicle by id.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (Vehicle, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, slug, title, content, updated_at FROM vehicles WHERE id = ?", id)
	return r.load(ctx, row, strconv.FormatInt(id, 10))
}

// GetBySlug returns a vehicle by slug.
func (r *SQLiteRepository) GetBySlug(ctx context.Context, slug string) (Vehicle, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, slug, title, content, updated_at FROM vehicles WHERE slug = ?", slug)
	return r.load(ctx, row, strconv.Quote(slug))
}

// Save inserts a vehicle without id or updates an existing one, replacing its meta.
func (r *SQLiteRepository) Save(ctx context.Context, v Vehicle) (Vehicle, error) {
	if v.Slug == "" {
		v.Slug = Slugify(v.Title)
	}
	v.UpdatedAt = r.now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Vehicle{}, err
	}
	defer tx.Rollback()

	if v.ID == 0 {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO vehicles (slug, title, content, updated_at) VALUES (?, ?, ?, ?)",
			v.Slug, v.Title, v.Description, v.UpdatedAt.Format(timeFormat))
		if err != nil {
			return Vehicle{}, fmt.Errorf("insert vehicle: %w", err)
		}
		if v.ID, err = res.LastInsertId(); err != nil {
			return Vehicle{}, err
		}
	} else {
		res, err := tx.ExecContext(ctx,
			"UPDATE vehicles SET slug = ?, title = ?, content = ?, updated_at = ? WHERE id = ?",
			v.Slug, v.Title, v.Description, v.UpdatedAt.Format(timeFormat), v.ID)
		if err != nil {
			return Vehicle{}, fmt.Errorf("update vehicle %d: %w", v.ID, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return Vehicle{}, err
		} else if n == 0 {
			return Vehicle{}, fmt.Errorf("vehicle %d: %w", v.ID, ErrNotFound)
		}
	}
	if err := writeMeta(ctx, tx, v); err != nil {
		return Vehicle{}, err
	}
	if err := tx.Commit(); err != nil {
		return Vehicle{}, err
	}
	return v, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVehicle(s scanner) (Vehicle, error) {
	var (
		v       Vehicle
		updated string
	)
	if err := s.Scan(&v.ID, &v.Slug, &v.Title, &v.Description, &updated); err != nil {
		return Vehicle{}, err
	}
	if t, err := time.Parse(timeFormat, updated); err == nil {
		v.UpdatedAt = t
	}
	return v, nil
}

func (r *SQLiteRepository) load(ctx context.Context, row *sql.Row, key string) (Vehicle, error) {
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Vehicle{}, fmt.Errorf("vehicle %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return Vehicle{}, fmt.Errorf("load vehicle %s: %w", key, err)
	}
	meta, err := r.loadMeta(ctx, "SELECT vehicle_id, meta_key, meta_value FROM vehicle_meta WHERE vehicle_id = ?", v.ID)
	if err != nil {
		return Vehicle{}, err
	}
	applyMeta(&v, meta[v.ID])
	return v, nil
}

func (r *SQLiteRepository) loadMeta(ctx context.Context, query string, args ...any) (map[int64]map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load vehicle meta: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]map[string]string)
	for rows.Next() {
		var (
			id         int64
			key, value string
		)
		if err := rows.Scan(&id, &key, &value); err != nil {
			return nil, err
		}
		if out[id] == nil {
			out[id] = make(map[string]string)
		}
		out[id][key] = value
	}
	return out, rows.Err()
}

func writeMeta(ctx context.Context, tx *sql.Tx, v Vehicle) error {
	values := map[string]string{
		metaImageURL:  v.ImageURL,
		metaBasePrice: strconv.FormatFloat(v.BasePrice, 'f', -1, 64),
		metaWatching:  strconv.Itoa(v.WatchingCount),
		metaWhatsApp:  v.WhatsAppNumber,
	}
	for key, src := range map[string]any{
		metaCategories:   v.Categories,
		metaSubscription: v.Subscription,
		metaInsurance:    v.Insurance,
		metaMileage:      v.Mileage,
	} {
		raw, err := json.Marshal(src)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		values[key] = string(raw)
	}

	for key, value := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vehicle_meta (vehicle_id, meta_key, meta_value) VALUES (?, ?, ?)
			 ON CONFLICT (vehicle_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value`,
			v.ID, key, value); err != nil {
			return fmt.Errorf("write meta %s for vehicle %d: %w", key, v.ID, err)
		}
	}
	return nil
}

// applyMeta decodes stored meta onto v. Malformed option JSON leaves that list empty.
func applyMeta(v *Vehicle, meta map[string]string) {
	v.ImageURL = meta[metaImageURL]
	v.WhatsAppNumber = meta[metaWhatsApp]
	if raw := meta[metaBasePrice]; raw != "" {
		v.BasePrice, _ = strconv.ParseFloat(raw, 64)
	}
	if raw := meta[metaWatching]; raw != "" {
		v.WatchingCount, _ = strconv.Atoi(raw)
	}
	if err := json.Unmarshal([]byte(meta[metaCategories]), &v.Categories); err != nil {
		v.Categories = nil
	}
	if err := json.Unmarshal([]byte(meta[metaSubscription]), &v.Subscription); err != nil {
		v.Subscription = nil
	}
	if err := json.Unmarshal([]byte(meta[metaInsurance]), &v.Insurance); err != nil {
		v.Insurance = nil
	}
	if err := json.Unmarshal([]byte(meta[metaMileage]), &v.Mileage); err != nil {
		v.Mileage = nil
	}
}
