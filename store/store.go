// Package store keeps computed runs and spectra in a SQLite database so
// that sweeps can be compared and re-plotted without recomputing them.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/phil-mansfield/nmie"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("store: record not found")

// Axis names the swept variable of a spectrum.
type Axis string

const (
	WavelengthAxis    Axis = "wavelength"
	SizeParameterAxis Axis = "size_parameter"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open(
		"sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
	)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		created_at TEXT NOT NULL,
		wavelength REAL NOT NULL,
		radius REAL NOT NULL,
		size_parameter REAL NOT NULL,
		layers_json TEXT NOT NULL,
		pec INTEGER NOT NULL,
		terms INTEGER NOT NULL,
		qext REAL NOT NULL,
		qsca REAL NOT NULL,
		qabs REAL NOT NULL,
		qbk REAL NOT NULL,
		qpr REAL NOT NULL,
		g REAL NOT NULL,
		albedo REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS spectra (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		created_at TEXT NOT NULL,
		axis TEXT NOT NULL,
		layers_json TEXT NOT NULL,
		samples INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS spectrum_rows (
		spectrum_id TEXT NOT NULL REFERENCES spectra(id),
		idx INTEGER NOT NULL,
		x REAL NOT NULL,
		qext REAL NOT NULL,
		qsca REAL NOT NULL,
		qabs REAL NOT NULL,
		qbk REAL NOT NULL,
		PRIMARY KEY (spectrum_id, idx)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_label ON runs(label);
	CREATE INDEX IF NOT EXISTS idx_spectra_label ON spectra(label);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// layerRecord is the JSON form of one layer; complex numbers are split
// because encoding/json has no complex type.
type layerRecord struct {
	Width float64 `json:"width"`
	Re    float64 `json:"n"`
	Im    float64 `json:"k"`
}

func encodeLayers(layers []nmie.Layer) (string, error) {
	recs := make([]layerRecord, len(layers))
	for i, l := range layers {
		recs[i] = layerRecord{l.Width, real(l.Index), imag(l.Index)}
	}
	b, err := json.Marshal(recs)
	return string(b), err
}

// DecodeLayers turns a stored layers_json column back into layers.
func DecodeLayers(s string) ([]nmie.Layer, error) {
	var recs []layerRecord
	if err := json.Unmarshal([]byte(s), &recs); err != nil {
		return nil, err
	}
	layers := make([]nmie.Layer, len(recs))
	for i, r := range recs {
		layers[i] = nmie.Layer{Width: r.Width, Index: complex(r.Re, r.Im)}
	}
	return layers, nil
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func notFound(err error, kind string, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return err
}
