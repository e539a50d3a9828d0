package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/phil-mansfield/nmie"
)

// Run is one stored single-wavelength computation.
type Run struct {
	ID            string  `db:"id"`
	Label         string  `db:"label"`
	CreatedAt     string  `db:"created_at"`
	Wavelength    float64 `db:"wavelength"`
	Radius        float64 `db:"radius"`
	SizeParameter float64 `db:"size_parameter"`
	LayersJSON    string  `db:"layers_json"`
	PEC           int     `db:"pec"`
	Terms         int     `db:"terms"`
	Qext          float64 `db:"qext"`
	Qsca          float64 `db:"qsca"`
	Qabs          float64 `db:"qabs"`
	Qbk           float64 `db:"qbk"`
	Qpr           float64 `db:"qpr"`
	G             float64 `db:"g"`
	Albedo        float64 `db:"albedo"`
}

// SaveRun stores the efficiencies of res under a new ID.
func (db *DB) SaveRun(ctx context.Context, res *nmie.Result, label string) (uuid.UUID, error) {
	cfg := res.Config()
	layers, err := encodeLayers(cfg.Layers())
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode layers: %w", err)
	}
	pec, ok := cfg.PECPosition()
	if !ok {
		pec = -1
	}

	id := uuid.New()
	_, err = db.conn.ExecContext(ctx, `INSERT INTO runs
		(id, label, created_at, wavelength, radius, size_parameter, layers_json,
		 pec, terms, qext, qsca, qabs, qbk, qpr, g, albedo)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), label, now(), cfg.Wavelength(), cfg.TotalRadius(),
		res.SizeParameter(), layers, pec, res.Terms(),
		res.Qext(), res.Qsca(), res.Qabs(), res.Qbk(), res.Qpr(),
		res.AsymmetryFactor(), res.Albedo(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Run loads one stored run.
func (db *DB) Run(ctx context.Context, id uuid.UUID) (*Run, error) {
	run := &Run{}
	err := db.conn.GetContext(ctx, run, `SELECT * FROM runs WHERE id = ?`, id.String())
	if err != nil {
		return nil, notFound(err, "run", id)
	}
	return run, nil
}

// Runs lists every run with the given label, oldest first. An empty label
// lists all runs.
func (db *DB) Runs(ctx context.Context, label string) ([]Run, error) {
	var runs []Run
	var err error
	if label == "" {
		err = db.conn.SelectContext(ctx, &runs,
			`SELECT * FROM runs ORDER BY created_at, id`)
	} else {
		err = db.conn.SelectContext(ctx, &runs,
			`SELECT * FROM runs WHERE label = ? ORDER BY created_at, id`, label)
	}
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	return runs, nil
}
