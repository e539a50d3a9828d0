package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/phil-mansfield/nmie"
)

// Spectrum is the header of one stored sweep.
type Spectrum struct {
	ID         string `db:"id"`
	Label      string `db:"label"`
	CreatedAt  string `db:"created_at"`
	Axis       Axis   `db:"axis"`
	LayersJSON string `db:"layers_json"`
	Samples    int    `db:"samples"`
}

type spectrumRow struct {
	SpectrumID string  `db:"spectrum_id"`
	Idx        int     `db:"idx"`
	X          float64 `db:"x"`
	Qext       float64 `db:"qext"`
	Qsca       float64 `db:"qsca"`
	Qabs       float64 `db:"qabs"`
	Qbk        float64 `db:"qbk"`
}

// SaveSpectrum stores the rows of a sweep of cfg in one transaction.
func (db *DB) SaveSpectrum(
	ctx context.Context, cfg *nmie.Config, label string, axis Axis,
	rows []nmie.SpectrumRow,
) (uuid.UUID, error) {
	layers, err := encodeLayers(cfg.Layers())
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode layers: %w", err)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	id := uuid.New()
	_, err = tx.ExecContext(ctx, `INSERT INTO spectra
		(id, label, created_at, axis, layers_json, samples)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), label, now(), string(axis), layers, len(rows),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert spectrum: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO spectrum_rows
		(spectrum_id, idx, x, qext, qsca, qabs, qbk)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return uuid.Nil, err
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, id.String(), i, r[0], r[1], r[2], r[3], r[4]); err != nil {
			return uuid.Nil, fmt.Errorf("insert spectrum row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// LoadSpectrum returns the header and rows of a stored sweep.
func (db *DB) LoadSpectrum(ctx context.Context, id uuid.UUID) (*Spectrum, []nmie.SpectrumRow, error) {
	sp := &Spectrum{}
	err := db.conn.GetContext(ctx, sp, `SELECT * FROM spectra WHERE id = ?`, id.String())
	if err != nil {
		return nil, nil, notFound(err, "spectrum", id)
	}

	var recs []spectrumRow
	err = db.conn.SelectContext(ctx, &recs,
		`SELECT * FROM spectrum_rows WHERE spectrum_id = ? ORDER BY idx`, id.String())
	if err != nil {
		return nil, nil, fmt.Errorf("select spectrum rows: %w", err)
	}

	rows := make([]nmie.SpectrumRow, len(recs))
	for i, r := range recs {
		rows[i] = nmie.SpectrumRow{r.X, r.Qext, r.Qsca, r.Qabs, r.Qbk}
	}
	return sp, rows, nil
}

// Spectra lists stored sweep headers with the given label, or all of them
// for an empty label.
func (db *DB) Spectra(ctx context.Context, label string) ([]Spectrum, error) {
	var out []Spectrum
	var err error
	if label == "" {
		err = db.conn.SelectContext(ctx, &out,
			`SELECT * FROM spectra ORDER BY created_at, id`)
	} else {
		err = db.conn.SelectContext(ctx, &out,
			`SELECT * FROM spectra WHERE label = ? ORDER BY created_at, id`, label)
	}
	if err != nil {
		return nil, fmt.Errorf("select spectra: %w", err)
	}
	return out, nil
}
