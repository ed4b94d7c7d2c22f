package export

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/wafermap/internal/histogram"
	"github.com/banshee-data/wafermap/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ReportDB stores exported reports in SQLite.
type ReportDB struct {
	db   *sql.DB
	logf monitoring.Logf
}

// ReportRow is one stored report header.
type ReportRow struct {
	ID         string
	Created    time.Time
	Mask       string
	Map        string
	DiameterMM int
	DieCount   int
	RadiusMax  float64
}

// OpenReportDB opens or creates the database at path and migrates it to
// the latest schema.
func OpenReportDB(path string, logf monitoring.Logf) (*ReportDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open report db: %w", err)
	}
	// Foreign keys are per connection in SQLite.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	r := &ReportDB{db: db, logf: logf.OrDiscard()}
	if err := r.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Close closes the database.
func (r *ReportDB) Close() error {
	return r.db.Close()
}

// MigrateUp applies all pending migrations.
func (r *ReportDB) MigrateUp() error {
	m, err := r.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: that would close r.db.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the schema version and dirty flag. It returns
// 0, false, nil on an empty database.
func (r *ReportDB) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := r.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (r *ReportDB) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{logf: r.logf}
	return m, nil
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct {
	logf monitoring.Logf
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.logf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Save writes the report header, its dies and both histograms in one
// transaction.
func (r *ReportDB) Save(rep *Report) error {
	sel := rep.Selection
	g := sel.Geometry

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO reports (
			report_id, created_at, mask, map, mask_path, diameter_mm,
			pitch_x_mm, pitch_y_mm, center_x, center_y, die_count,
			radius_min_mm, radius_max_mm, radius_mean_mm
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.Created.Format(time.RFC3339Nano), sel.Mask.Name, sel.Map, sel.Mask.Path, g.Diameter,
		g.Pitch.X, g.Pitch.Y, g.Center.X, g.Center.Y, sel.DieCount,
		sel.Stats.Min, sel.Stats.Max, sel.Stats.Mean,
	)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", rep.ID, err)
	}

	dieStmt, err := tx.Prepare(`INSERT INTO report_dies (report_id, die_index, grid_row, grid_col, radius_mm, label) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare dies: %w", err)
	}
	defer dieStmt.Close()
	for i, d := range sel.Dies {
		if _, err := dieStmt.Exec(rep.ID, i, d.Y, d.X, sel.Radii[i], d.Label); err != nil {
			return fmt.Errorf("insert die %d: %w", i, err)
		}
	}

	binStmt, err := tx.Prepare(`INSERT INTO report_bins (report_id, histogram, bin_index, low_mm, high_mm, count) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare bins: %w", err)
	}
	defer binStmt.Close()
	for _, h := range sel.Histograms() {
		for i, b := range h.Bins {
			if _, err := binStmt.Exec(rep.ID, h.Spec.Name, i, b.Low, b.High, b.Count); err != nil {
				return fmt.Errorf("insert %s bin %d: %w", h.Spec.Name, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report %s: %w", rep.ID, err)
	}
	r.logf("saved report %s (%s/%s, %d dies)", rep.ID, sel.Mask.Name, sel.Map, sel.DieCount)
	return nil
}

// Reports lists stored reports, newest first.
func (r *ReportDB) Reports() ([]ReportRow, error) {
	rows, err := r.db.Query(`
		SELECT report_id, created_at, mask, map, diameter_mm, die_count, COALESCE(radius_max_mm, 0)
		FROM reports
		ORDER BY created_at DESC, report_id`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var row ReportRow
		var created string
		if err := rows.Scan(&row.ID, &created, &row.Mask, &row.Map, &row.DiameterMM, &row.DieCount, &row.RadiusMax); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		row.Created, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("report %s: bad created_at %q: %w", row.ID, created, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Bins returns the stored bins of one histogram of a report, in order.
func (r *ReportDB) Bins(reportID, name string) ([]histogram.Bin, error) {
	rows, err := r.db.Query(`
		SELECT low_mm, high_mm, count FROM report_bins
		WHERE report_id = ? AND histogram = ?
		ORDER BY bin_index`, reportID, name)
	if err != nil {
		return nil, fmt.Errorf("query bins: %w", err)
	}
	defer rows.Close()

	var out []histogram.Bin
	for rows.Next() {
		var b histogram.Bin
		if err := rows.Scan(&b.Low, &b.High, &b.Count); err != nil {
			return nil, fmt.Errorf("scan bin: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DieCount returns the number of stored dies of a report.
func (r *ReportDB) DieCount(reportID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM report_dies WHERE report_id = ?`, reportID).Scan(&n)
	return n, err
}

// Delete removes a report and, through the foreign keys, its dies and bins.
func (r *ReportDB) Delete(reportID string) error {
	res, err := r.db.Exec(`DELETE FROM reports WHERE report_id = ?`, reportID)
	if err != nil {
		return fmt.Errorf("delete report %s: %w", reportID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete report %s: %w", reportID, sql.ErrNoRows)
	}
	return nil
}
