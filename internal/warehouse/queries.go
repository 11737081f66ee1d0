package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Queries runs the reporting queries against a warehouse connection
type Queries struct {
	db      Querier
	dialect schema.Dialect
}

// NewQueries binds the queries to a connection. Only MySQL and SQLite are
// reachable through database/sql here.
func NewQueries(db Querier, dialect schema.Dialect) (*Queries, error) {
	switch dialect {
	case schema.DialectMySQL, schema.DialectSQLite:
	default:
		return nil, fmt.Errorf("%w: %s", schema.ErrUnsupportedDialect, dialect)
	}
	return &Queries{db: db, dialect: dialect}, nil
}

// Tags holds the first and second tag of a multiplexed library
type Tags struct {
	SetName     sql.NullString `yaml:"tag_set_name,omitempty"`
	SetIDLims   sql.NullString `yaml:"tag_set_id_lims,omitempty"`
	Sequence    sql.NullString `yaml:"tag_sequence,omitempty"`
	Identifier  sql.NullString `yaml:"tag_identifier,omitempty"`
	Set2Name    sql.NullString `yaml:"tag2_set_name,omitempty"`
	Sequence2   sql.NullString `yaml:"tag2_sequence,omitempty"`
	Identifier2 sql.NullString `yaml:"tag2_identifier,omitempty"`
}

// ONTRun is one sample on an Oxford Nanopore flowcell
type ONTRun struct {
	SampleName     sql.NullString
	SupplierName   sql.NullString
	StudyID        string
	ExperimentName string
	InstrumentSlot int
	Tags
}

// PacBioRun is one library in a PacBio well
type PacBioRun struct {
	SampleUpdated   time.Time
	StudyUpdated    time.Time
	RunUpdated      time.Time
	RunName         string
	PlateBarcode    string
	WellLabel       string
	LibraryTubeName string
	Tags
}

// FluidigmWell is one sample genotyped on a Fluidigm plate
type FluidigmWell struct {
	SampleName       sql.NullString
	ConsentWithdrawn bool
	SampleUpdated    time.Time
	StudyID          string
	PlateBarcode     int64
	WellLabel        string
	RecordedAt       time.Time
}

// MonthlyBases is the sequenced base count for one calendar month
type MonthlyBases struct {
	Month string
	Bases int64
	Runs  int64
}

const recentONTQuery = `
SELECT DISTINCT
  s.name, s.supplier_name, st.id_study_lims,
  o.experiment_name, o.instrument_slot,
  o.tag_set_name, o.tag_set_id_lims, o.tag_sequence, o.tag_identifier,
  o.tag2_set_name, o.tag2_sequence, o.tag2_identifier
FROM oseq_flowcell o
JOIN sample s ON s.id_sample_tmp = o.id_sample_tmp
JOIN study st ON st.id_study_tmp = o.id_study_tmp
WHERE o.last_updated > ? OR s.last_updated > ? OR st.last_updated > ?
ORDER BY o.experiment_name, o.instrument_slot, s.name`

// RecentONT returns ONT flowcell contents where the flowcell, sample or
// study changed after since.
func (q *Queries) RecentONT(ctx context.Context, since time.Time) ([]ONTRun, error) {
	rows, err := q.db.QueryContext(ctx, recentONTQuery, since, since, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent ONT runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ONTRun
	for rows.Next() {
		var r ONTRun
		if err := rows.Scan(
			&r.SampleName, &r.SupplierName, &r.StudyID,
			&r.ExperimentName, &r.InstrumentSlot,
			&r.SetName, &r.SetIDLims, &r.Sequence, &r.Identifier,
			&r.Set2Name, &r.Sequence2, &r.Identifier2,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ONT run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const recentPacBioQuery = `
SELECT DISTINCT
  s.last_updated, st.last_updated, r.last_updated,
  r.id_pac_bio_run_lims, r.plate_barcode, r.well_label, r.pac_bio_library_tube_name,
  r.tag_set_name, r.tag_set_id_lims, r.tag_sequence, r.tag_identifier,
  r.tag2_set_name, r.tag2_sequence, r.tag2_identifier
FROM pac_bio_run r
JOIN sample s ON s.id_sample_tmp = r.id_sample_tmp
JOIN study st ON st.id_study_tmp = r.id_study_tmp
WHERE s.last_updated > ? OR st.last_updated > ?
ORDER BY r.id_pac_bio_run_lims, r.well_label, r.tag_identifier`

// RecentPacBio returns PacBio libraries whose sample or study changed
// after since.
func (q *Queries) RecentPacBio(ctx context.Context, since time.Time) ([]PacBioRun, error) {
	rows, err := q.db.QueryContext(ctx, recentPacBioQuery, since, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent PacBio runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanPacBioRuns(rows)
}

const findPacBioRunsQuery = `
SELECT DISTINCT
  s.last_updated, st.last_updated, r.last_updated,
  r.id_pac_bio_run_lims, r.plate_barcode, r.well_label, r.pac_bio_library_tube_name,
  r.tag_set_name, r.tag_set_id_lims, r.tag_sequence, r.tag_identifier,
  r.tag2_set_name, r.tag2_sequence, r.tag2_identifier
FROM pac_bio_run r
JOIN sample s ON s.id_sample_tmp = r.id_sample_tmp
JOIN study st ON st.id_study_tmp = r.id_study_tmp
WHERE r.id_pac_bio_run_lims = ? AND r.well_label = ?
  AND (? = '' OR r.tag_identifier = ?)
ORDER BY r.tag_identifier, r.pac_bio_library_tube_name`

// FindPacBioRuns returns the libraries in one well of a PacBio run. An
// empty tagIdentifier matches every tag, including untagged libraries.
func (q *Queries) FindPacBioRuns(ctx context.Context, runName, wellLabel, tagIdentifier string) ([]PacBioRun, error) {
	rows, err := q.db.QueryContext(ctx, findPacBioRunsQuery, runName, wellLabel, tagIdentifier, tagIdentifier)
	if err != nil {
		return nil, fmt.Errorf("failed to query PacBio run %s well %s: %w", runName, wellLabel, err)
	}
	defer func() { _ = rows.Close() }()

	return scanPacBioRuns(rows)
}

func scanPacBioRuns(rows *sql.Rows) ([]PacBioRun, error) {
	var out []PacBioRun
	for rows.Next() {
		var r PacBioRun
		if err := rows.Scan(
			&r.SampleUpdated, &r.StudyUpdated, &r.RunUpdated,
			&r.RunName, &r.PlateBarcode, &r.WellLabel, &r.LibraryTubeName,
			&r.SetName, &r.SetIDLims, &r.Sequence, &r.Identifier,
			&r.Set2Name, &r.Sequence2, &r.Identifier2,
		); err != nil {
			return nil, fmt.Errorf("failed to scan PacBio run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const recentFluidigmQuery = `
SELECT DISTINCT
  s.name, s.consent_withdrawn, s.last_updated, st.id_study_lims,
  f.plate_barcode, f.well_label, f.recorded_at
FROM flgen_plate f
JOIN sample s ON s.id_sample_tmp = f.id_sample_tmp
JOIN study st ON st.id_study_tmp = f.id_study_tmp
WHERE f.last_updated > ? OR st.last_updated > ? OR s.last_updated > ?
ORDER BY f.plate_barcode, f.well_label`

// RecentFluidigm returns Fluidigm wells where the plate, study or sample
// changed after since.
func (q *Queries) RecentFluidigm(ctx context.Context, since time.Time) ([]FluidigmWell, error) {
	rows, err := q.db.QueryContext(ctx, recentFluidigmQuery, since, since, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent Fluidigm wells: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanFluidigmWells(rows)
}

const flgenPlateQuery = `
SELECT
  s.name, s.consent_withdrawn, s.last_updated, st.id_study_lims,
  f.plate_barcode, f.well_label, f.recorded_at
FROM flgen_plate f
JOIN sample s ON s.id_sample_tmp = f.id_sample_tmp
JOIN study st ON st.id_study_tmp = f.id_study_tmp
WHERE f.plate_barcode = ? AND f.well_label = ?
ORDER BY f.id_flgen_plate_tmp`

// FlgenPlate returns the samples recorded in one well of a Fluidigm plate
func (q *Queries) FlgenPlate(ctx context.Context, plateBarcode int64, wellLabel string) ([]FluidigmWell, error) {
	rows, err := q.db.QueryContext(ctx, flgenPlateQuery, plateBarcode, wellLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to query Fluidigm plate %d well %s: %w", plateBarcode, wellLabel, err)
	}
	defer func() { _ = rows.Close() }()

	return scanFluidigmWells(rows)
}

func scanFluidigmWells(rows *sql.Rows) ([]FluidigmWell, error) {
	var out []FluidigmWell
	for rows.Next() {
		var w FluidigmWell
		if err := rows.Scan(
			&w.SampleName, &w.ConsentWithdrawn, &w.SampleUpdated, &w.StudyID,
			&w.PlateBarcode, &w.WellLabel, &w.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan Fluidigm well: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// QCComplete is the run status description counted by SequencedBasesByMonth
const QCComplete = "qc complete"

const sequencedBasesQuery = `
SELECT %[1]s AS month,
  SUM(m.cycles * m.interop_cluster_count_pf_total) AS bases,
  COUNT(*) AS runs
FROM iseq_run_lane_metrics m
JOIN iseq_run_status s ON s.id_run = m.id_run
JOIN iseq_run_status_dict d ON d.id_run_status_dict = s.id_run_status_dict
WHERE d.description = ? AND s.date > ?
GROUP BY %[1]s
ORDER BY month`

// SequencedBasesByMonth sums the purity-filtered bases of lanes whose run
// reached qc complete after since, grouped by the month of that status.
func (q *Queries) SequencedBasesByMonth(ctx context.Context, since time.Time) ([]MonthlyBases, error) {
	query := fmt.Sprintf(sequencedBasesQuery, q.monthExpr("s.date"))
	rows, err := q.db.QueryContext(ctx, query, QCComplete, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query sequenced bases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []MonthlyBases
	for rows.Next() {
		var (
			m     MonthlyBases
			bases sql.NullInt64
		)
		if err := rows.Scan(&m.Month, &bases, &m.Runs); err != nil {
			return nil, fmt.Errorf("failed to scan monthly bases: %w", err)
		}
		m.Bases = bases.Int64
		out = append(out, m)
	}
	return out, rows.Err()
}

func (q *Queries) monthExpr(column string) string {
	if q.dialect == schema.DialectSQLite {
		return fmt.Sprintf("strftime('%%Y-%%m', %s)", column)
	}
	return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m')", column)
}

var tagIndexPattern = regexp.MustCompile(`.*-(\d+)$`)

// TagIndex extracts the numeric index from an ONT tag identifier such as
// "NB01-12". It returns false when the identifier carries no index.
func TagIndex(identifier string) (int, bool) {
	m := tagIndexPattern.FindStringSubmatch(identifier)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
