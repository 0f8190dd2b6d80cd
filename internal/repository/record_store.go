package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"csv-import-service/internal/domain"
)

// ErrRecordNotFound is returned by Update when no row matches both the id
// and the tenant id.
var ErrRecordNotFound = errors.New("record not found")

// identRe restricts table and column names to plain snake_case identifiers.
// Table names come from the template registry and column names from template
// db fields, but since they end up interpolated into SQL they are checked
// again here.
var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresRecordStore implements RecordStore over tenant-scoped tables that
// share the standard column set (id, company_id, created_by, created_at,
// updated_at).
type PostgresRecordStore struct {
	pool *pgxpool.Pool
}

// NewPostgresRecordStore creates a new PostgresRecordStore.
func NewPostgresRecordStore(pool *pgxpool.Pool) *PostgresRecordStore {
	return &PostgresRecordStore{pool: pool}
}

func quoteIdent(name string) (string, error) {
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return `"` + name + `"`, nil
}

// Select fetches up to limit rows for the tenant, newest update first.
func (s *PostgresRecordStore) Select(ctx context.Context, table string, columns []string, tenantID string, limit int) ([]domain.Record, error) {
	tbl, err := quoteIdent(table)
	if err != nil {
		return nil, err
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		if quoted[i], err = quoteIdent(c); err != nil {
			return nil, err
		}
	}

	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE company_id = $1 ORDER BY updated_at DESC, id LIMIT %d`,
		strings.Join(quoted, ", "), tbl, limit,
	)

	rows, err := s.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row from %s: %w", table, err)
		}
		rec := make(domain.Record, len(columns))
		for i, c := range columns {
			rec[c] = normalizeValue(values[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows from %s: %w", table, err)
	}
	return out, nil
}

// Insert writes all records in one multi-row statement and returns the ids
// the store confirmed. Column set is the sorted union of record keys so a
// sparse batch still produces a single statement.
func (s *PostgresRecordStore) Insert(ctx context.Context, table string, records []domain.Record) ([]domain.Record, error) {
	if len(records) == 0 {
		return nil, nil
	}
	tbl, err := quoteIdent(table)
	if err != nil {
		return nil, err
	}

	colSet := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			colSet[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(colSet))
	for c := range colSet {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	for i, c := range columns {
		if quoted[i], err = quoteIdent(c); err != nil {
			return nil, err
		}
	}

	var (
		placeholders []string
		args         []any
	)
	argNum := 1
	for _, r := range records {
		ph := make([]string, len(columns))
		for i, c := range columns {
			ph[i] = fmt.Sprintf("$%d", argNum)
			args = append(args, r[c])
			argNum++
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ", ")+")")
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES %s RETURNING id`,
		tbl, strings.Join(quoted, ", "), strings.Join(placeholders, ", "),
	)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}
	defer rows.Close()

	var inserted []domain.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read inserted id from %s: %w", table, err)
		}
		inserted = append(inserted, domain.Record{"id": normalizeValue(values[0])})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("confirm inserts into %s: %w", table, err)
	}
	return inserted, nil
}

// Update applies data to one row, scoped by both id and tenant id so a
// mismatched tenant can never touch another tenant's row.
func (s *PostgresRecordStore) Update(ctx context.Context, table, id, tenantID string, data domain.Record) (domain.Record, error) {
	tbl, err := quoteIdent(table)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("update %s: empty payload", table)
	}

	columns := make([]string, 0, len(data))
	for c := range data {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	var (
		sets []string
		args = []any{id, tenantID}
	)
	argNum := 3
	for _, c := range columns {
		qc, err := quoteIdent(c)
		if err != nil {
			return nil, err
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", qc, argNum))
		args = append(args, data[c])
		argNum++
	}

	query := fmt.Sprintf(
		`UPDATE %s SET %s WHERE id = $1 AND company_id = $2 RETURNING id`,
		tbl, strings.Join(sets, ", "),
	)

	var returnedID any
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&returnedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update %s id=%s: %w", table, id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("update %s id=%s: %w", table, id, err)
	}
	return domain.Record{"id": normalizeValue(returnedID)}, nil
}

// normalizeValue converts pgx-native values into the plain types the import
// pipeline works with (uuids arrive as [16]byte, numerics as pgtype values).
func normalizeValue(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return formatUUID(val)
	case fmt.Stringer:
		return val.String()
	default:
		return v
	}
}

func formatUUID(b [16]byte) string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
