// Package migrate applies the SQL migrations and seed files shipped in the
// repository's migrations/ and seeds/ directories. Migrations come in
// NNNN_name.up.sql / NNNN_name.down.sql pairs; seeds are plain .sql files
// applied once. Both are recorded by stem in bookkeeping tables.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	migrationsTable = "schema_migrations"
	seedsTable      = "schema_seeds"

	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
	sqlSuffix  = ".sql"
)

// Manager runs migrations and seeds against a database.
type Manager struct {
	db            *sql.DB
	migrationsDir string
	seedsDir      string
}

// NewManager constructs a Manager reading scripts from the given directories.
func NewManager(db *sql.DB, migrationsDir, seedsDir string) *Manager {
	return &Manager{
		db:            db,
		migrationsDir: migrationsDir,
		seedsDir:      seedsDir,
	}
}

// Entry is one migration's bookkeeping state.
type Entry struct {
	Name    string
	Applied bool
}

// Up applies every pending migration in name order.
func (m *Manager) Up(ctx context.Context) error {
	if err := m.ensureTables(ctx); err != nil {
		return err
	}
	applied, err := m.appliedSet(ctx, migrationsTable)
	if err != nil {
		return err
	}
	scripts, err := listScripts(m.migrationsDir, upSuffix)
	if err != nil {
		return err
	}
	for _, sc := range scripts {
		if applied[sc.Stem] {
			continue
		}
		if err := m.runScript(ctx, sc.Path); err != nil {
			return fmt.Errorf("apply migration %s: %w", sc.Stem, err)
		}
		if err := m.record(ctx, migrationsTable, sc.Stem); err != nil {
			return err
		}
	}
	return nil
}

// Down rolls back the most recently applied migration. It refuses to run
// when the matching .down.sql file is missing.
func (m *Manager) Down(ctx context.Context) error {
	if err := m.ensureTables(ctx); err != nil {
		return err
	}
	history, err := m.appliedOrder(ctx, migrationsTable)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return errors.New("no migrations applied")
	}
	last := history[len(history)-1]
	downPath := filepath.Join(m.migrationsDir, last+downSuffix)
	if _, err := os.Stat(downPath); err != nil {
		return fmt.Errorf("missing down migration for %s", last)
	}
	if err := m.runScript(ctx, downPath); err != nil {
		return fmt.Errorf("rollback migration %s: %w", last, err)
	}
	_, err = m.db.ExecContext(ctx, fmt.Sprintf(`delete from %s where name = $1`, migrationsTable), last)
	return err
}

// Status reports every known migration, on disk or in the bookkeeping
// table, with its applied state.
func (m *Manager) Status(ctx context.Context) ([]Entry, error) {
	if err := m.ensureTables(ctx); err != nil {
		return nil, err
	}
	applied, err := m.appliedSet(ctx, migrationsTable)
	if err != nil {
		return nil, err
	}
	scripts, err := listScripts(m.migrationsDir, upSuffix)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(scripts))
	var entries []Entry
	for _, sc := range scripts {
		seen[sc.Stem] = true
		entries = append(entries, Entry{Name: sc.Stem, Applied: applied[sc.Stem]})
	}
	// Applied migrations whose files were since removed still show up.
	for name := range applied {
		if !seen[name] {
			entries = append(entries, Entry{Name: name, Applied: true})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Seed applies each seed file once, in name order.
func (m *Manager) Seed(ctx context.Context) error {
	if err := m.ensureTables(ctx); err != nil {
		return err
	}
	applied, err := m.appliedSet(ctx, seedsTable)
	if err != nil {
		return err
	}
	scripts, err := listScripts(m.seedsDir, sqlSuffix)
	if err != nil {
		return err
	}
	for _, sc := range scripts {
		if applied[sc.Stem] {
			continue
		}
		if err := m.runScript(ctx, sc.Path); err != nil {
			return fmt.Errorf("apply seed %s: %w", sc.Stem, err)
		}
		if err := m.record(ctx, seedsTable, sc.Stem); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) ensureTables(ctx context.Context) error {
	for _, table := range []string{migrationsTable, seedsTable} {
		ddl := fmt.Sprintf(`
			create table if not exists %s (
				name text primary key,
				applied_at timestamptz not null default now()
			);`, table)
		if _, err := m.db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// runScript executes every statement of one SQL file in a single
// transaction.
func (m *Manager) runScript(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range splitStatements(string(raw)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (m *Manager) record(ctx context.Context, table, name string) error {
	_, err := m.db.ExecContext(ctx,
		fmt.Sprintf(`insert into %s(name, applied_at) values ($1, $2)`, table),
		name, time.Now().UTC())
	return err
}

func (m *Manager) appliedSet(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, fmt.Sprintf(`select name from %s`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	set := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		set[name] = true
	}
	return set, rows.Err()
}

func (m *Manager) appliedOrder(ctx context.Context, table string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, fmt.Sprintf(`select name from %s order by applied_at asc`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

type script struct {
	Stem string
	Path string
}

// listScripts returns the files under dir ending in suffix, sorted by name.
// Stem is the file name with the suffix stripped. A missing directory is
// treated as empty.
func listScripts(dir, suffix string) ([]script, error) {
	if dir == "" {
		return nil, nil
	}
	dirents, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var scripts []script
	for _, d := range dirents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			continue
		}
		scripts = append(scripts, script{
			Stem: strings.TrimSuffix(d.Name(), suffix),
			Path: filepath.Join(dir, d.Name()),
		})
	}
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Stem < scripts[j].Stem })
	return scripts, nil
}

// splitStatements splits SQL on semicolons outside single-quoted strings.
func splitStatements(sql string) []string {
	var stmts []string
	var current strings.Builder
	inString := false
	for _, r := range sql {
		current.WriteRune(r)
		switch r {
		case '\'':
			inString = !inString
		case ';':
			if !inString {
				stmts = append(stmts, current.String())
				current.Reset()
			}
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		stmts = append(stmts, current.String())
	}
	return stmts
}
