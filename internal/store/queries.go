package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Eigenbraid/Dice/internal/core"
	"github.com/jackc/pgx/v5/pgconn"
)

// LoadVocabulary reads positions, genders and tags into lookup tables.
// A tag name that exists under several tag types resolves to its lowest id.
func (s *Store) LoadVocabulary(ctx context.Context) (*core.Vocabulary, error) {
	vocab := core.NewVocabulary()

	loads := []struct {
		what  string
		query string
		into  map[string]int64
	}{
		{"positions", "SELECT id, position FROM positions ORDER BY id", vocab.Positions},
		{"genders", "SELECT id, gender FROM genders ORDER BY id", vocab.Genders},
		{"tags", "SELECT id, tag_name FROM tags ORDER BY id", vocab.Tags},
	}

	for _, l := range loads {
		if err := s.loadLookup(ctx, l.query, l.into); err != nil {
			return nil, fmt.Errorf("load %s: %w", l.what, err)
		}
	}
	return vocab, nil
}

func (s *Store) loadLookup(ctx context.Context, query string, into map[string]int64) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    int64
			label sql.NullString
		)
		if err := rows.Scan(&id, &label); err != nil {
			return err
		}
		if !label.Valid {
			continue
		}
		if _, seen := into[label.String]; !seen {
			into[label.String] = id
		}
	}
	return rows.Err()
}

// CountNames returns the number of rows in names.
func (s *Store) CountNames(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM names").Scan(&n); err != nil {
		return 0, fmt.Errorf("count names: %w", err)
	}
	return n, nil
}

// resetStatements clears names and their associations, children first.
var resetStatements = []string{
	"DELETE FROM name_tags",
	"DELETE FROM names",
}

// Reset deletes every name and name/tag association in one committed
// transaction. Reference tables are kept. Returns the number of names removed.
func (s *Store) Reset(ctx context.Context) (int64, error) {
	var removed int64
	err := s.WithTx(ctx, func(tx *Tx) error {
		var err error
		removed, err = tx.DeleteNames(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ListNames returns every name with its position and gender labels, ordered
// by id. Tags are not populated; see NameTags.
func (s *Store) ListNames(ctx context.Context) ([]core.ExportedName, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.name, p.position, g.gender, n.frequency_weight
		FROM names n
		JOIN positions p ON n.position_id = p.id
		JOIN genders g ON n.gender_id = g.id
		ORDER BY n.id`)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	defer rows.Close()

	var names []core.ExportedName
	for rows.Next() {
		var (
			n      core.ExportedName
			weight sql.NullFloat64
		)
		if err := rows.Scan(&n.ID, &n.Name, &n.Position, &n.Gender, &weight); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		n.Weight = core.DefaultWeight
		if weight.Valid {
			n.Weight = weight.Float64
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	return names, nil
}

// NameTags returns the tag names associated with a name, sorted byte-wise.
// The sort is repeated in Go so the order does not depend on the database collation.
func (s *Store) NameTags(ctx context.Context, nameID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT t.tag_name
		FROM tags t
		JOIN name_tags nt ON t.id = nt.tag_id
		WHERE nt.name_id = ?
		ORDER BY t.tag_name`), nameID)
	if err != nil {
		return nil, fmt.Errorf("tags for name %d: %w", nameID, err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tags for name %d: %w", nameID, err)
	}

	sort.Strings(tags)
	return tags, nil
}

// Tx is a transaction with savepoint support.
type Tx struct {
	tx     *sql.Tx
	driver Driver
}

// WithTx runs fn inside a transaction, committing if fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback() // No-op if already committed

	if err := fn(&Tx{tx: sqlTx, driver: s.driver}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Savepoint creates a named savepoint.
func (t *Tx) Savepoint(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name)
	return err
}

// RollbackTo rolls the transaction back to a savepoint, keeping earlier work.
func (t *Tx) RollbackTo(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)
	return err
}

// Release releases a savepoint.
func (t *Tx) Release(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
	return err
}

// InsertName inserts a validated entry and its tag associations.
// Returns the new name id.
func (t *Tx) InsertName(ctx context.Context, entry core.NameEntry) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, rebind(t.driver, `
		INSERT INTO names (name, position_id, gender_id, frequency_weight)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		entry.Name, entry.PositionID, entry.GenderID, entry.Weight,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert name %q: %w", entry.Name, err)
	}

	for _, tagID := range entry.TagIDs {
		if _, err := t.tx.ExecContext(ctx, rebind(t.driver,
			"INSERT INTO name_tags (name_id, tag_id) VALUES (?, ?)"),
			id, tagID,
		); err != nil {
			return 0, fmt.Errorf("insert tag %d for %q: %w", tagID, entry.Name, err)
		}
	}

	return id, nil
}

// DeleteNames deletes every name and name/tag association. Returns the
// number of names removed.
func (t *Tx) DeleteNames(ctx context.Context) (int64, error) {
	var removed int64
	for _, stmt := range resetStatements {
		res, err := t.tx.ExecContext(ctx, stmt)
		if err != nil {
			return 0, fmt.Errorf("reset: %s: %w", strings.ToLower(stmt), err)
		}
		if strings.HasSuffix(stmt, " names") {
			removed, _ = res.RowsAffected()
		}
	}
	return removed, nil
}

// CountNames returns the number of names visible inside the transaction.
func (t *Tx) CountNames(ctx context.Context) (int64, error) {
	var n int64
	if err := t.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM names").Scan(&n); err != nil {
		return 0, fmt.Errorf("count names: %w", err)
	}
	return n, nil
}

// Exec runs a statement inside the transaction.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, rebind(t.driver, query), args...)
}

// IsUniqueViolation reports whether err is a uniqueness or primary key violation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}
