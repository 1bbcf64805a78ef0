package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Eigenbraid/Dice/internal/core"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), Options{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "names.db"),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.Bootstrap(context.Background())
	require.NoError(t, err)
	return s
}

func TestBootstrap_SeedsReferenceData(t *testing.T) {
	s := setupTestStore(t)

	sum, err := s.Summary(context.Background())
	require.NoError(t, err)

	want := BootstrapSummary{
		Positions: 4,
		Genders:   5,
		TagTypes:  3,
		Tags:      13,
		Names:     57,
		NameTags:  57,
	}
	if diff := cmp.Diff(want, *sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestBootstrap_Idempotent(t *testing.T) {
	s := setupTestStore(t)

	first, err := s.Summary(context.Background())
	require.NoError(t, err)

	second, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, *first, *second)
}

func TestBootstrap_BladesTagsHaveParent(t *testing.T) {
	s := setupTestStore(t)

	var orphans int
	err := s.DB().QueryRow(`
		SELECT COUNT(*) FROM tags
		WHERE tag_name LIKE 'Blades%' AND tag_name <> 'Blades In The Dark'
		AND parent_tag_id IS NULL`).Scan(&orphans)
	require.NoError(t, err)
	assert.Zero(t, orphans)
}

func TestLoadVocabulary(t *testing.T) {
	s := setupTestStore(t)

	vocab, err := s.LoadVocabulary(context.Background())
	require.NoError(t, err)

	assert.Len(t, vocab.Positions, 4)
	assert.Len(t, vocab.Genders, 5)
	assert.Contains(t, vocab.Tags, "Blades - Skovlan")
	assert.Contains(t, vocab.Tags, "Default")
	assert.NotContains(t, vocab.Positions, "middle")
}

func insertEntry(t *testing.T, s *Store, vocab *core.Vocabulary, name string, tags ...string) int64 {
	t.Helper()

	entry := core.NameEntry{
		Name:       name,
		PositionID: vocab.Positions["first"],
		GenderID:   vocab.Genders["male"],
		Weight:     1,
	}
	for _, tag := range tags {
		entry.TagIDs = append(entry.TagIDs, vocab.Tags[tag])
	}

	var id int64
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		var err error
		id, err = tx.InsertName(context.Background(), entry)
		return err
	})
	require.NoError(t, err)
	return id
}

func TestInsertName_TagsSortedByteWise(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	vocab, err := s.LoadVocabulary(ctx)
	require.NoError(t, err)

	id := insertEntry(t, s, vocab, "Angus", "Blades In The Dark", "Blades - Skovlan", "Backer Names")

	tags, err := s.NameTags(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Backer Names", "Blades - Skovlan", "Blades In The Dark"}, tags)
}

func TestInsertName_DuplicateIsUniqueViolation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	vocab, err := s.LoadVocabulary(ctx)
	require.NoError(t, err)
	insertEntry(t, s, vocab, "Angus")

	err = s.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.InsertName(ctx, core.NameEntry{
			Name:       "Angus",
			PositionID: vocab.Positions["last"],
			GenderID:   vocab.Genders["any"],
			Weight:     1,
		})
		return err
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err), "got %v", err)
	assert.Equal(t, "DB001", core.MapError(err).Code)
}

func TestSavepoint_RollbackKeepsEarlierRows(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	vocab, err := s.LoadVocabulary(ctx)
	require.NoError(t, err)
	before, err := s.CountNames(ctx)
	require.NoError(t, err)

	entry := func(name string) core.NameEntry {
		return core.NameEntry{
			Name:       name,
			PositionID: vocab.Positions["first"],
			GenderID:   vocab.Genders["any"],
			Weight:     1,
		}
	}

	err = s.WithTx(ctx, func(tx *Tx) error {
		for i, name := range []string{"Brenna", "Brenna", "Corvin"} {
			sp := "row_" + string(rune('a'+i))
			require.NoError(t, tx.Savepoint(ctx, sp))
			if _, err := tx.InsertName(ctx, entry(name)); err != nil {
				require.True(t, IsUniqueViolation(err))
				require.NoError(t, tx.RollbackTo(ctx, sp))
				continue
			}
			require.NoError(t, tx.Release(ctx, sp))
		}
		return nil
	})
	require.NoError(t, err)

	after, err := s.CountNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+2, after)
}

func TestReset(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	removed, err := s.Reset(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 57, removed)

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.Names)
	assert.Zero(t, sum.NameTags)
	assert.EqualValues(t, 13, sum.Tags, "reference tables are kept")
}

func TestTx_DeleteNamesEmptiesBeforeInserts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	vocab, err := s.LoadVocabulary(ctx)
	require.NoError(t, err)

	rollback := errors.New("rollback")
	err = s.WithTx(ctx, func(tx *Tx) error {
		removed, err := tx.DeleteNames(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 57, removed)

		n, err := tx.CountNames(ctx)
		require.NoError(t, err)
		assert.Zero(t, n, "no names may remain after the reset step")

		_, err = tx.InsertName(ctx, core.NameEntry{
			Name:       "Brenna",
			PositionID: vocab.Positions["first"],
			GenderID:   vocab.Genders["female"],
			Weight:     1,
		})
		require.NoError(t, err)

		n, err = tx.CountNames(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	n, err := s.CountNames(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 57, n, "rolled back reset keeps the names")
}

func TestListNames_OrderedByID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Reset(ctx)
	require.NoError(t, err)

	vocab, err := s.LoadVocabulary(ctx)
	require.NoError(t, err)
	insertEntry(t, s, vocab, "Zed")
	insertEntry(t, s, vocab, "Abe")

	names, err := s.ListNames(ctx)
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "Zed", names[0].Name)
	assert.Equal(t, "Abe", names[1].Name)
	assert.Equal(t, "first", names[1].Position)
	assert.Equal(t, "male", names[1].Gender)
	assert.Equal(t, 1.0, names[1].Weight)
}

func TestParseDriver(t *testing.T) {
	tests := []struct {
		in      string
		want    Driver
		wantErr bool
	}{
		{"", DriverSQLite, false},
		{"sqlite", DriverSQLite, false},
		{"SQLite3", DriverSQLite, false},
		{"pgx", DriverPostgres, false},
		{"postgres", DriverPostgres, false},
		{"mysql", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDriver(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO name_tags (name_id, tag_id) VALUES (?, ?)"
	assert.Equal(t, q, rebind(DriverSQLite, q))
	assert.Equal(t, "INSERT INTO name_tags (name_id, tag_id) VALUES ($1, $2)", rebind(DriverPostgres, q))
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(sqliteSchema)
	assert.Len(t, stmts, 10)
	for _, stmt := range stmts {
		assert.NotContains(t, stmt, "--")
	}

	assert.Len(t, splitStatements(postgresSchema), 10)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "names.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN(""))
	assert.Equal(t, "x.db?mode=ro&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("x.db?mode=ro"))
	assert.Equal(t, "x.db?_pragma=foreign_keys(0)", sqliteDSN("x.db?_pragma=foreign_keys(0)"))
}
