package store

import (
	"context"
	"fmt"
	"strings"
)

// Reference data seeded by Bootstrap.
var (
	seedPositions = []string{"first", "last", "title", "nickname"}
	seedGenders   = []string{"any", "male", "female", "ambiguous", "queer"}
	seedTagTypes  = []string{"source", "vibe", "theme"}

	seedParentTags = []string{
		"Blades In The Dark",
		"Backer Names",
		"BehindTheName.com",
		"Test Names",
		"Default",
	}

	// Children of "Blades In The Dark".
	seedBladesTags = []string{
		"Blades 68",
		"Blades - Red Water",
		"Blades - Dagger Isles",
		"Blades - Akoros",
		"Blades - Iruvia",
		"Blades - Severos",
		"Blades - Skovlan",
		"Blades - Tycheros",
	}
)

type seedTitle struct {
	name   string
	gender string
}

// Universal titles, all tagged Default.
var seedTitles = []seedTitle{
	{"Dr.", "any"}, {"Professor", "any"}, {"Captain", "any"},
	{"Sir", "male"}, {"Lady", "female"}, {"Lord", "male"}, {"Dame", "female"},
	{"Colonel", "any"}, {"Major", "any"}, {"Lieutenant", "any"}, {"Sergeant", "any"},
	{"Admiral", "any"}, {"General", "any"}, {"Commander", "any"}, {"Chief", "any"},
	{"Duke", "male"}, {"Duchess", "female"}, {"Count", "male"}, {"Countess", "female"},
	{"Baron", "male"}, {"Baroness", "female"}, {"Knight", "any"}, {"Elder", "any"},
	{"Reverend", "any"}, {"Father", "male"}, {"Mother", "female"},
	{"Sister", "female"}, {"Brother", "male"}, {"Bishop", "any"}, {"Archbishop", "any"},
	{"Judge", "any"}, {"Justice", "any"}, {"Senator", "any"}, {"Governor", "any"},
	{"Mayor", "any"}, {"Chancellor", "any"}, {"Dean", "any"}, {"Magistrate", "any"},
	{"Councilor", "any"}, {"Ambassador", "any"}, {"Minister", "any"}, {"Secretary", "any"},
	{"President", "any"}, {"Vice President", "any"}, {"Chairman", "male"},
	{"Chairwoman", "female"}, {"Director", "any"}, {"Superintendent", "any"},
	{"Commissioner", "any"}, {"Inspector", "any"},
	{"King", "male"}, {"Queen", "female"}, {"Prince", "male"}, {"Princess", "female"},
	{"Master", "male"}, {"Mistress", "female"}, {"Esquire", "any"},
}

// BootstrapSummary reports row counts after Bootstrap.
type BootstrapSummary struct {
	Positions int64
	Genders   int64
	TagTypes  int64
	Tags      int64
	Names     int64
	NameTags  int64
}

// Bootstrap creates the schema and seeds the reference data and default
// titles. It is safe to run against an existing database.
func (s *Store) Bootstrap(ctx context.Context) (*BootstrapSummary, error) {
	err := s.WithTx(ctx, func(tx *Tx) error {
		for _, stmt := range splitStatements(s.schema()) {
			if _, err := tx.tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
		}
		return seed(ctx, tx)
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("database bootstrapped",
		"driver", s.driver,
		"tags", summary.Tags,
		"names", summary.Names,
	)
	return summary, nil
}

func seed(ctx context.Context, tx *Tx) error {
	lookups := []struct {
		query  string
		values []string
	}{
		{"INSERT INTO positions (position) VALUES (?) ON CONFLICT DO NOTHING", seedPositions},
		{"INSERT INTO genders (gender) VALUES (?) ON CONFLICT DO NOTHING", seedGenders},
		{"INSERT INTO tag_types (type_name) VALUES (?) ON CONFLICT DO NOTHING", seedTagTypes},
	}
	for _, l := range lookups {
		for _, v := range l.values {
			if _, err := tx.Exec(ctx, l.query, v); err != nil {
				return fmt.Errorf("seed %q: %w", v, err)
			}
		}
	}

	for _, tag := range seedParentTags {
		if _, err := tx.Exec(ctx, `
			INSERT INTO tags (tag_type_id, tag_name, parent_tag_id, metadata_json)
			SELECT id, CAST(? AS TEXT), NULL, NULL FROM tag_types WHERE type_name = 'source'
			ON CONFLICT DO NOTHING`, tag); err != nil {
			return fmt.Errorf("seed tag %q: %w", tag, err)
		}
	}

	for _, tag := range seedBladesTags {
		if _, err := tx.Exec(ctx, `
			INSERT INTO tags (tag_type_id, tag_name, parent_tag_id, metadata_json)
			SELECT tt.id, CAST(? AS TEXT), p.id, NULL
			FROM tag_types tt, tags p
			WHERE tt.type_name = 'source' AND p.tag_name = 'Blades In The Dark'
			ON CONFLICT DO NOTHING`, tag); err != nil {
			return fmt.Errorf("seed tag %q: %w", tag, err)
		}
	}

	for _, title := range seedTitles {
		if _, err := tx.Exec(ctx, `
			INSERT INTO names (name, position_id, gender_id, frequency_weight)
			SELECT CAST(? AS TEXT), p.id, g.id, 1.0
			FROM positions p, genders g
			WHERE p.position = 'title' AND g.gender = ?
			ON CONFLICT DO NOTHING`, title.name, title.gender); err != nil {
			return fmt.Errorf("seed title %q: %w", title.name, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO name_tags (name_id, tag_id)
			SELECT n.id, t.id
			FROM names n, tags t
			WHERE n.name = ? AND t.tag_name = 'Default'
			ON CONFLICT DO NOTHING`, title.name); err != nil {
			return fmt.Errorf("tag title %q: %w", title.name, err)
		}
	}

	return nil
}

// Summary counts the rows of every table.
func (s *Store) Summary(ctx context.Context) (*BootstrapSummary, error) {
	var sum BootstrapSummary
	counts := []struct {
		table string
		into  *int64
	}{
		{"positions", &sum.Positions},
		{"genders", &sum.Genders},
		{"tag_types", &sum.TagTypes},
		{"tags", &sum.Tags},
		{"names", &sum.Names},
		{"name_tags", &sum.NameTags},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.into); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return &sum, nil
}

// splitStatements drops "--" comment lines and splits DDL on semicolons.
func splitStatements(ddl string) []string {
	var b strings.Builder
	for _, line := range strings.Split(ddl, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	var stmts []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
