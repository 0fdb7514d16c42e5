// Package seed creates the demo tables and fills them with generated
// people, posts and tags.
package seed

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"relay-graphql/internal/catalog"
	"relay-graphql/internal/dbexec"
	"relay-graphql/internal/sqlutil"
)

// Supported dialects.
const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite3"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// DDL returns the schema statements of a dialect.
func DDL(dialect string) ([]string, error) {
	data, err := schemaFS.ReadFile("schema/" + dialect + ".sql")
	if err != nil {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	var stmts []string
	for _, stmt := range strings.Split(string(data), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

// Migrate creates the demo tables if they do not exist.
func Migrate(ctx context.Context, exec dbexec.QueryExecutor, dialect string) error {
	stmts, err := DDL(dialect)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := exec.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// TagsPerPost is the number of distinct tags attached to every seeded post.
const TagsPerPost = 4

// Result summarizes one seeding run.
type Result struct {
	Existing int
	People   int
	Posts    int
	Tags     int
}

// Seeder generates demo rows. Output is fully determined by the seed.
type Seeder struct {
	exec    dbexec.QueryExecutor
	catalog *catalog.Catalog
	rng     *rand.Rand
	logger  *slog.Logger
	tagIDs  map[string]int64
}

// New creates a seeder writing through exec.
func New(exec dbexec.QueryExecutor, cat *catalog.Catalog, seed uint64, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		exec:    exec,
		catalog: cat,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		logger:  logger,
		tagIDs:  make(map[string]int64),
	}
}

// Seed tops the people table up to n rows. Existing rows are kept.
func (s *Seeder) Seed(ctx context.Context, n int) (Result, error) {
	person, post, tag, err := s.models()
	if err != nil {
		return Result{}, err
	}

	existing, err := s.count(ctx, person.Table)
	if err != nil {
		return Result{}, err
	}
	res := Result{Existing: existing}
	toCreate := n - existing
	if toCreate < 0 {
		toCreate = 0
	}
	s.logger.Info("seeding people",
		slog.Int("existing", existing),
		slog.Int("creating", toCreate),
	)

	for i := 0; i < toCreate; i++ {
		first := pick(s.rng, firstNames)
		last := pick(s.rng, lastNames)
		personID, err := s.insert(ctx, person, map[string]interface{}{
			"firstName": first,
			"lastName":  last,
			"email":     strings.ToLower(fmt.Sprintf("%s.%s.%d@example.com", first, last, existing+i+1)),
			"age":       18 + s.rng.IntN(63),
		})
		if err != nil {
			return res, err
		}
		res.People++

		posts := 1 + s.rng.IntN(5)
		for j := 1; j <= posts; j++ {
			postID, err := s.insert(ctx, post, map[string]interface{}{
				"title":    fmt.Sprintf("Sample post #%d by %s", j, first),
				"content":  s.paragraph(),
				"personId": personID,
			})
			if err != nil {
				return res, err
			}
			res.Posts++

			for _, name := range s.tagNames() {
				tagID, created, err := s.findOrCreateTag(ctx, tag, name)
				if err != nil {
					return res, err
				}
				if created {
					res.Tags++
				}
				if err := s.link(ctx, post, tag, postID, tagID); err != nil {
					return res, err
				}
			}
		}
	}
	return res, nil
}

func (s *Seeder) models() (person, post, tag *catalog.Model, err error) {
	var ok bool
	if person, ok = s.catalog.Model(catalog.Person); !ok {
		return nil, nil, nil, fmt.Errorf("catalog has no %s model", catalog.Person)
	}
	if post, ok = s.catalog.Model(catalog.Post); !ok {
		return nil, nil, nil, fmt.Errorf("catalog has no %s model", catalog.Post)
	}
	if tag, ok = s.catalog.Model(catalog.Tag); !ok {
		return nil, nil, nil, fmt.Errorf("catalog has no %s model", catalog.Tag)
	}
	return person, post, tag, nil
}

func (s *Seeder) count(ctx context.Context, table string) (int, error) {
	rows, err := s.exec.QueryContext(ctx, "SELECT COUNT(*) FROM "+sqlutil.QuoteIdentifier(table))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("failed to scan %s count: %w", table, err)
		}
	}
	return int(n), rows.Err()
}

// insert writes one row of m keyed by field name and returns its id.
func (s *Seeder) insert(ctx context.Context, m *catalog.Model, values map[string]interface{}) (int64, error) {
	clauses := sq.Eq{}
	for field, v := range values {
		col, ok := m.Column(field)
		if !ok {
			return 0, fmt.Errorf("model %s has no field %q", m.Name, field)
		}
		clauses[sqlutil.QuoteIdentifier(col)] = v
	}
	sqlStr, args, err := sq.Insert(sqlutil.QuoteIdentifier(m.Table)).SetMap(clauses).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build %s insert: %w", m.Table, err)
	}
	result, err := s.exec.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", m.Table, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read %s id: %w", m.Table, err)
	}
	return id, nil
}

func (s *Seeder) findOrCreateTag(ctx context.Context, tag *catalog.Model, name string) (int64, bool, error) {
	if id, ok := s.tagIDs[name]; ok {
		return id, false, nil
	}
	nameCol, _ := tag.Column("name")
	sqlStr, args, err := sq.Select(sqlutil.QuoteIdentifier(tag.PrimaryColumn())).
		From(sqlutil.QuoteIdentifier(tag.Table)).
		Where(sq.Eq{sqlutil.QuoteIdentifier(nameCol): name}).
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("failed to build tag lookup: %w", err)
	}
	rows, err := s.exec.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up tag %q: %w", name, err)
	}
	var id int64
	found := rows.Next()
	if found {
		err = rows.Scan(&id)
	}
	if err == nil {
		err = rows.Err()
	}
	_ = rows.Close()
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up tag %q: %w", name, err)
	}

	created := false
	if !found {
		if id, err = s.insert(ctx, tag, map[string]interface{}{"name": name}); err != nil {
			return 0, false, err
		}
		created = true
	}
	s.tagIDs[name] = id
	return id, created, nil
}

func (s *Seeder) link(ctx context.Context, post, tag *catalog.Model, postID, tagID int64) error {
	_, rel, err := s.catalog.Target(post, "tags")
	if err != nil {
		return err
	}
	through := rel.Through
	sqlStr, args, err := sq.Insert(sqlutil.QuoteIdentifier(through.Table)).
		Columns(sqlutil.QuoteIdentifier(through.SourceKey), sqlutil.QuoteIdentifier(through.TargetKey)).
		Values(postID, tagID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s insert: %w", through.Table, err)
	}
	if _, err := s.exec.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to tag post %d as %s: %w", postID, tag.Name, err)
	}
	return nil
}

// tagNames draws one lowercase word from each tag vocabulary, so the four
// names are always distinct.
func (s *Seeder) tagNames() []string {
	names := make([]string, 0, TagsPerPost)
	for _, words := range tagVocabularies {
		names = append(names, strings.ToLower(pick(s.rng, words)))
	}
	return names
}

func (s *Seeder) paragraph() string {
	n := 3 + s.rng.IntN(4)
	sentences := make([]string, n)
	for i := range sentences {
		sentences[i] = pick(s.rng, sentencePool)
	}
	return strings.Join(sentences, " ")
}

func pick(rng *rand.Rand, words []string) string {
	return words[rng.IntN(len(words))]
}
