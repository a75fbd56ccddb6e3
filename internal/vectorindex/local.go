package vectorindex

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Local is a similarity index backed by a sqlite database. Embeddings are
// computed through the configured Embedder, so it works fully offline with a
// local model. Naive scan + cosine sort; fine for session-sized collections.
type Local struct {
	db    *sql.DB
	embed Embedder
}

func NewLocal(db *sql.DB, embed Embedder) (*Local, error) {
	l := &Local{db: db, embed: embed}
	if err := l.initSchema(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Local) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			model TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS vectors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			doc TEXT NOT NULL,
			vector BLOB,
			role TEXT,
			timestamp REAL,
			entry_id TEXT,
			key_terms TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_vectors_collection ON vectors (collection);`,
	}

	for _, query := range queries {
		if _, err := l.db.Exec(query); err != nil {
			return fmt.Errorf("failed to init index schema: %w", err)
		}
	}
	return nil
}

func (l *Local) EnsureCollection(ctx context.Context, collection, model string) error {
	query := `INSERT INTO collections (name, model) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`
	if _, err := l.db.ExecContext(ctx, query, collection, model); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (l *Local) Add(ctx context.Context, collection, model, text string, meta Metadata) error {
	vector, err := l.embed.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("%w: embed: %v", ErrUnavailable, err)
	}

	vecBuf := new(bytes.Buffer)
	if err := binary.Write(vecBuf, binary.LittleEndian, vector); err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}

	query := `INSERT INTO vectors (collection, doc, vector, role, timestamp, entry_id, key_terms) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = l.db.ExecContext(ctx, query, collection, text, vecBuf.Bytes(), meta.Role, meta.Timestamp, meta.EntryID, meta.KeyTerms)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (l *Local) Query(ctx context.Context, collection, model string, queries []string, topK int, includeMetadata bool) ([]Result, error) {
	queryText := strings.TrimSpace(strings.Join(queries, " "))

	// An empty query has no embedding to rank against; fall back to the
	// neutral ranking, which here is insertion order.
	var queryVector []float32
	if queryText != "" {
		var err error
		queryVector, err = l.embed.Embed(ctx, queryText)
		if err != nil {
			return nil, fmt.Errorf("%w: embed query: %v", ErrUnavailable, err)
		}
	}

	rows, err := l.db.QueryContext(ctx, `SELECT doc, vector, role, timestamp, entry_id, key_terms FROM vectors WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var doc string
		var vecBlob []byte
		var meta Metadata

		if err := rows.Scan(&doc, &vecBlob, &meta.Role, &meta.Timestamp, &meta.EntryID, &meta.KeyTerms); err != nil {
			continue
		}

		var score float64
		if queryVector != nil {
			vector := make([]float32, len(vecBlob)/4)
			if err := binary.Read(bytes.NewReader(vecBlob), binary.LittleEndian, &vector); err != nil {
				continue
			}
			score = float64(cosineSimilarity(queryVector, vector))
		}

		res := Result{Text: doc, Score: score}
		if includeMetadata {
			res.Metadata = meta
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if queryVector != nil {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}

	if topK >= 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	var dot, magA, magB float32
	for i := 0; i < len(a); i++ {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0.0
	}
	return dot / (float32(math.Sqrt(float64(magA))) * float32(math.Sqrt(float64(magB))))
}
