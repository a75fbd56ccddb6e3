package memory

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/felixgeelhaar/mnemo/internal/observe"
	"github.com/felixgeelhaar/mnemo/internal/vectorindex"
)

// Store appends conversation turns to the similarity index. Turns are
// immutable once ingested; there is no update or delete path.
type Store struct {
	target Target
	obs    *observe.Observer

	mu     sync.Mutex
	lastTS float64
	now    func() time.Time
}

func NewStore(target Target, obs *observe.Observer) *Store {
	return &Store{
		target: target,
		obs:    obs,
		now:    time.Now,
	}
}

// Add ingests one turn. The timestamp is assigned here and is strictly
// increasing per process, so dedup and final ordering in retrieval can rely
// on it reflecting ingestion order. Index failures propagate: a silently
// dropped turn would corrupt every later retrieval.
func (s *Store) Add(ctx context.Context, role Role, content string, keyTerms []string) error {
	ctx, span := s.obs.StartSpan(ctx, "memory.ingest")
	defer span.End()

	if keyTerms == nil {
		keyTerms = []string{}
	}
	termsJSON, err := json.Marshal(keyTerms)
	if err != nil {
		return fmt.Errorf("encode key terms: %w", err)
	}

	ts := s.nextTimestamp()
	meta := vectorMetadata(role, ts, string(termsJSON))

	text := fmt.Sprintf("%s: %s", role, content)
	if err := s.target.Index.Add(ctx, s.target.Collection, s.target.EmbedModel, text, meta); err != nil {
		return fmt.Errorf("index turn: %w", err)
	}

	s.obs.Log().Debug().Str("role", string(role)).Float64("timestamp", ts).Int("terms", len(keyTerms)).Msg("turn ingested")
	return nil
}

// nextTimestamp returns seconds since epoch, bumped by a microsecond whenever
// the clock has not advanced past the previous ingestion.
func (s *Store) nextTimestamp() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := float64(s.now().UnixNano()) / 1e9
	if ts <= s.lastTS {
		ts = s.lastTS + 1e-6
	}
	s.lastTS = ts
	return ts
}

func vectorMetadata(role Role, ts float64, termsJSON string) vectorindex.Metadata {
	return vectorindex.Metadata{
		Role:      string(role),
		Timestamp: ts,
		EntryID:   entryID(ts),
		KeyTerms:  termsJSON,
	}
}

// entryID builds a uniqueness hint for the index from the stringified
// timestamp: "<timestamp>_<md5 prefix>". It is naming only, never a dedup key.
func entryID(ts float64) string {
	stamp := strconv.FormatFloat(ts, 'f', -1, 64)
	sum := md5.Sum([]byte(stamp))
	return fmt.Sprintf("%s_%x", stamp, sum[:5])
}
