package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/mnemo/internal/observe"
	"github.com/felixgeelhaar/mnemo/internal/vectorindex"
)

// expansionSeed is how many of the earliest stage-1 entries contribute their
// key terms to the second query.
const expansionSeed = 10

// Retriever reconstructs an ordered, deduplicated conversation context via two
// sequential similarity queries. A single query over the current turn's terms
// finds topically similar turns but misses ones linked through terms that only
// entered the conversation later; the second query, expanded with key terms
// harvested from the earliest stage-1 results, recovers those.
type Retriever struct {
	target Target
	obs    *observe.Observer
}

func NewRetriever(target Target, obs *observe.Observer) *Retriever {
	return &Retriever{target: target, obs: obs}
}

// retrieved is the transient per-result record; never persisted.
type retrieved struct {
	timestamp float64
	role      Role
	content   string
	keyTerms  []string
}

// dedupKey identifies a turn across the two query stages. Key terms are left
// out: both stages decode identical terms for a true duplicate.
type dedupKey struct {
	timestamp float64
	role      Role
	content   string
}

// Context returns the turns relevant to queryTerms in chronological order.
func (r *Retriever) Context(ctx context.Context, queryTerms []string, limit int) ([]Turn, error) {
	if limit <= 0 {
		return nil, nil
	}

	ctx, span := r.obs.StartSpan(ctx, "memory.retrieve")
	defer span.End()

	// Stage 1: query with the current turn's terms. An empty term list still
	// queries, surfacing whatever the index's neutral ranking returns.
	entries, err := r.query(ctx, strings.Join(queryTerms, " "), limit)
	if err != nil {
		return nil, fmt.Errorf("stage-1 query: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].timestamp < entries[j].timestamp
	})

	// Stage 2: expand with key terms from the earliest stage-1 entries
	// (earliest by timestamp, not top-ranked) and query again.
	expanded := expandTerms(queryTerms, entries)
	more, err := r.query(ctx, strings.Join(expanded, " "), limit)
	if err != nil {
		return nil, fmt.Errorf("stage-2 query: %w", err)
	}
	entries = append(entries, more...)

	// First occurrence wins; stable sort keeps insertion order on timestamp ties.
	seen := make(map[dedupKey]struct{}, len(entries))
	unique := entries[:0:0]
	for _, e := range entries {
		key := dedupKey{timestamp: e.timestamp, role: e.role, content: e.content}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, e)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].timestamp < unique[j].timestamp
	})

	turns := make([]Turn, 0, len(unique))
	for _, e := range unique {
		turns = append(turns, Turn{Role: e.role, Content: e.content})
	}
	return turns, nil
}

// expandTerms unions queryTerms with the key terms of the earliest seed
// entries. Order is original terms first, then harvested terms as seen.
func expandTerms(queryTerms []string, entries []retrieved) []string {
	seen := make(map[string]struct{}, len(queryTerms))
	combined := make([]string, 0, len(queryTerms))
	for _, t := range queryTerms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		combined = append(combined, t)
	}

	seed := entries
	if len(seed) > expansionSeed {
		seed = seed[:expansionSeed]
	}
	for _, e := range seed {
		for _, t := range e.keyTerms {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			combined = append(combined, t)
		}
	}
	return combined
}

func (r *Retriever) query(ctx context.Context, queryString string, limit int) ([]retrieved, error) {
	results, err := r.target.Index.Query(ctx, r.target.Collection, r.target.EmbedModel, []string{queryString}, limit, true)
	if err != nil {
		return nil, err
	}

	entries := make([]retrieved, 0, len(results))
	for _, res := range results {
		entries = append(entries, r.decode(res))
	}
	return entries, nil
}

// decode recovers a turn from an index result. A malformed key_terms blob
// degrades that single entry to no terms instead of failing the retrieval.
func (r *Retriever) decode(res vectorindex.Result) retrieved {
	role := res.Metadata.Role
	if role == "" {
		role = "Unknown"
	}

	content := res.Text
	if _, after, found := strings.Cut(res.Text, ": "); found {
		content = after
	}

	var keyTerms []string
	if raw := res.Metadata.KeyTerms; raw != "" {
		if err := json.Unmarshal([]byte(raw), &keyTerms); err != nil {
			r.obs.Log().Warn().Err(err).Str("entry_id", res.Metadata.EntryID).Msg("malformed key terms metadata, ignoring")
			keyTerms = nil
		}
	}

	return retrieved{
		timestamp: res.Metadata.Timestamp,
		role:      Role(role),
		content:   content,
		keyTerms:  keyTerms,
	}
}
