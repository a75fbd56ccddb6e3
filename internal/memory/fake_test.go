package memory

import (
	"context"
	"io"

	"github.com/felixgeelhaar/mnemo/internal/observe"
	"github.com/felixgeelhaar/mnemo/internal/vectorindex"
)

func testObserver() *observe.Observer {
	return observe.New(io.Discard, false)
}

// fakeIndex records every call and serves canned results, so tests can assert
// on exactly what the memory core sends to the index.
type fakeIndex struct {
	addedTexts []string
	addedMeta  []vectorindex.Metadata
	addErr     error

	// queries holds the query strings of each Query call in order.
	queries  [][]string
	results  [][]vectorindex.Result
	queryErr error
}

func (f *fakeIndex) EnsureCollection(ctx context.Context, collection, model string) error {
	return nil
}

func (f *fakeIndex) Add(ctx context.Context, collection, model, text string, meta vectorindex.Metadata) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.addedTexts = append(f.addedTexts, text)
	f.addedMeta = append(f.addedMeta, meta)
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, collection, model string, queries []string, topK int, includeMetadata bool) ([]vectorindex.Result, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	f.queries = append(f.queries, queries)
	if len(f.results) == 0 {
		return nil, nil
	}
	res := f.results[0]
	f.results = f.results[1:]
	if topK >= 0 && len(res) > topK {
		res = res[:topK]
	}
	return res, nil
}

func turnResult(ts float64, role, content, termsJSON string) vectorindex.Result {
	return vectorindex.Result{
		Text:  role + ": " + content,
		Score: 1,
		Metadata: vectorindex.Metadata{
			Role:      role,
			Timestamp: ts,
			EntryID:   entryID(ts),
			KeyTerms:  termsJSON,
		},
	}
}
