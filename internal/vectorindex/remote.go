package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Remote talks to a hosted vector-store service over its JSON API. The service
// computes embeddings itself; this client only moves text and metadata.
type Remote struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewRemote(baseURL, apiKey string) (*Remote, error) {
	if baseURL == "" {
		return nil, errors.New("index base URL is required")
	}

	return &Remote{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}, nil
}

// SetBaseURL allows overriding the API endpoint (useful for tests)
func (r *Remote) SetBaseURL(url string) {
	r.baseURL = url
}

type ensureCollectionRequest struct {
	CollectionName string `json:"collection_name"`
	Model          string `json:"model"`
}

type indexRequest struct {
	Text           string   `json:"text"`
	CollectionName string   `json:"collection_name"`
	Model          string   `json:"model"`
	Metadata       Metadata `json:"metadata"`
}

type queryRequest struct {
	QueryStrings    []string `json:"query_strings"`
	CollectionName  string   `json:"collection_name"`
	Model           string   `json:"model"`
	TopK            int      `json:"top_k"`
	IncludeMetadata bool     `json:"include_metadata"`
}

type queryResponse struct {
	// One result group per query string.
	Results [][]queryResult `json:"results"`
	Error   *apiError       `json:"error,omitempty"`
}

type queryResult struct {
	Doc      string   `json:"doc"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (r *Remote) EnsureCollection(ctx context.Context, collection, model string) error {
	body := ensureCollectionRequest{CollectionName: collection, Model: model}
	return r.post(ctx, "/v1/collections", body, nil)
}

func (r *Remote) Add(ctx context.Context, collection, model, text string, meta Metadata) error {
	body := indexRequest{
		Text:           text,
		CollectionName: collection,
		Model:          model,
		Metadata:       meta,
	}
	return r.post(ctx, "/v1/index", body, nil)
}

func (r *Remote) Query(ctx context.Context, collection, model string, queries []string, topK int, includeMetadata bool) ([]Result, error) {
	body := queryRequest{
		QueryStrings:    queries,
		CollectionName:  collection,
		Model:           model,
		TopK:            topK,
		IncludeMetadata: includeMetadata,
	}

	var decoded queryResponse
	if err := r.post(ctx, "/v1/query", body, &decoded); err != nil {
		return nil, err
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, decoded.Error.Message)
	}
	if len(decoded.Results) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(decoded.Results[0]))
	for _, item := range decoded.Results[0] {
		results = append(results, Result{
			Text:     item.Doc,
			Score:    item.Score,
			Metadata: item.Metadata,
		})
	}
	return results, nil
}

func (r *Remote) post(ctx context.Context, path string, reqBody, out any) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}

	if r.apiKey != "" {
		req.Header.Set("authorization", "Bearer "+r.apiKey)
	}
	req.Header.Set("content-type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, resp.Status, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}
