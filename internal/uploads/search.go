// internal/uploads/search.go
package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "pfs-target-uploader/internal/common/errors"
	"pfs-target-uploader/internal/common/logger"
)

// SearchIndex mirrors upload records into Elasticsearch so the admin
// listing can filter and search them.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

// NewSearchIndex creates a SearchIndex writing into the named index.
func NewSearchIndex(client *elasticsearch.Client, index string, log logger.Logger) *SearchIndex {
	return &SearchIndex{client: client, index: index, logger: log}
}

// Index writes one upload record, keyed by its upload ID.
func (s *SearchIndex) Index(ctx context.Context, rec *Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return apperrors.NewIndexWriteFailedError(err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: rec.UploadID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return apperrors.NewIndexWriteFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewIndexWriteFailedError(
			fmt.Errorf("index request failed: %s", res.Status()))
	}

	s.logger.Debug("upload indexed", map[string]interface{}{
		"upload_id": rec.UploadID,
		"index":     s.index,
	})
	return nil
}

// Search matches the query against the original filename and upload ID,
// newest first. An empty query matches everything.
func (s *SearchIndex) Search(ctx context.Context, query string, size int) ([]Record, error) {
	if size <= 0 {
		size = 100
	}

	var queryBody map[string]interface{}
	if query == "" {
		queryBody = map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	} else {
		queryBody = map[string]interface{}{
			"query": map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  query,
					"fields": []string{"upload_id^2", "original_filename"},
				},
			},
		}
	}
	queryBody["sort"] = []interface{}{
		map[string]interface{}{"uploaded_at": map[string]interface{}{"order": "desc"}},
	}

	body, _ := json.Marshal(queryBody)
	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(strings.NewReader(string(body))),
		s.client.Search.WithSize(size),
	)
	if err != nil {
		return nil, apperrors.NewRegistryQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewRegistryQueryFailedError(
			fmt.Errorf("search request failed: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Record `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewRegistryQueryFailedError(err)
	}

	out := make([]Record, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
