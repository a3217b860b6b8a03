package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
)

const reportIndexName = "reports"

// ReportRepository stores ping reports in Elasticsearch so moderators can
// full-text search complaint reasons.
type ReportRepository struct {
	es *elasticsearch.Client
}

func NewReportRepository(es *elasticsearch.Client) *ReportRepository {
	return &ReportRepository{es: es}
}

func (r *ReportRepository) EnsureIndex(ctx context.Context) (err error) {
	exists, err := r.es.Indices.Exists([]string{reportIndexName}, r.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index existence: %w", err)
	}

	defer func() {
		if cErr := exists.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if exists.StatusCode == http.StatusOK {
		return nil
	}

	if exists.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected status on exists: %s", exists.Status())
	}

	mapping := `{
		"mappings": {
			"properties": {
				"pid":        { "type": "long" },
				"uid":        { "type": "long" },
				"reason":     { "type": "text", "analyzer": "english" },
				"created_at": { "type": "date" }
			}
		}
	}`

	res, err := r.es.Indices.Create(reportIndexName, r.es.Indices.Create.WithBody(strings.NewReader(mapping)), r.es.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.IsError() {
		return fmt.Errorf("index creation failed: %s", res.String())
	}

	_, err = r.es.Cluster.Health(
		r.es.Cluster.Health.WithContext(ctx),
		r.es.Cluster.Health.WithWaitForStatus("yellow"),
		r.es.Cluster.Health.WithTimeout(10*time.Second),
	)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	return nil
}

func (r *ReportRepository) Create(ctx context.Context, report *model.Report) (err error) {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	res, err := r.es.Index(
		reportIndexName,
		bytes.NewReader(data),
		r.es.Index.WithDocumentID(report.ID),
		r.es.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.IsError() {
		return fmt.Errorf("failed to create report: %s", res.String())
	}

	return nil
}

func (r *ReportRepository) Get(ctx context.Context, id string) (report *model.Report, err error) {
	res, err := r.es.Get(reportIndexName, id, r.es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperrors.ErrReportDoesNotExist
	default:
		b, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		return nil, fmt.Errorf("es get failed: %s: %s", res.Status(), string(b))
	}

	var doc struct {
		Source model.Report `json:"_source"`
	}

	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &doc.Source, nil
}

func (r *ReportRepository) Delete(ctx context.Context, id string) (err error) {
	res, err := r.es.Delete(reportIndexName, id, r.es.Delete.WithContext(ctx))
	if err != nil {
		return err
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.StatusCode == http.StatusNotFound {
		return apperrors.ErrReportDoesNotExist
	}

	if res.IsError() {
		return fmt.Errorf("failed to delete report: %s", res.String())
	}

	return nil
}

func (r *ReportRepository) Search(ctx context.Context, query string, from, size int) (results []model.ReportSearchResult, err error) {
	type bodyT struct {
		Query struct {
			Match struct {
				Reason string `json:"reason"`
			} `json:"match"`
		} `json:"query"`
		TrackTotalHits bool `json:"track_total_hits"`
		From           int  `json:"from,omitempty"`
		Size           int  `json:"size,omitempty"`
	}

	body := bodyT{}
	body.Query.Match.Reason = query
	body.TrackTotalHits = true

	if from > 0 {
		body.From = from
	}

	if size > 0 {
		body.Size = size
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(&body); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := r.es.Search(
		r.es.Search.WithContext(ctx),
		r.es.Search.WithIndex(reportIndexName),
		r.es.Search.WithBody(buf),
		r.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, err
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source model.Report `json:"_source"`
				Score  float64      `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := make([]model.ReportSearchResult, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		out = append(out, model.ReportSearchResult{
			Report: hit.Source,
			Score:  hit.Score,
		})
	}

	return out, nil
}
