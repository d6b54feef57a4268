// Package weaviate implements the self-hosted VectorStore adapter backed by
// a Weaviate instance, reached over its GraphQL/REST API via the official Go
// client.
package weaviate

import (
	"context"
	"fmt"

	wvt "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	wvtmodels "github.com/weaviate/weaviate/entities/models"

	"github.com/Parswanadh/memory-mcp-server/internal/memory/memerr"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/store"
	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

// className is the single Weaviate class every record is stored under. Its
// properties mirror models.Record's metadata fields one for one.
const className = "Memory"

// Config configures the Weaviate connection.
type Config struct {
	Scheme string // "http" or "https"
	Host   string // host:port, e.g. "localhost:8080"
	APIKey string // optional, for Weaviate Cloud
}

// Store is the self-hosted VectorStore adapter.
type Store struct {
	client *wvt.Client
}

var _ store.VectorStore = (*Store)(nil)

// New creates a Weaviate-backed vector store. It does not contact the
// server; call Initialize to ensure the class schema exists.
func New(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, memerr.NewValidationError("host", "weaviate host must not be empty")
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}

	wcfg := wvt.Config{Scheme: cfg.Scheme, Host: cfg.Host}
	if cfg.APIKey != "" {
		wcfg.Headers = map[string]string{"Authorization": "Bearer " + cfg.APIKey}
	}
	client, err := wvt.NewClient(wcfg)
	if err != nil {
		return nil, memerr.NewBackendError("weaviate client init", err)
	}
	return &Store{client: client}, nil
}

// Initialize ensures the Memory class exists, creating it if absent.
func (s *Store) Initialize(ctx context.Context) error {
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(className).Do(ctx)
	if err != nil {
		return memerr.NewBackendError("weaviate schema check", err)
	}
	if exists {
		return nil
	}

	class := &wvtmodels.Class{
		Class:      className,
		Vectorizer: "none",
		Properties: []*wvtmodels.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "timestampMs", DataType: []string{"int"}},
			{Name: "importance", DataType: []string{"number"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "tags", DataType: []string{"text[]"}},
			{Name: "accessCount", DataType: []string{"int"}},
			{Name: "lastAccessMs", DataType: []string{"int"}},
			{Name: "layer", DataType: []string{"text"}},
			{Name: "recordId", DataType: []string{"text"}},
		},
	}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return memerr.NewBackendError("weaviate class create", err)
	}
	return nil
}

// Store upserts rec, replacing any existing object for the same id.
func (s *Store) Store(ctx context.Context, rec *models.Record) error {
	_, _ = s.Delete(ctx, rec.ID)

	_, err := s.client.Data().Creator().
		WithClassName(className).
		WithID(rec.ID).
		WithVector(rec.Embedding).
		WithProperties(toProperties(rec)).
		Do(ctx)
	if err != nil {
		return memerr.NewBackendError("weaviate store", err)
	}
	return nil
}

// StoreBatch upserts recs, chunked at store.MaxBatchChunk.
func (s *Store) StoreBatch(ctx context.Context, recs []*models.Record) error {
	for i := 0; i < len(recs); i += store.MaxBatchChunk {
		end := i + store.MaxBatchChunk
		if end > len(recs) {
			end = len(recs)
		}
		for _, rec := range recs[i:end] {
			if err := s.Store(ctx, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// Search runs a nearVector GraphQL query. Weaviate applies the layer filter
// server-side via a where clause; tags/minImportance are applied client-side
// after over-fetching, since a combined predicate is not reliably portable
// across Weaviate filter operators.
func (s *Store) Search(ctx context.Context, query []float32, k int, filter *models.SearchFilter) ([]models.SearchMatch, error) {
	fetchLimit := k
	needsClientFilter := filter != nil && (len(filter.Tags) > 0 || filter.MinImportance > 0)
	if needsClientFilter && fetchLimit > 0 {
		fetchLimit *= 2
		if fetchLimit > store.MaxListSize {
			fetchLimit = store.MaxListSize
		}
	}

	fields := []graphql.Field{
		{Name: "content"}, {Name: "timestampMs"}, {Name: "importance"},
		{Name: "source"}, {Name: "tags"}, {Name: "accessCount"},
		{Name: "lastAccessMs"}, {Name: "layer"}, {Name: "recordId"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}}},
	}

	req := s.client.GraphQL().Get().
		WithClassName(className).
		WithNearVector(s.client.GraphQL().NearVectorArgBuilder().WithVector(query)).
		WithLimit(fetchLimit).
		WithFields(fields...)

	if filter != nil && filter.Layer != "" {
		req = req.WithWhere(filters.Where().
			WithPath([]string{"layer"}).
			WithOperator(filters.Equal).
			WithValueText(string(filter.Layer)))
	}

	resp, err := req.Do(ctx)
	if err != nil {
		return nil, memerr.NewBackendError("weaviate search", err)
	}

	recs, err := decodeGetResponse(resp)
	if err != nil {
		return nil, memerr.NewBackendError("weaviate decode search response", err)
	}

	matches := make([]models.SearchMatch, 0, len(recs))
	for _, item := range recs {
		if !store.MatchesFilter(item.rec, filter) {
			continue
		}
		matches = append(matches, models.SearchMatch{
			ID:        item.rec.ID,
			Content:   item.rec.Content,
			Relevance: 1 - item.distance,
			Metadata:  item.rec,
		})
		if k > 0 && len(matches) >= k {
			break
		}
	}
	return matches, nil
}

// Get fetches a single object by id.
func (s *Store) Get(ctx context.Context, id string) (*models.Record, error) {
	objs, err := s.client.Data().ObjectsGetter().
		WithClassName(className).
		WithID(id).
		WithVector().
		Do(ctx)
	if err != nil {
		return nil, memerr.NewBackendError("weaviate get", err)
	}
	if len(objs) == 0 {
		return nil, nil
	}
	return fromObject(objs[0])
}

// Delete removes the object for id, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	err = s.client.Data().Deleter().WithClassName(className).WithID(id).Do(ctx)
	if err != nil {
		return false, memerr.NewBackendError("weaviate delete", err)
	}
	return true, nil
}

// DeleteBatch removes each of ids, returning the count actually removed.
func (s *Store) DeleteBatch(ctx context.Context, ids []string) (int, error) {
	n := 0
	for _, id := range ids {
		ok, err := s.Delete(ctx, id)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// List returns up to store.MaxListSize objects matching filter, fetched via
// a plain GraphQL Get with no nearVector clause.
func (s *Store) List(ctx context.Context, filter *models.SearchFilter) ([]*models.Record, error) {
	fields := []graphql.Field{
		{Name: "content"}, {Name: "timestampMs"}, {Name: "importance"},
		{Name: "source"}, {Name: "tags"}, {Name: "accessCount"},
		{Name: "lastAccessMs"}, {Name: "layer"}, {Name: "recordId"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}},
	}

	req := s.client.GraphQL().Get().
		WithClassName(className).
		WithLimit(store.MaxListSize).
		WithFields(fields...)

	if filter != nil && filter.Layer != "" {
		req = req.WithWhere(filters.Where().
			WithPath([]string{"layer"}).
			WithOperator(filters.Equal).
			WithValueText(string(filter.Layer)))
	}

	resp, err := req.Do(ctx)
	if err != nil {
		return nil, memerr.NewBackendError("weaviate list", err)
	}
	items, err := decodeGetResponse(resp)
	if err != nil {
		return nil, memerr.NewBackendError("weaviate decode list response", err)
	}

	out := make([]*models.Record, 0, len(items))
	for _, item := range items {
		if store.MatchesFilter(item.rec, filter) {
			out = append(out, item.rec)
		}
	}
	return out, nil
}

// Update replaces rec's stored properties and vector by re-storing it
// (delete then create; the two steps are not atomic). A missing record
// yields memerr.ErrNotFound.
func (s *Store) Update(ctx context.Context, rec *models.Record) error {
	existing, err := s.Get(ctx, rec.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return memerr.ErrNotFound
	}
	return s.Store(ctx, rec)
}

// Close releases no resources: the client is a thin HTTP wrapper.
func (s *Store) Close() error { return nil }

func toProperties(rec *models.Record) map[string]interface{} {
	return map[string]interface{}{
		"content":      rec.Content,
		"timestampMs":  rec.TimestampMS,
		"importance":   rec.Importance,
		"source":       string(rec.Source),
		"tags":         rec.Tags,
		"accessCount":  rec.AccessCount,
		"lastAccessMs": rec.LastAccessMS,
		"layer":        string(rec.Layer),
		"recordId":     rec.ID,
	}
}

func fromObject(obj *wvtmodels.Object) (*models.Record, error) {
	props, ok := obj.Properties.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected properties shape for object %s", obj.ID)
	}
	rec := recordFromProps(props)
	rec.ID = string(obj.ID)
	if v, ok := obj.Vector.([]float32); ok {
		rec.Embedding = v
	}
	return rec, nil
}

type getItem struct {
	rec      *models.Record
	distance float64
}

// decodeGetResponse walks a GraphQL Get response's generic JSON shape into
// records. The weaviate-go-client returns untyped map/interface data for
// GraphQL results, so this performs defensive type assertions throughout.
func decodeGetResponse(resp *wvtmodels.GraphQLResponse) ([]getItem, error) {
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql errors: %v", resp.Errors)
	}
	data, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	rawList, ok := data[className].([]interface{})
	if !ok {
		return nil, nil
	}

	items := make([]getItem, 0, len(rawList))
	for _, raw := range rawList {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		rec := recordFromProps(m)
		var distance float64
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			if id, ok := add["id"].(string); ok {
				rec.ID = id
			}
			if d, ok := add["distance"].(float64); ok {
				distance = d
			}
		}
		items = append(items, getItem{rec: rec, distance: distance})
	}
	return items, nil
}

func recordFromProps(m map[string]interface{}) *models.Record {
	rec := &models.Record{}
	if v, ok := m["recordId"].(string); ok {
		rec.ID = v
	}
	if v, ok := m["content"].(string); ok {
		rec.Content = v
	}
	if v, ok := m["timestampMs"].(float64); ok {
		rec.TimestampMS = int64(v)
	}
	if v, ok := m["importance"].(float64); ok {
		rec.Importance = v
	}
	if v, ok := m["source"].(string); ok {
		rec.Source = models.Source(v)
	}
	if v, ok := m["layer"].(string); ok {
		rec.Layer = models.Layer(v)
	}
	if v, ok := m["accessCount"].(float64); ok {
		rec.AccessCount = int64(v)
	}
	if v, ok := m["lastAccessMs"].(float64); ok {
		rec.LastAccessMS = int64(v)
	}
	if raw, ok := m["tags"].([]interface{}); ok {
		tags := make([]string, 0, len(raw))
		for _, t := range raw {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
		rec.Tags = tags
	}
	return rec
}
