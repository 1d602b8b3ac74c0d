// Package index embeds reference records into a vector collection and
// answers semantic searches over it.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/catalyst/pkg/llm"
	"github.com/JaimeStill/catalyst/pkg/vector"
)

var ErrBatchFailed = errors.New("one or more upsert batches failed")

// Searcher returns the payloads of the records nearest to a query.
type Searcher interface {
	Search(ctx context.Context, collection, query string, topK int) ([]map[string]any, error)
}

// Index combines an embedder with a vector store.
type Index struct {
	embedder  llm.Embedder
	store     vector.Index
	dimension int
	cfg       Config
	logger    *slog.Logger
}

// New creates an Index. Collections it creates use the given dimension.
func New(embedder llm.Embedder, store vector.Index, dimension int, cfg *Config, logger *slog.Logger) *Index {
	return &Index{
		embedder:  embedder,
		store:     store,
		dimension: dimension,
		cfg:       *cfg,
		logger:    logger.With("system", "index"),
	}
}

// BatchFailure records a batch that could not be embedded or stored.
type BatchFailure struct {
	Offset int    `json:"offset"`
	Size   int    `json:"size"`
	Error  string `json:"error"`
}

// UpsertReport summarizes an Upsert call.
type UpsertReport struct {
	Collection string         `json:"collection"`
	Records    int            `json:"records"`
	Existing   int            `json:"existing"`
	Skipped    bool           `json:"skipped"`
	Created    bool           `json:"created"`
	Uploaded   int            `json:"uploaded"`
	Empty      int            `json:"empty"`
	Failures   []BatchFailure `json:"failures,omitempty"`
}

// Upsert embeds records and stores them in collection, creating the
// collection when it does not exist. A collection that already holds points
// is left untouched. Batches run concurrently; a failed batch is logged and
// reported without stopping the others.
func (x *Index) Upsert(ctx context.Context, collection string, records []map[string]any, textFields []string) (UpsertReport, error) {
	report := UpsertReport{Collection: collection, Records: len(records)}

	exists, err := x.store.Exists(ctx, collection)
	if err != nil {
		return report, fmt.Errorf("check collection %s: %w", collection, err)
	}

	if !exists {
		x.logger.InfoContext(ctx, "creating collection", "collection", collection, "dimension", x.dimension)
		if err := x.store.Create(ctx, collection, x.dimension); err != nil {
			return report, fmt.Errorf("create collection %s: %w", collection, err)
		}
		report.Created = true
	}

	count, err := x.store.Count(ctx, collection)
	if err != nil {
		return report, fmt.Errorf("count collection %s: %w", collection, err)
	}
	if count > 0 {
		x.logger.InfoContext(ctx, "collection already populated, skipping upload", "collection", collection, "count", count)
		report.Existing = count
		report.Skipped = true
		return report, nil
	}

	x.logger.InfoContext(ctx, "uploading records", "collection", collection, "records", len(records))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(x.cfg.Concurrency)

	for offset := 0; offset < len(records); offset += x.cfg.BatchSize {
		batch := records[offset:min(offset+x.cfg.BatchSize, len(records))]

		g.Go(func() error {
			uploaded, empty, err := x.upsertBatch(ctx, collection, batch, textFields)

			mu.Lock()
			defer mu.Unlock()

			report.Empty += empty
			if err != nil {
				x.logger.ErrorContext(ctx, "batch failed", "collection", collection, "offset", offset, "size", len(batch), "error", err)
				report.Failures = append(report.Failures, BatchFailure{Offset: offset, Size: len(batch), Error: err.Error()})
				return nil
			}

			report.Uploaded += uploaded
			x.logger.InfoContext(ctx, "processed batch", "collection", collection, "through", offset+len(batch), "total", len(records))
			return nil
		})
	}
	g.Wait()

	if n := len(report.Failures); n > 0 {
		return report, fmt.Errorf("%w: %d failed", ErrBatchFailed, n)
	}
	return report, nil
}

func (x *Index) upsertBatch(ctx context.Context, collection string, batch []map[string]any, textFields []string) (uploaded, empty int, err error) {
	texts := make([]string, 0, len(batch))
	kept := make([]map[string]any, 0, len(batch))

	for _, record := range batch {
		text := EmbeddingText(record, textFields)
		if text == "" {
			empty++
			continue
		}
		texts = append(texts, text)
		kept = append(kept, record)
	}

	if len(texts) == 0 {
		return 0, empty, nil
	}

	vectors, err := x.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, empty, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(texts) {
		return 0, empty, fmt.Errorf("embed: got %d vectors for %d texts", len(vectors), len(texts))
	}

	points := make([]vector.Point, len(kept))
	for i, record := range kept {
		points[i] = vector.Point{
			ID:      PointID(record, texts[i]),
			Vector:  vectors[i],
			Payload: record,
		}
	}

	if err := x.store.Upsert(ctx, collection, points); err != nil {
		return 0, empty, fmt.Errorf("store: %w", err)
	}
	return len(points), empty, nil
}

// Search embeds query and returns the payloads of the topK nearest points.
// On failure it returns an empty, non-nil slice together with the error.
func (x *Index) Search(ctx context.Context, collection, query string, topK int) ([]map[string]any, error) {
	hits, err := x.query(ctx, collection, query, topK)
	if err != nil {
		x.logger.ErrorContext(ctx, "search failed", "collection", collection, "error", err)
		return []map[string]any{}, err
	}

	payloads := make([]map[string]any, len(hits))
	for i, h := range hits {
		payloads[i] = h.Payload
	}
	return payloads, nil
}

// Connected reports whether the collection exists in the store.
func (x *Index) Connected(ctx context.Context, collection string) (bool, error) {
	return x.store.Exists(ctx, collection)
}

func (x *Index) query(ctx context.Context, collection, query string, topK int) ([]vector.Hit, error) {
	vectors, err := x.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}

	hits, err := x.store.Query(ctx, collection, vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return hits, nil
}

// EmbeddingText renders the present, non-empty textFields of record as
// "Field: value" parts joined by ". ".
func EmbeddingText(record map[string]any, textFields []string) string {
	var parts []string
	for _, field := range textFields {
		v := value(record[field])
		if v == "" {
			continue
		}
		parts = append(parts, capitalize(field)+": "+v)
	}
	return strings.Join(parts, ". ")
}

// PointID derives a stable UUIDv5 from the record's id, else its tax code,
// else the embedding text, so re-uploading a record overwrites its point.
func PointID(record map[string]any, text string) string {
	key := value(record["id"])
	if key == "" {
		key = value(record["product_tax_code"])
	}
	if key == "" {
		key = text
	}
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(key)).String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func value(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "True"
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
