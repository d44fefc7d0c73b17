package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kailas-cloud/docretriever/internal/db"
	"github.com/kailas-cloud/docretriever/internal/domain/search/filter"
)

// Compile-time check: Store implements db.Index.
var _ db.Index = (*Store)(nil)

const defaultGRPCPort = 6334

// Config holds connection parameters for a Qdrant store.
type Config struct {
	// URL is the HTTP endpoint, e.g. http://localhost:6333. The gRPC port is derived as HTTP port + 1.
	URL    string
	APIKey string
}

// pointsClient is the subset of *qdrant.Client the store uses.
type pointsClient interface {
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	Close() error
}

// Store implements db.Index over a Qdrant collection.
type Store struct {
	client pointsClient
}

// NewStore creates a Qdrant store over gRPC.
func NewStore(cfg Config) (*Store, error) {
	host, port, useTLS, err := parseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Store{client: client}, nil
}

func parseURL(raw string) (host string, port int, useTLS bool, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid qdrant url: %w", err)
	}

	host = u.Hostname()
	if host == "" {
		host = "localhost"
	}

	port = defaultGRPCPort
	if p := u.Port(); p != "" {
		httpPort, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid qdrant port %q: %w", p, err)
		}
		port = httpPort + 1
	}

	return host, port, u.Scheme == "https", nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	_ = s.client.Close()
}

// WaitForReady polls the health endpoint until it responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// SearchKNN runs a nearest-neighbour query against the collection named by q.IndexName.
// q.VectorField selects a named vector; empty uses the collection's default vector.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	points, err := s.client.Query(ctx, buildQuery(q))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			err = fmt.Errorf("%w: %s", db.ErrIndexNotFound, q.IndexName)
		}
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(points))
	for _, p := range points {
		entry := db.SearchEntry{
			Key:    pointKey(p.GetId()),
			Score:  float64(p.GetScore()),
			Fields: convertPayload(p.GetPayload()),
		}
		if q.IncludeVector {
			entry.Vector = pointVector(p.GetVectors(), q.VectorField)
		}
		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func buildQuery(q *db.KNNQuery) *qdrant.QueryPoints {
	limit := uint64(q.K)
	req := &qdrant.QueryPoints{
		CollectionName: q.IndexName,
		Query:          qdrant.NewQuery(q.Vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(q.IncludeVector),
		Filter:         buildFilter(q.Filters),
	}
	if len(q.ReturnFields) > 0 {
		req.WithPayload = qdrant.NewWithPayloadInclude(q.ReturnFields...)
	}
	if q.VectorField != "" {
		using := q.VectorField
		req.Using = &using
	}
	return req
}

// buildFilter translates a predicate into a Qdrant keyword-match conjunction.
func buildFilter(p filter.Predicate) *qdrant.Filter {
	if p.IsEmpty() {
		return nil
	}
	conds := p.Conditions()
	must := make([]*qdrant.Condition, 0, len(conds))
	for _, c := range conds {
		must = append(must, qdrant.NewMatch(c.Key(), c.Value()))
	}
	return &qdrant.Filter{Must: must}
}

func pointKey(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func pointVector(v *qdrant.VectorsOutput, name string) []float32 {
	if v == nil {
		return nil
	}
	if name != "" {
		if named := v.GetVectors().GetVectors()[name]; named != nil {
			return denseData(named)
		}
		return nil
	}
	return denseData(v.GetVector())
}

func denseData(v *qdrant.VectorOutput) []float32 {
	if v == nil {
		return nil
	}
	if d := v.GetDense(); d != nil {
		return d.GetData()
	}
	return v.GetData() //nolint:staticcheck // older servers only fill the flat field
}

func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		out[k] = convertValue(v)
	}
	return out
}

func convertValue(v *qdrant.Value) any {
	switch val := v.GetKind().(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.GetValues()))
		for i, item := range val.ListValue.GetValues() {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayload(val.StructValue.GetFields())
	default:
		return nil
	}
}
