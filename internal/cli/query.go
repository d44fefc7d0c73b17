package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docretriever/internal/domain"
	"github.com/kailas-cloud/docretriever/internal/domain/document"
	"github.com/kailas-cloud/docretriever/internal/domain/scope"
	"github.com/kailas-cloud/docretriever/internal/usecase/retrieval"
)

// scopeFlag collects repeated --scope key=value pairs.
type scopeFlag struct {
	s scope.Scope
}

var _ pflag.Value = (*scopeFlag)(nil)

func (f *scopeFlag) String() string {
	if len(f.s) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(f.s))
	for _, k := range slices.Sorted(maps.Keys(f.s)) {
		pairs = append(pairs, k+"="+f.s[k])
	}
	return strings.Join(pairs, ",")
}

func (f *scopeFlag) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return &domain.InvalidScopeError{Key: key, Reason: "empty key"}
	}
	if f.s == nil {
		f.s = scope.Scope{}
	}
	f.s[key] = value
	return nil
}

func (f *scopeFlag) Type() string { return "key=value" }

type queryOptions struct {
	queries   []string
	scope     scopeFlag
	retriever string
	routed    bool
	pretty    bool
}

// documentOutput mirrors the HTTP response document shape.
type documentOutput struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

type queryOutput struct {
	Documents []documentOutput `json:"documents"`
	Count     int              `json:"count"`
}

func newQueryCmd(root *rootOptions, factory runnerFactory) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Retrieve documents for one or more queries",
		Long: `Retrieve documents for one or more query variants and print them as JSON.

Each -q adds a variant; results are concatenated in order and deduplicated.
--routed queries the scoped partition before the shared one when the scope
carries the scoping key.

Examples:
  retrievectl query -q "reset a password"
  retrievectl query -q "billing" --scope set_number=abc --scope member_id=42 --routed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, root, opts, factory)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.queries, "query", "q", nil, "query text (repeatable, required)")
	cmd.Flags().VarP(&opts.scope, "scope", "s", "metadata constraint (repeatable)")
	cmd.Flags().StringVarP(&opts.retriever, "retriever", "r", "", "retriever variant (default from config)")
	cmd.Flags().BoolVar(&opts.routed, "routed", false, "enable multi-source routing")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runQuery(cmd *cobra.Command, root *rootOptions, opts *queryOptions, factory runnerFactory) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(root)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	runner, closeFn, err := factory(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build retrieval stack: %w", err)
	}
	defer closeFn()

	docs, err := runner.Retrieve(ctx, retrieval.Request{
		Queries:   opts.queries,
		Scope:     opts.scope.s.Clone(),
		Retriever: opts.retriever,
		Routed:    opts.routed,
	})
	if err != nil {
		logger.Debug("retrieval failed", zap.Error(err))
		return fmt.Errorf("retrieve: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(toOutput(docs))
}

func toOutput(docs []document.Document) queryOutput {
	out := make([]documentOutput, len(docs))
	for i, d := range docs {
		md := d.Metadata()
		if md == nil {
			md = map[string]any{}
		}
		out[i] = documentOutput{Content: d.Content(), Metadata: md}
	}
	return queryOutput{Documents: out, Count: len(out)}
}
