package graph

// GraphClient turns extraction output for one article into a
// KnowledgeGraph. It owns a Normalizer and a Merger and keeps no state
// between calls, so one client can serve concurrent requests.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	normalizer *Normalizer
	merger     *Merger
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// SimilarityThreshold is the minimum score in [0, 100] for two mentions to
// be clustered. IncludeIsolated keeps entities without edges in the graph.
type NewGraphClientParams struct {
	SimilarityThreshold float64
	IncludeIsolated     bool
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
//
// Example:
//
//	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
//		SimilarityThreshold: 85,
//		IncludeIsolated:     true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Returns ErrInvalidThreshold when the threshold is outside [0, 100].
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	normalizer, err := NewNormalizer(NormalizerParams{Threshold: params.SimilarityThreshold})
	if err != nil {
		return nil, err
	}

	return &GraphClient{
		normalizer: normalizer,
		merger:     NewMerger(MergerParams{IncludeIsolated: params.IncludeIsolated}),
	}, nil
}
