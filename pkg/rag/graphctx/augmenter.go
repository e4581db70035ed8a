package graphctx

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"docbox-be/internal/pkg/logger"
	"docbox-be/pkg/rag"
)

// Edge is one directed relationship in the care network.
type Edge struct {
	ID             uuid.UUID
	FromID         uuid.UUID
	FromName       string
	ToID           uuid.UUID
	ToName         string
	Relation       string
	OrganizationID uuid.UUID
}

// GraphStore exposes the relationship store one hop at a time. The
// augmenter owns traversal bounds and cycle handling.
type GraphStore interface {
	Neighbors(ctx context.Context, nodeID uuid.UUID) ([]Edge, error)
}

const (
	defaultMaxDepth = 2
	graphScore      = 0.5
)

// Augmenter turns a subject's neighborhood in the relationship store into
// short textual passages that compete in the same ranking and citation
// machinery as corpus passages.
type Augmenter struct {
	store    GraphStore
	log      logger.ILogger
	maxDepth int
}

func NewAugmenter(store GraphStore, log logger.ILogger) *Augmenter {
	return &Augmenter{store: store, log: log, maxDepth: defaultMaxDepth}
}

// WithMaxDepth overrides the traversal bound. Values below 1 keep the
// default.
func (a *Augmenter) WithMaxDepth(depth int) *Augmenter {
	if depth >= 1 {
		a.maxDepth = depth
	}
	return a
}

// Expand walks the graph outward from the subject, bounded by depth and a
// visited set so cyclic relationships always terminate. A failing store
// degrades to an empty result; retrieval proceeds without graph context.
func (a *Augmenter) Expand(ctx context.Context, subjectID uuid.UUID, s rag.Scope) []rag.Passage {
	if a.store == nil {
		return nil
	}

	visited := map[uuid.UUID]bool{subjectID: true}
	seenEdges := map[uuid.UUID]bool{}
	frontier := []uuid.UUID{subjectID}

	var edges []Edge
	for depth := 0; depth < a.maxDepth && len(frontier) > 0; depth++ {
		var next []uuid.UUID
		for _, nodeID := range frontier {
			neighbors, err := a.store.Neighbors(ctx, nodeID)
			if err != nil {
				a.log.Warn("graphctx", "graph store unavailable, continuing without graph context", map[string]interface{}{
					"node_id": nodeID.String(),
					"error":   err.Error(),
				})
				return nil
			}
			for _, e := range neighbors {
				if e.OrganizationID != s.OrganizationID {
					continue
				}
				if seenEdges[e.ID] {
					continue
				}
				seenEdges[e.ID] = true
				edges = append(edges, e)
				for _, id := range []uuid.UUID{e.FromID, e.ToID} {
					if !visited[id] {
						visited[id] = true
						next = append(next, id)
					}
				}
			}
		}
		frontier = next
	}

	return a.render(subjectID, s, edges)
}

// render produces deterministic passages: edges sorted by relation, then
// endpoint names, then edge id.
func (a *Augmenter) render(subjectID uuid.UUID, s rag.Scope, edges []Edge) []rag.Passage {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Relation != edges[j].Relation {
			return edges[i].Relation < edges[j].Relation
		}
		if edges[i].FromName != edges[j].FromName {
			return edges[i].FromName < edges[j].FromName
		}
		if edges[i].ToName != edges[j].ToName {
			return edges[i].ToName < edges[j].ToName
		}
		return edges[i].ID.String() < edges[j].ID.String()
	})

	passages := make([]rag.Passage, 0, len(edges))
	for _, e := range edges {
		passages = append(passages, rag.Passage{
			ID:         e.ID,
			DocumentID: e.ID,
			SourceType: rag.SourceGraph,
			Text:       fmt.Sprintf("%s is related to %s via relation %s", e.FromName, e.ToName, e.Relation),
			GraphScore: graphScore,
			Tags: rag.AccessTags{
				SubjectID:      &subjectID,
				OrganizationID: e.OrganizationID,
				DocumentClass:  "graph",
			},
		})
	}
	return passages
}
