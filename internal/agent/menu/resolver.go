package menu

import (
	"context"
	"math"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// DefaultCutoff is the minimum cosine similarity for a fuzzy match.
// Callers that resolve drinks and dishes separately may configure each cutoff,
// but both default to this value.
const DefaultCutoff = 0.6

// MatchMethod records how a phrase was resolved.
type MatchMethod string

const (
	MatchExact      MatchMethod = "exact"
	MatchSimilarity MatchMethod = "similarity"
	MatchNone       MatchMethod = "miss"
)

// Match is the outcome of resolving one phrase. Key is empty when nothing matched.
type Match struct {
	Key    string
	Score  float64
	Method MatchMethod
}

func (m Match) Found() bool {
	return m.Key != ""
}

var noMatch = Match{Method: MatchNone}

// Resolver maps free-text item phrases to catalog keys.
type Resolver struct {
	embedder model.Embedder
}

func NewResolver(embedder model.Embedder) *Resolver {
	return &Resolver{embedder: embedder}
}

// Resolve returns the catalog key for phrase. An exact normalized-key hit wins
// with score 1 and never calls the embedder. Otherwise the phrase is embedded
// and compared by cosine similarity against every vector in the snapshot; the
// first highest score is accepted when it is at least cutoff. An embedding
// failure is reported as no match.
func (r *Resolver) Resolve(ctx context.Context, phrase string, snap *Snapshot, cutoff float64) Match {
	key := Normalize(phrase)
	if key == "" || snap == nil {
		return noMatch
	}
	if _, ok := snap.Lookup[key]; ok {
		metrics.ResolutionsTotal.WithLabelValues(string(MatchExact)).Inc()
		return Match{Key: key, Score: 1.0, Method: MatchExact}
	}
	if r.embedder == nil || len(snap.Embeddings) == 0 {
		metrics.ResolutionsTotal.WithLabelValues(string(MatchNone)).Inc()
		return noMatch
	}

	query, err := r.embedder.Embed(ctx, key)
	if err != nil || len(query) == 0 {
		metrics.ResolutionsTotal.WithLabelValues("embed_error").Inc()
		logx.Warn().Err(err).Str("component", "menu_resolver").Str("phrase", key).
			Msg("embedding failed, treating phrase as unresolved")
		return noMatch
	}

	best, bestKey := math.Inf(-1), ""
	for _, ref := range snap.Embeddings {
		score := Cosine(query, ref.Vector)
		if math.IsNaN(score) {
			continue
		}
		if score > best {
			best, bestKey = score, ref.Key
		}
	}

	if bestKey == "" || best < cutoff {
		metrics.ResolutionsTotal.WithLabelValues(string(MatchNone)).Inc()
		logx.Debug().Str("component", "menu_resolver").Str("phrase", key).
			Str("closest", bestKey).Float64("score", best).Float64("cutoff", cutoff).
			Msg("no catalog entry above cutoff")
		return noMatch
	}

	metrics.ResolutionsTotal.WithLabelValues(string(MatchSimilarity)).Inc()
	logx.Debug().Str("component", "menu_resolver").Str("phrase", key).
		Str("key", bestKey).Float64("score", best).Msg("fuzzy match")
	return Match{Key: bestKey, Score: best, Method: MatchSimilarity}
}

// Cosine returns the cosine similarity of a and b. Vectors of different
// length or with a zero norm yield NaN.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.NaN()
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return math.NaN()
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
