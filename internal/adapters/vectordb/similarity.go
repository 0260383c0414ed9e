package vectordb

import (
	"math"
	"sort"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// cosineDistance is 1 - similarity; 0 means identical direction.
func cosineDistance(a, b []float32) float64 {
	return 1 - cosineSimilarity(a, b)
}

func matchesWhere(metadata, where map[string]string) bool {
	for k, v := range where {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// rank sorts hits by ascending distance (ties by id) and keeps the first limit.
func rank(hits []entities.IndexHit, limit int) []entities.IndexHit {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
