package similarity

// Cluster partitions texts greedily. The first unassigned text seeds a
// cluster, and every later unassigned text whose combined similarity to the
// seed reaches threshold joins it. Members are only guaranteed to be similar
// to their seed, not to each other. Every index appears in exactly one
// cluster.
func (e *Engine) Cluster(texts []string, threshold float64) [][]int {
	clusters := make([][]int, 0)
	assigned := make([]bool, len(texts))

	for i := range texts {
		if assigned[i] {
			continue
		}
		cluster := []int{i}
		assigned[i] = true

		for j := i + 1; j < len(texts); j++ {
			if assigned[j] {
				continue
			}
			if e.Similarity(texts[i], texts[j], MethodCombined) >= threshold {
				cluster = append(cluster, j)
				assigned[j] = true
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}
