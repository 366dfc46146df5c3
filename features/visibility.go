package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Visibility builds the natural visibility graph over the PPI series and
// derives degree, path, efficiency, and clustering metrics from it. Two
// intervals see each other when no interval between them rises above the
// straight line connecting their values.
type Visibility struct{}

func (Visibility) Name() string { return "vg" }

var visibilityColumns = []string{
	"vg_degree_mean", "vg_degree_sd",
	"vg_degree_below_q1", "vg_degree_above_q3",
	"vg_powerlaw_slope",
	"vg_path_length", "vg_global_efficiency",
	"vg_clustering_closed", "vg_clustering_open",
	"vg_local_efficiency",
}

func (Visibility) Columns() []string { return visibilityColumns }

func (Visibility) Compute(c *Context) ([]float64, error) {
	n := len(c.PPI)
	if n < 3 {
		return nanRow(len(visibilityColumns)), nil
	}
	adj := naturalVisibility(c.PPI)

	degrees := make([]float64, n)
	for i := range adj {
		for _, linked := range adj[i] {
			if linked {
				degrees[i]++
			}
		}
	}
	q1 := quantile(0.25, degrees)
	q3 := quantile(0.75, degrees)
	below, above := 0.0, 0.0
	for _, d := range degrees {
		if d < q1 {
			below++
		}
		if d > q3 {
			above++
		}
	}

	pathLen, globalEff := shortestPathMetrics(adj)
	closed, open := clusteringCoefficients(adj)

	row := []float64{
		stat.Mean(degrees, nil), stat.StdDev(degrees, nil),
		below / float64(n), above / float64(n),
		powerLawSlope(degrees),
		pathLen, globalEff,
		closed, open,
		localEfficiency(adj),
	}
	return row, nil
}

// naturalVisibility returns the undirected adjacency matrix: i sees j iff
// every intermediate value stays strictly below the line segment from
// (i, y[i]) to (j, y[j]).
func naturalVisibility(y []float64) [][]bool {
	n := len(y)
	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			visible := true
			for k := i + 1; k < j; k++ {
				line := y[j] + (y[i]-y[j])*float64(j-k)/float64(j-i)
				if y[k] >= line {
					visible = false
					break
				}
			}
			if visible {
				adj[i][j] = true
				adj[j][i] = true
			}
		}
	}
	return adj
}

// powerLawSlope fits a line to the log-log histogram of node degree.
func powerLawSlope(degrees []float64) float64 {
	counts := make(map[int]int)
	for _, d := range degrees {
		counts[int(d)]++
	}
	var logK, logC []float64
	for k, c := range counts {
		if k > 0 && c > 0 {
			logK = append(logK, math.Log(float64(k)))
			logC = append(logC, math.Log(float64(c)))
		}
	}
	if len(logK) < 2 {
		return math.NaN()
	}
	_, slope := stat.LinearRegression(logK, logC, nil, false)
	return slope
}

// shortestPathMetrics runs BFS from every node and returns the
// characteristic path length (mean shortest path over connected pairs) and
// global efficiency (mean inverse distance over all pairs).
func shortestPathMetrics(adj [][]bool) (pathLength, efficiency float64) {
	n := len(adj)
	var distSum, pairs float64
	var invSum, allPairs float64
	queue := make([]int, 0, n)
	dist := make([]int, n)

	for s := 0; s < n; s++ {
		for i := range dist {
			dist[i] = -1
		}
		dist[s] = 0
		queue = append(queue[:0], s)
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for v := 0; v < n; v++ {
				if adj[u][v] && dist[v] < 0 {
					dist[v] = dist[u] + 1
					queue = append(queue, v)
				}
			}
		}
		for v := 0; v < n; v++ {
			if v == s {
				continue
			}
			allPairs++
			if dist[v] > 0 {
				distSum += float64(dist[v])
				pairs++
				invSum += 1 / float64(dist[v])
			}
		}
	}
	if pairs == 0 {
		return math.NaN(), 0
	}
	return distSum / pairs, invSum / allPairs
}

// clusteringCoefficients returns the mean local clustering coefficient
// (closed-triangle variant) and the global transitivity (open-triple
// variant).
func clusteringCoefficients(adj [][]bool) (closed, open float64) {
	n := len(adj)
	var localSum float64
	localCount := 0
	var triangles, triples float64

	for i := 0; i < n; i++ {
		var nbrs []int
		for j := 0; j < n; j++ {
			if adj[i][j] {
				nbrs = append(nbrs, j)
			}
		}
		k := len(nbrs)
		if k < 2 {
			continue
		}
		links := 0
		for a := 0; a < k; a++ {
			for b := a + 1; b < k; b++ {
				if adj[nbrs[a]][nbrs[b]] {
					links++
				}
			}
		}
		localSum += 2 * float64(links) / float64(k*(k-1))
		localCount++
		triangles += float64(links)
		triples += float64(k*(k-1)) / 2
	}
	if localCount == 0 || triples == 0 {
		return math.NaN(), math.NaN()
	}
	return localSum / float64(localCount), triangles / triples
}

// localEfficiency averages, over all nodes, the global efficiency of each
// node's neighborhood subgraph.
func localEfficiency(adj [][]bool) float64 {
	n := len(adj)
	var sum float64
	count := 0
	for i := 0; i < n; i++ {
		var nbrs []int
		for j := 0; j < n; j++ {
			if adj[i][j] {
				nbrs = append(nbrs, j)
			}
		}
		if len(nbrs) < 2 {
			continue
		}
		sub := make([][]bool, len(nbrs))
		for a := range nbrs {
			sub[a] = make([]bool, len(nbrs))
			for b := range nbrs {
				sub[a][b] = adj[nbrs[a]][nbrs[b]]
			}
		}
		_, eff := shortestPathMetrics(sub)
		sum += eff
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}
