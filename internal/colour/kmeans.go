package colour

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/hashicorp/go-hclog"
	"gonum.org/v1/gonum/floats"
)

// DefaultMaxIterations bounds a single k-means run. Rounding centres to whole
// channel values can in principle make a run oscillate.
const DefaultMaxIterations = 300

var (
	// ErrNoCandidates is returned when there is nothing to seed clustering from.
	ErrNoCandidates = errors.New("no candidate colours to seed clustering")

	// ErrNotConverged is returned alongside the last clustering when the
	// iteration cap is reached before the centres stabilise.
	ErrNotConverged = errors.New("clustering did not converge")
)

// Source supplies the randomness used to pick initial centres.
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// globalSource draws from the math/rand package source.
type globalSource struct{}

func (globalSource) Intn(n int) int {
	return rand.Intn(n) // #nosec G404 -- centre seeding is not security sensitive
}

// Cluster is one group of histogram colours around a centre.
type Cluster struct {
	// Center is the count-weighted mean of the members, rounded per channel.
	// It need not occur in the image.
	Center RGB
	// Count is the number of pixels assigned to the cluster.
	Count int
	// Members are the distinct colours assigned to the cluster, in histogram order.
	Members []RGB
}

// Clustering is the outcome of one k-means run.
type Clustering struct {
	Clusters   []Cluster
	Iterations int
	Converged  bool
}

// Centers returns the cluster centres in cluster order.
func (c *Clustering) Centers() []RGB {
	return centersOf(c.Clusters)
}

// Total returns the number of pixels over all clusters.
func (c *Clustering) Total() int {
	total := 0
	for _, cl := range c.Clusters {
		total += cl.Count
	}
	return total
}

// Clusterer runs k-means over the distinct colours of a histogram, weighting
// each colour by its pixel count.
type Clusterer struct {
	Source        Source
	Metric        Metric
	MaxIterations int
	Logger        hclog.Logger
}

// Cluster seeds k centres from candidates and iterates assign/update until the
// ordered list of centres repeats. Clusters left without members are dropped,
// so fewer than k clusters may come back.
func (c *Clusterer) Cluster(ctx context.Context, hist *Histogram, candidates []RGB, k int) (*Clustering, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, k)
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	src := c.Source
	if src == nil {
		src = globalSource{}
	}
	maxIter := c.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	logger := c.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	centers := seedCenters(src, candidates, k)
	result := &Clustering{}

	for iter := 1; ; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result.Clusters = assignAndUpdate(hist, centers, c.Metric)
		result.Iterations = iter

		next := centersOf(result.Clusters)
		if slices.Equal(next, centers) {
			result.Converged = true
			logger.Trace("kmeans converged", "iterations", iter, "clusters", len(next))
			return result, nil
		}
		if iter >= maxIter {
			logger.Warn("kmeans hit iteration cap", "iterations", iter, "clusters", len(next))
			return result, fmt.Errorf("%w after %d iterations", ErrNotConverged, iter)
		}
		centers = next
	}
}

// seedCenters picks k distinct candidates uniformly without replacement, or
// all of them when there are no more than k.
func seedCenters(src Source, candidates []RGB, k int) []RGB {
	if k >= len(candidates) {
		return slices.Clone(candidates)
	}
	pool := slices.Clone(candidates)
	for i := range k {
		j := i + src.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// assignAndUpdate assigns every histogram colour to its nearest centre (the
// first one wins a tie) and recomputes each centre as the pixel-weighted mean
// of its members.
func assignAndUpdate(hist *Histogram, centers []RGB, metric Metric) []Cluster {
	centerLabs := make([]lab, len(centers))
	for i, c := range centers {
		centerLabs[i] = toLab(c)
	}

	sums := make([][]float64, len(centers))
	for i := range sums {
		sums[i] = make([]float64, 3)
	}
	counts := make([]int, len(centers))
	members := make([][]RGB, len(centers))
	channels := make([]float64, 3)

	for i, p := range hist.labs {
		nearest := 0
		best := math.Inf(1)
		for j, cl := range centerLabs {
			if d := metric.between(p, cl); d < best {
				best = d
				nearest = j
			}
		}

		colour := hist.colours[i]
		n := hist.counts[colour]
		channels[0], channels[1], channels[2] = float64(colour.R), float64(colour.G), float64(colour.B)
		floats.AddScaled(sums[nearest], float64(n), channels)
		counts[nearest] += n
		members[nearest] = append(members[nearest], colour)
	}

	clusters := make([]Cluster, 0, len(centers))
	mean := make([]float64, 3)
	denom := make([]float64, 3)
	for j := range centers {
		if counts[j] == 0 {
			continue
		}
		// Divide rather than scale by 1/n so exact halves stay exact.
		n := float64(counts[j])
		denom[0], denom[1], denom[2] = n, n, n
		floats.DivTo(mean, sums[j], denom)
		clusters = append(clusters, Cluster{
			Center: mustRGB(
				int(math.Round(mean[0])),
				int(math.Round(mean[1])),
				int(math.Round(mean[2])),
			),
			Count:   counts[j],
			Members: members[j],
		})
	}
	return clusters
}

func centersOf(clusters []Cluster) []RGB {
	out := make([]RGB, len(clusters))
	for i, cl := range clusters {
		out[i] = cl.Center
	}
	return out
}
