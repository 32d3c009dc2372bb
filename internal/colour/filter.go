package colour

import "math"

// FilterAndSnap drops clusters whose centre lies within threshold of any
// ignored colour and snaps each surviving centre to the nearest of its member
// colours, so every returned colour occurs in the image. A member that is
// itself within threshold of an ignored colour is never chosen; a cluster with
// no eligible member is dropped. Output keeps cluster order.
func FilterAndSnap(clustering *Clustering, ignore []RGB, threshold float64, metric Metric) []Swatch {
	ignoreLabs := make([]lab, len(ignore))
	for i, c := range ignore {
		ignoreLabs[i] = toLab(c)
	}

	ignored := func(p lab) bool {
		for _, q := range ignoreLabs {
			if metric.between(q, p) <= threshold {
				return true
			}
		}
		return false
	}

	swatches := make([]Swatch, 0, len(clustering.Clusters))
	for _, cl := range clustering.Clusters {
		center := toLab(cl.Center)
		if ignored(center) {
			continue
		}

		snapped, ok := snap(cl.Members, center, metric, ignored)
		if !ok {
			continue
		}
		swatches = append(swatches, Swatch{Colour: snapped, Weight: cl.Count})
	}
	return swatches
}

// snap returns the member nearest to center, skipping members rejected by
// ignored. Ties go to the earlier member.
func snap(members []RGB, center lab, metric Metric, ignored func(lab) bool) (RGB, bool) {
	var (
		best  RGB
		found bool
	)
	bestDist := math.Inf(1)
	for _, m := range members {
		p := toLab(m)
		d := metric.between(p, center)
		if d >= bestDist || ignored(p) {
			continue
		}
		best, bestDist, found = m, d, true
	}
	return best, found
}
