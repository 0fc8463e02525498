package neat

import "math"

// Compatibility measures the genetic distance between two genomes in a single
// walk over their innovation-sorted connections:
//
//	d = c1*E/N + c2*D/N + c3*W
//
// where E counts excess genes (past the other genome's last innovation), D
// counts disjoint genes, W is the mean absolute weight difference of matching
// genes (0 when nothing matches) and N is 1 unless either genome has 20 or
// more connections, in which case it is the larger connection count.
//
// Gated memory units do not contribute to the distance.
func Compatibility(a, b *Genome, cfg SpeciationConfig) float64 {
	excess, disjoint, matching := 0, 0, 0
	weightDiff := 0.0

	i, j := 0, 0
	for i < len(a.Connections) || j < len(b.Connections) {
		switch {
		case i == len(a.Connections):
			excess++
			j++
		case j == len(b.Connections):
			excess++
			i++
		case a.Connections[i].Innovation == b.Connections[j].Innovation:
			matching++
			weightDiff += math.Abs(a.Connections[i].Weight - b.Connections[j].Weight)
			i++
			j++
		case a.Connections[i].Innovation < b.Connections[j].Innovation:
			disjoint++
			i++
		default:
			disjoint++
			j++
		}
	}

	n := 1.0
	if len(a.Connections) >= 20 || len(b.Connections) >= 20 {
		n = float64(max(len(a.Connections), len(b.Connections)))
	}

	d := cfg.ExcessCoefficient*float64(excess)/n + cfg.DisjointCoefficient*float64(disjoint)/n
	if matching > 0 {
		d += cfg.WeightsCoefficient * weightDiff / float64(matching)
	}
	return d
}
