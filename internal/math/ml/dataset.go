package ml

import "gonum.org/v1/gonum/mat"

// Rows copies the matrix into a slice of rows.
func Rows(x mat.Matrix) [][]float64 {
	r, _ := x.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = mat.Row(nil, i, x)
	}
	return rows
}

// Metadata summarises a clustering or classification outcome.
type Metadata struct {
	Samples    int       `json:"samples"`
	Clusters   []Cluster `json:"clusters,omitempty"`
	Iterations int       `json:"iterations,omitempty"`
	Converged  bool      `json:"converged,omitempty"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	Features   []float64 `json:"features,omitempty"`
}

// Cluster describes a single cluster.
type Cluster struct {
	Size   int       `json:"size"`
	Center []float64 `json:"center"`
}

// Describe creates the metadata for a clustering result.
func Describe(r Result) Metadata {
	sizes := r.Sizes()
	clusters := make([]Cluster, len(sizes))
	for c, s := range sizes {
		clusters[c] = Cluster{
			Size:   s,
			Center: mat.Row(nil, c, r.Centers),
		}
	}
	return Metadata{
		Samples:    len(r.Labels),
		Clusters:   clusters,
		Iterations: r.Iterations,
		Converged:  r.Converged,
	}
}
