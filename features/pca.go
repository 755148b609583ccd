// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package features

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"parqcel/datatable"
	"parqcel/frame"
)

// Projection holds the rows of a feature matrix expressed in principal
// component coordinates, one column per component (pca_1, pca_2, ...).
type Projection struct {
	Matrix
	// VarianceRatio is the share of the total variance each component explains.
	VarianceRatio []float64
}

// PCA projects the centered rows of m onto its first k principal
// components. The sign of each component is arbitrary.
func PCA(m *Matrix, k int) (*Projection, error) {
	features := len(m.Columns)
	if m.Rows < 2 || features == 0 {
		return nil, fmt.Errorf("%w: PCA needs at least 2 rows and 1 feature, have %d x %d",
			datatable.ErrFeatures, m.Rows, features)
	}
	if limit := min(m.Rows, features); k < 1 || k > limit {
		return nil, fmt.Errorf("%w: %d components requested, between 1 and %d available",
			datatable.ErrFeatures, k, limit)
	}

	centered := mat.NewDense(m.Rows, features, nil)
	for j, col := range m.Columns {
		mean := stat.Mean(col, nil)
		for i, v := range col {
			centered.Set(i, j, v-mean)
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(centered, nil); !ok {
		return nil, fmt.Errorf("%w: decomposition did not converge", datatable.ErrFeatures)
	}
	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	variances := pc.VarsTo(nil)

	var proj mat.Dense
	proj.Mul(centered, vectors.Slice(0, features, 0, k))

	p := &Projection{Matrix: Matrix{Rows: m.Rows}, VarianceRatio: make([]float64, k)}
	total := floats.Sum(variances)
	for j := 0; j < k; j++ {
		p.add(fmt.Sprintf("pca_%d", j+1), mat.Col(nil, j, &proj))
		if total > 0 {
			p.VarianceRatio[j] = variances[j] / total
		}
	}
	return p, nil
}

// Project featurizes t with opts and returns its first k principal
// components.
func Project(t *frame.Table, opts Options, k int) (*Projection, error) {
	m, err := Generate(t, opts)
	if err != nil {
		return nil, err
	}
	return PCA(m, k)
}
