package physics

import (
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/mesh"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
)

// newLevelTestNode builds a minimal *fvm.Node good enough to drive a region
// Level's Function/Jacobian directly, without a real fvm.Graph/mesh.Mesher.
func newLevelTestNode(kind nodedata.Kind, globalOffset int, x float64) *fvm.Node {
	return &fvm.Node{
		Id:           globalOffset,
		RootNode:     &mesh.Node{Id: globalOffset, X: [3]float64{x, 0, 0}},
		Volume:       1e-18,
		GlobalOffset: globalOffset,
		LocalOffset:  globalOffset,
		NodeData:     nodedata.New(kind),
	}
}

// matrixJacWriter collects Jacobian entries by (row, col), the shape the
// finite-difference checks in this package compare against.
type matrixJacWriter map[[2]int]float64

func (w matrixJacWriter) Add(row, col int, v float64) { w[[2]int{row, col}] += v }
