package msvc4

// fakeNeighbors is a minimal NeighborPredictor used across the package's
// tests: it returns zero predictors (and direction 0 from PredictDC), keeps
// whatever the decoder writes back into its cbp/dc slots so tests can
// inspect it, and counts PredictAC calls, since these tests exercise
// bitstream parsing rather than the spatial-prediction math an embedding
// application owns.
type fakeNeighbors struct {
	cbpSlots [4]int
	dcSlots  [6]int16
	acCalls  int
}

func newFakeNeighbors() *fakeNeighbors { return &fakeNeighbors{} }

func (f *fakeNeighbors) PredictMV(blockIdx, partIdx int) (int, int) { return 0, 0 }

func (f *fakeNeighbors) PredictCBPBit(lumaIndex int) (int, *int) {
	return 0, &f.cbpSlots[lumaIndex]
}

func (f *fakeNeighbors) PredictAC(block *[64]int16, n int, dcPredDir int) { f.acCalls++ }

func (f *fakeNeighbors) PredictDC(n int) (int, int, *int16) {
	return 0, 0, &f.dcSlots[n]
}

func (f *fakeNeighbors) ClearBlockBank() {}
