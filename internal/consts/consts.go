package consts

const (
	TOLERANCE     = 1e-10 // Zero threshold for pivots, rank and extended rows
	IDEMPOTENT_EQ = 1e-9  // Equality threshold when comparing re-reduced matrices
)

const (
	DEFAULT_STEP = 1e-4 // Default integration step (s)
	DEFAULT_STOP = 0.1  // Default simulation time (s)
)
