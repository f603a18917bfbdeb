package testutil

// ConstantIDGenerator returns the same request ID every time.
//
// fetch.FixedGenerator panics once its list runs out; this one never does,
// which suits tests that issue an unknown number of requests but still
// want stable log output.
//
// Thread-safety: ConstantIDGenerator is stateless and safe for concurrent use.
type ConstantIDGenerator struct {
	id string
}

// NewConstantIDGenerator creates a generator for id.
// If id is empty, Generate() returns "test-request".
func NewConstantIDGenerator(id string) *ConstantIDGenerator {
	if id == "" {
		id = "test-request"
	}
	return &ConstantIDGenerator{id: id}
}

// Generate returns the fixed ID.
//
// Implements fetch.RequestIDGenerator.
func (g *ConstantIDGenerator) Generate() string {
	return g.id
}
