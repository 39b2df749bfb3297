package domain

// ComplexityTier grades how hard a migration is expected to be.
type ComplexityTier string

const (
	ComplexitySimple   ComplexityTier = "simple"
	ComplexityModerate ComplexityTier = "moderate"
	ComplexityComplex  ComplexityTier = "complex"
)

// ComplexityAssessment is derived purely from an entity snapshot. Stored copies are a cache only.
type ComplexityAssessment struct {
	Complexity      ComplexityTier `json:"complexity"`
	EstimatedHours  int            `json:"estimatedHours"`
	Risks           []string       `json:"risks"`
	Recommendations []string       `json:"recommendations"`

	TotalEntities           int `json:"totalEntities"`
	RequiresReviewCount     int `json:"requiresReviewCount"`
	DistinctEntityTypeCount int `json:"distinctEntityTypeCount"`
}
