package usecase

// Context keys for error values and log attributes
const (
	GenerationIDKey = "generation_id"
	CountKey        = "count"
)
