package domain

// VectorConfig holds the embedding model settings used when none are configured.
type VectorConfig struct {
	Model      string
	Dimensions int
}

// DefaultVectorConfig returns the default configuration tuned for text-embedding-3-small.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:      "text-embedding-3-small",
		Dimensions: 1536,
	}
}
