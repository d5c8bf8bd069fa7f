package config

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(order []string, configPath string) *LLM {
	return &LLM{
		order:      order,
		configPath: configPath,
	}
}

// NewEmbeddingForTest creates an Embedding config for testing purposes
func NewEmbeddingForTest(backend, openAIKey string, dimension int) *Embedding {
	return &Embedding{
		backend:   backend,
		openAIKey: openAIKey,
		dimension: dimension,
	}
}

// NewIndexForTest creates an Index config for testing purposes
func NewIndexForTest(backend string) *Index {
	return &Index{backend: backend}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(backend, badgerPath string) *Storage {
	return &Storage{
		backend:    backend,
		badgerPath: badgerPath,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}
