package domain

// MinScoreDisabled disables the retrieval score threshold. Cosine similarity
// never drops below -1, so every match passes.
const MinScoreDisabled float32 = -1

// PipelineSettings holds the user-tunable knobs of the retrieval pipeline.
// They are validated once at pipeline construction; invalid combinations
// fail fast rather than being clamped.
type PipelineSettings struct {
	ChunkSize       int     // chunk width in characters
	ChunkOverlap    int     // characters shared between adjacent chunks
	TopK            int     // number of chunks retrieved per question
	MinScore        float32 // matches below this similarity are dropped
	MaxContextChars int     // budget for the assembled context block
}

// DefaultPipelineSettings provides sane defaults for the pipeline.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		ChunkSize:       1000,
		ChunkOverlap:    200,
		TopK:            4,
		MinScore:        MinScoreDisabled,
		MaxContextChars: 6000,
	}
}

// Validate checks the settings and returns a configuration error on the
// first invalid field.
func (s PipelineSettings) Validate() error {
	if s.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}

	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return ErrInvalidChunkOverlap
	}

	if s.TopK <= 0 {
		return ErrInvalidTopK
	}

	if s.MaxContextChars <= 0 {
		return ErrInvalidContextBudget
	}

	return nil
}
