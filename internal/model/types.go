package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// StopReason records why a run stopped evolving.
type StopReason string

const (
	StopReasonCompleted StopReason = "completed"
	StopReasonCancelled StopReason = "cancelled"
)

type RunRecord struct {
	VersionedRecord
	ID           string     `json:"id"`
	Problem      string     `json:"problem"`
	Seed         int64      `json:"seed"`
	CreatedAtUTC string     `json:"created_at_utc"`
	DurationMS   int64      `json:"duration_ms"`
	Generations  int        `json:"generations"`
	Evaluations  int        `json:"evaluations"`
	BestFitness  float64    `json:"best_fitness"`
	FinalSize    int        `json:"final_size"`
	StopReason   StopReason `json:"stop_reason"`
	// Config is the run configuration as YAML.
	Config string `json:"config,omitempty"`
}

type GenerationDiagnostics struct {
	Generation  int     `json:"generation"`
	Evaluations int     `json:"evaluations"`
	Offspring   int     `json:"offspring"`
	Mutants     int     `json:"mutants"`
	Evolved     int     `json:"evolved"`
	Survivors   int     `json:"survivors"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	MinFitness  float64 `json:"min_fitness"`
	StdDev      float64 `json:"std_dev"`
}

// Outcome is one member of a final population in phenotype space.
type Outcome struct {
	Phenotype string  `json:"phenotype"`
	Fitness   float64 `json:"fitness"`
	Age       int     `json:"age"`
}

type FinalPopulation struct {
	VersionedRecord
	RunID    string    `json:"run_id"`
	Outcomes []Outcome `json:"outcomes"`
}
