package spec

type sinkConfigs struct {
	Stdout any `yaml:"stdout"`
}

// TransformerSpec is one entry of a column step.
type TransformerSpec struct {
	Name    string   `yaml:"name"`
	Unit    string   `yaml:"unit"`    // registered unit name, e.g. "standard_scaler"
	Mode    string   `yaml:"mode"`    // "series" | "primitives"; empty = the unit's own kind
	Action  string   `yaml:"action"`  // "drop" | "passthrough"; empty = apply Unit
	Remote  string   `yaml:"remote"`  // e.g. "localhost:50052"; empty = in-process
	Columns []string `yaml:"columns"` // empty = no columns
	Check   *bool    `yaml:"check"`   // nil = true

	TimeoutMS int `yaml:"timeout_ms"`
}

// StepSpec is one stage of the composition.
type StepSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // "column" | "row" | "concatenate"

	// column
	Remainder       string             `yaml:"remainder"` // "drop" | "passthrough" | unit name
	SparseThreshold *float64           `yaml:"sparse_threshold"`
	PreserveFrame   *bool              `yaml:"preserve_frame"`
	Jobs            *int               `yaml:"jobs"`
	Weights         map[string]float64 `yaml:"weights"`
	Transformers    []TransformerSpec  `yaml:"transformers"`

	// row
	Unit   string `yaml:"unit"`
	Mode   string `yaml:"mode"`
	Remote string `yaml:"remote"`
	Check  *bool  `yaml:"check"`

	// concatenate
	Column string `yaml:"column"`
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	Source struct {
		Kind string `yaml:"kind"`
		Path string `yaml:"path"`
	} `yaml:"source"`

	// Ordered list of stages applied between source and sinks.
	Steps []StepSpec `yaml:"steps"`

	Sinks       []string    `yaml:"sinks"`
	SinkConfigs sinkConfigs `yaml:"sink_configs"`
}
