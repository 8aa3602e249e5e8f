package layout

import "fmt"

type DataErrorKind string

const (
	DataErrorMissingID        DataErrorKind = "missing id"
	DataErrorDuplicateNode    DataErrorKind = "duplicate node"
	DataErrorUnknownNode      DataErrorKind = "unknown node"
	DataErrorInvalidFrequency DataErrorKind = "invalid frequency"
	DataErrorInvalidCategory  DataErrorKind = "invalid category"
	DataErrorSelfLink         DataErrorKind = "self link"
)

// DataError describes a dataset that cannot be laid out. A run never starts
// when the dataset produces a DataError.
type DataError struct {
	Kind   DataErrorKind
	NodeID string
	Detail string
}

func (e *DataError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("invalid dataset: %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("invalid dataset: %s '%s': %s", e.Kind, e.NodeID, e.Detail)
}

// ConfigError reports a configuration value outside of its valid range. It
// is never fatal: the value has already been replaced by Clamped.
type ConfigError struct {
	Field   string
	Value   float64
	Clamped float64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config value %s=%v out of range, clamped to %v", e.Field, e.Value, e.Clamped)
}
