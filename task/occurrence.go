package task

// OccurrenceKind distinguishes real tasks from synthesized instances of a
// recurring series.
type OccurrenceKind string

const (
	// OccurrenceStandalone is a one-off task passed through unchanged.
	OccurrenceStandalone OccurrenceKind = "standalone"
	// OccurrenceRecurringInstance is a virtual instance of a recurring task
	// on one specific date. It is derived on every expansion and never
	// persisted.
	OccurrenceRecurringInstance OccurrenceKind = "recurring-instance"
)

// Occurrence is one dated instance of a base task. Two occurrences are the
// same iff their (BaseID, DateKey) pairs are equal. For a recurring instance
// the embedded task carries the encoded occurrence id, never the base id;
// for a standalone task the id is unchanged.
type Occurrence struct {
	Task

	Kind    OccurrenceKind `json:"kind"`
	BaseID  string         `json:"base_id"`
	DateKey DateKey        `json:"date_key"`
}
