package models

// Criterion is one scorable dimension, e.g. attendance or uniform.
// Reference data: loaded once, never mutated by the engine.
type Criterion struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Label string `db:"label" json:"label"`
}
