package models

import "time"

type ChatClassMapping struct {
	ClassID         int64     `json:"class_id"`
	Name            string    `json:"name"`
	Comment         string    `json:"comment"`
	AssociationTime time.Time `json:"association_time"`
	RegisteredBy    int64     `json:"registered_by"`
}
