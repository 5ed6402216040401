package domain

import "time"

// Block is a positioned, sized, identified node on the canvas.
// The ID is assigned at creation and never reused within a session.
type Block struct {
	ID        string    `json:"id"`
	Geometry  Geometry  `json:"geometry"`
	Label     string    `json:"label"`
	Kind      string    `json:"kind"`
	Z         int64     `json:"z"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BlockMeta is the optional display metadata supplied at creation.
type BlockMeta struct {
	Label string `json:"label"`
	Kind  string `json:"kind"`
}
