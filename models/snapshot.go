package models

import (
	"encoding/json"
	"time"
)

// Node is one element of the accessibility tree. Child order is the
// traversal order reported by the automation backend.
type Node struct {
	Role       string `json:"r"`
	Label      string `json:"t,omitempty"`
	Value      string `json:"v,omitempty"`
	Identifier string `json:"id,omitempty"`
	Frame      [4]int `json:"b"` // [x, y, width, height]
	Children   []Node `json:"c,omitempty"`
}

// Snapshot is one observation of the UI under test. Snapshots are produced
// fresh on every observe call and never mutated afterwards.
type Snapshot struct {
	Root       Node      `json:"root"`
	CapturedAt time.Time `json:"captured_at"`
}

// Compact returns the tree as single-line JSON, the form handed to the
// planning service.
func (s *Snapshot) Compact() string {
	b, err := json.Marshal(s.Root)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// NodeCount reports the number of nodes in the tree, root included.
func (s *Snapshot) NodeCount() int {
	return countNodes(&s.Root)
}

func countNodes(n *Node) int {
	total := 1
	for i := range n.Children {
		total += countNodes(&n.Children[i])
	}
	return total
}
