package scene

import "github.com/google/uuid"

type EventType string

const (
	EventTreeCreated EventType = "tree_created"
	EventNodeSpawned EventType = "node_spawned"
	EventNodeRemoved EventType = "node_removed"
	EventTreeDone    EventType = "tree_done"
	EventTreeRemoved EventType = "tree_removed"
)

type Event struct {
	Type     EventType `json:"type"`
	Tree     uuid.UUID `json:"tree"`
	Node     uuid.UUID `json:"node"`
	Parent   uuid.UUID `json:"parent"`
	Depth    int       `json:"depth"`
	Nodes    int       `json:"nodes"`
	Expected int       `json:"expected"`
	Removed  int       `json:"removed,omitempty"`
}

type Listener func(Event)
