package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"blocksgraph/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Undo history — snapshot tree with branch preservation
// ─────────────────────────────────────────────────────────────

// Node is one committed state in the history tree. Undoing and then
// committing something new starts a branch instead of discarding the
// redo path.
type Node struct {
	ID        string          `json:"id"`
	ParentID  string          `json:"parentId,omitempty"`
	Label     string          `json:"label"`
	Snapshot  domain.Snapshot `json:"snapshot"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Tree is the full history handed to the frontend's history panel.
type Tree struct {
	Nodes     []Node `json:"nodes"`
	CurrentID string `json:"currentId"`
	RootID    string `json:"rootId"`
}

// maxNodes caps the tree; oldest nodes are pruned with their children
// reparented so every surviving branch stays reachable.
const maxNodes = 40

// Store keeps the undo tree in memory. It holds full snapshots, not
// deltas: restoring is a single engine Restore call.
type Store struct {
	mu      sync.Mutex
	nodes   map[string]*Node
	order   []string // creation order, oldest first
	current string
	limit   int
}

func NewStore() *Store {
	return &Store{nodes: make(map[string]*Node), limit: maxNodes}
}

// Push records a new state under the current node and makes it
// current.
func (s *Store) Push(label string, snap domain.Snapshot) Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := &Node{
		ID:        uuid.New().String(),
		ParentID:  s.current,
		Label:     label,
		Snapshot:  snap,
		CreatedAt: time.Now(),
	}
	s.nodes[n.ID] = n
	s.order = append(s.order, n.ID)
	s.current = n.ID
	s.prune()
	return *n
}

// Current returns the node the history pointer sits on.
func (s *Store) Current() (Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[s.current]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Undo moves to the parent of the current node and returns its
// snapshot. Returns false at the root.
func (s *Store) Undo() (domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.nodes[s.current]
	if !ok || cur.ParentID == "" {
		return domain.Snapshot{}, false
	}
	parent, ok := s.nodes[cur.ParentID]
	if !ok {
		return domain.Snapshot{}, false
	}
	s.current = parent.ID
	return parent.Snapshot, true
}

// Redo moves to the most recently created child of the current node.
// Returns false at a leaf.
func (s *Store) Redo() (domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Scan creation order backwards so the newest branch wins.
	for i := len(s.order) - 1; i >= 0; i-- {
		n := s.nodes[s.order[i]]
		if n != nil && n.ParentID == s.current && s.current != "" {
			s.current = n.ID
			return n.Snapshot, true
		}
	}
	return domain.Snapshot{}, false
}

// GoTo jumps the pointer to an arbitrary node and returns its
// snapshot.
func (s *Store) GoTo(id string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return domain.Snapshot{}, domain.NewError(domain.ErrCodeBlockNotFound, "history node %s", id)
	}
	s.current = id
	return n.Snapshot, nil
}

// Tree returns all nodes in creation order plus the pointers the
// frontend needs to draw the tree.
func (s *Store) Tree() Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := Tree{CurrentID: s.current}
	for _, id := range s.order {
		n := s.nodes[id]
		if n == nil {
			continue
		}
		t.Nodes = append(t.Nodes, *n)
		if n.ParentID == "" && t.RootID == "" {
			t.RootID = n.ID
		}
	}
	return t
}

// Len returns the number of stored nodes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// Clear drops the whole tree.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[string]*Node)
	s.order = nil
	s.current = ""
}

// prune removes the oldest nodes past the limit, skipping the current
// node and reparenting children onto the removed node's parent.
// Caller holds mu.
func (s *Store) prune() {
	for len(s.nodes) > s.limit {
		victim := ""
		for _, id := range s.order {
			if id != s.current {
				if _, ok := s.nodes[id]; ok {
					victim = id
					break
				}
			}
		}
		if victim == "" {
			return
		}
		removed := s.nodes[victim]
		for _, n := range s.nodes {
			if n.ParentID == victim {
				n.ParentID = removed.ParentID
			}
		}
		delete(s.nodes, victim)
		kept := s.order[:0]
		for _, id := range s.order {
			if id != victim {
				kept = append(kept, id)
			}
		}
		s.order = kept
	}
}
