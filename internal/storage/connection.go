package storage

import (
	"time"

	"github.com/google/uuid"

	"blocksgraph/internal/domain"
)

// ConnectionStore owns the links between blocks. Referential integrity
// against the block store is enforced at creation through blockExists,
// and on block removal through RemoveByBlock.
type ConnectionStore struct {
	conns       map[string]domain.Connection
	order       []string // creation order, for stable listing
	policy      domain.ConnectionPolicy
	blockExists func(id string) bool
}

func NewConnectionStore(policy domain.ConnectionPolicy, blockExists func(string) bool) *ConnectionStore {
	return &ConnectionStore{
		conns:       make(map[string]domain.Connection),
		policy:      policy,
		blockExists: blockExists,
	}
}

// Policy returns the active connection policy.
func (s *ConnectionStore) Policy() domain.ConnectionPolicy {
	return s.policy
}

// Add creates a connection between two existing blocks, subject to the
// self-loop and parallel-edge policy.
func (s *ConnectionStore) Add(sourceID, targetID string, meta domain.ConnectionMeta) (domain.Connection, error) {
	if !s.blockExists(sourceID) {
		return domain.Connection{}, domain.NewError(domain.ErrCodeBlockNotFound, "source block %s", sourceID)
	}
	if !s.blockExists(targetID) {
		return domain.Connection{}, domain.NewError(domain.ErrCodeBlockNotFound, "target block %s", targetID)
	}
	if sourceID == targetID && !s.policy.AllowSelfLoop {
		return domain.Connection{}, domain.NewError(domain.ErrCodeInvalidConnection, "self-loop on block %s disallowed by policy", sourceID)
	}
	if !s.policy.AllowParallelEdges {
		for _, c := range s.conns {
			if c.SourceID == sourceID && c.TargetID == targetID {
				return domain.Connection{}, domain.NewError(domain.ErrCodeInvalidConnection, "parallel edge %s -> %s disallowed by policy", sourceID, targetID)
			}
		}
	}
	if !meta.SourceAnchor.Valid() || !meta.TargetAnchor.Valid() {
		return domain.Connection{}, domain.NewError(domain.ErrCodeInvalidConnection, "unknown anchor name")
	}
	style := meta.Style
	if style == "" {
		style = domain.ConnectionStyleSolid
	}

	now := time.Now()
	c := domain.Connection{
		ID:           uuid.New().String(),
		SourceID:     sourceID,
		TargetID:     targetID,
		Label:        meta.Label,
		Style:        style,
		SourceAnchor: meta.SourceAnchor,
		TargetAnchor: meta.TargetAnchor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.conns[c.ID] = c
	s.order = append(s.order, c.ID)
	return c, nil
}

// Get returns the connection by id.
func (s *ConnectionStore) Get(id string) (domain.Connection, bool) {
	c, ok := s.conns[id]
	return c, ok
}

// List returns all connections in creation order.
func (s *ConnectionStore) List() []domain.Connection {
	out := make([]domain.Connection, 0, len(s.conns))
	for _, id := range s.order {
		if c, ok := s.conns[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// For returns every connection touching the block, in either direction.
func (s *ConnectionStore) For(blockID string) []domain.Connection {
	var out []domain.Connection
	for _, id := range s.order {
		c, ok := s.conns[id]
		if !ok {
			continue
		}
		if c.SourceID == blockID || c.TargetID == blockID {
			out = append(out, c)
		}
	}
	return out
}

// Remove deletes a connection.
func (s *ConnectionStore) Remove(id string) error {
	if _, ok := s.conns[id]; !ok {
		return domain.NewError(domain.ErrCodeConnectionNotFound, "connection %s", id)
	}
	delete(s.conns, id)
	s.compact()
	return nil
}

// RemoveByBlock deletes every connection referencing the block and
// returns the removed ids. This is the cascade driver: it operates on
// ids already known to exist, so it cannot fail.
func (s *ConnectionStore) RemoveByBlock(blockID string) []string {
	var removed []string
	for _, id := range s.order {
		c, ok := s.conns[id]
		if !ok {
			continue
		}
		if c.SourceID == blockID || c.TargetID == blockID {
			delete(s.conns, id)
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		s.compact()
	}
	return removed
}

// Restore replaces the whole connection set from a snapshot.
func (s *ConnectionStore) Restore(conns []domain.Connection) {
	s.conns = make(map[string]domain.Connection, len(conns))
	s.order = s.order[:0]
	for _, c := range conns {
		s.conns[c.ID] = c
		s.order = append(s.order, c.ID)
	}
}

// compact drops deleted ids from the creation-order slice.
func (s *ConnectionStore) compact() {
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.conns[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}
