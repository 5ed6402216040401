package persist

import (
	"log"

	"github.com/robfig/cron/v3"

	"blocksgraph/internal/domain"
	"blocksgraph/internal/service"
)

// Mirror keeps the SQLite database in sync with the in-memory graph.
// It subscribes to the engine's change feed and applies each ChangeSet
// row-wise; a scheduled checkpoint rewrites the full snapshot to
// collapse any drift.
type Mirror struct {
	db    *DB
	graph *service.Graph
	cron  *cron.Cron
	unsub func()
}

func NewMirror(db *DB, graph *service.Graph) *Mirror {
	return &Mirror{db: db, graph: graph}
}

// Start subscribes to the graph and, when checkpointSpec is non-empty,
// schedules full checkpoints on that cron spec.
func (m *Mirror) Start(checkpointSpec string) error {
	m.unsub = m.graph.Subscribe(m.apply)

	if checkpointSpec != "" {
		m.cron = cron.New()
		if _, err := m.cron.AddFunc(checkpointSpec, func() {
			if err := m.Checkpoint(); err != nil {
				log.Printf("mirror checkpoint: %v", err)
			}
		}); err != nil {
			return err
		}
		m.cron.Start()
	}
	return nil
}

// Stop unsubscribes and halts the checkpoint schedule.
func (m *Mirror) Stop() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
	if m.cron != nil {
		m.cron.Stop()
		m.cron = nil
	}
}

// Checkpoint rewrites the whole mirror from the live graph.
func (m *Mirror) Checkpoint() error {
	return m.db.ReplaceAll(m.graph.Snapshot())
}

// apply mirrors one committed change set. Removals go first so cascade
// deletes never trip the connection foreign keys.
func (m *Mirror) apply(cs domain.ChangeSet) {
	for _, id := range cs.RemovedConnections {
		if err := m.db.DeleteConnection(id); err != nil {
			log.Printf("mirror: %v", err)
		}
	}
	for _, id := range cs.RemovedBlocks {
		if err := m.db.DeleteBlock(id); err != nil {
			log.Printf("mirror: %v", err)
		}
	}
	for _, id := range append(append([]string{}, cs.AddedBlocks...), cs.ModifiedBlocks...) {
		b, ok := m.graph.GetBlock(id)
		if !ok {
			continue
		}
		if err := m.db.UpsertBlock(b); err != nil {
			log.Printf("mirror: %v", err)
		}
	}
	for _, id := range cs.AddedConnections {
		c, ok := m.graph.GetConnection(id)
		if !ok {
			continue
		}
		if err := m.db.UpsertConnection(c); err != nil {
			log.Printf("mirror: %v", err)
		}
	}
}
