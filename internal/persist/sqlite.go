package persist

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"blocksgraph/internal/domain"
)

// DB wraps the SQLite mirror of the in-memory graph.
type DB struct {
	conn *sql.DB
}

// Open creates or opens the mirror database at dbPath.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer — limit to a single connection to
	// prevent SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS blocks (
			id TEXT PRIMARY KEY,
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			width REAL NOT NULL DEFAULT 300,
			height REAL NOT NULL DEFAULT 200,
			label TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT '',
			z INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS connections (
			id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL REFERENCES blocks(id),
			target_id TEXT NOT NULL REFERENCES blocks(id),
			label TEXT NOT NULL DEFAULT '',
			style TEXT NOT NULL DEFAULT 'solid',
			source_anchor TEXT NOT NULL DEFAULT '',
			target_anchor TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_connections_source ON connections(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_connections_target ON connections(target_id)`,
	}
	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}

// ── Row operations (per-ChangeSet mirroring) ───────────────

// UpsertBlock writes one block row.
func (db *DB) UpsertBlock(b domain.Block) error {
	_, err := db.conn.Exec(
		`INSERT INTO blocks (id, x, y, width, height, label, kind, z, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			x = excluded.x, y = excluded.y,
			width = excluded.width, height = excluded.height,
			label = excluded.label, kind = excluded.kind,
			z = excluded.z, updated_at = excluded.updated_at`,
		b.ID, b.Geometry.X, b.Geometry.Y, b.Geometry.Width, b.Geometry.Height,
		b.Label, b.Kind, b.Z, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert block %s: %w", b.ID, err)
	}
	return nil
}

// DeleteBlock removes one block row.
func (db *DB) DeleteBlock(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM blocks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete block %s: %w", id, err)
	}
	return nil
}

// UpsertConnection writes one connection row.
func (db *DB) UpsertConnection(c domain.Connection) error {
	_, err := db.conn.Exec(
		`INSERT INTO connections (id, source_id, target_id, label, style, source_anchor, target_anchor, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id, target_id = excluded.target_id,
			label = excluded.label, style = excluded.style,
			source_anchor = excluded.source_anchor, target_anchor = excluded.target_anchor,
			updated_at = excluded.updated_at`,
		c.ID, c.SourceID, c.TargetID, c.Label, string(c.Style),
		string(c.SourceAnchor), string(c.TargetAnchor), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert connection %s: %w", c.ID, err)
	}
	return nil
}

// DeleteConnection removes one connection row.
func (db *DB) DeleteConnection(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM connections WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete connection %s: %w", id, err)
	}
	return nil
}

// ── Whole-graph operations ─────────────────────────────────

// Load reads the full mirrored graph.
func (db *DB) Load() (domain.Snapshot, error) {
	var snap domain.Snapshot

	rows, err := db.conn.Query(
		`SELECT id, x, y, width, height, label, kind, z, created_at, updated_at
		 FROM blocks ORDER BY z ASC`)
	if err != nil {
		return snap, fmt.Errorf("load blocks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b domain.Block
		if err := rows.Scan(&b.ID, &b.Geometry.X, &b.Geometry.Y, &b.Geometry.Width,
			&b.Geometry.Height, &b.Label, &b.Kind, &b.Z, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return snap, fmt.Errorf("scan block: %w", err)
		}
		snap.Blocks = append(snap.Blocks, b)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	crows, err := db.conn.Query(
		`SELECT id, source_id, target_id, label, style, source_anchor, target_anchor, created_at, updated_at
		 FROM connections ORDER BY created_at ASC`)
	if err != nil {
		return snap, fmt.Errorf("load connections: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var c domain.Connection
		var style, srcAnchor, dstAnchor string
		if err := crows.Scan(&c.ID, &c.SourceID, &c.TargetID, &c.Label, &style,
			&srcAnchor, &dstAnchor, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return snap, fmt.Errorf("scan connection: %w", err)
		}
		c.Style = domain.ConnectionStyle(style)
		c.SourceAnchor = domain.Anchor(srcAnchor)
		c.TargetAnchor = domain.Anchor(dstAnchor)
		snap.Connections = append(snap.Connections, c)
	}
	return snap, crows.Err()
}

// ReplaceAll rewrites the mirror with the snapshot in one transaction.
// Used by the scheduled checkpoint to collapse row-wise drift.
func (db *DB) ReplaceAll(snap domain.Snapshot) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin checkpoint: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM connections`); err != nil {
		return fmt.Errorf("clear connections: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM blocks`); err != nil {
		return fmt.Errorf("clear blocks: %w", err)
	}
	for _, b := range snap.Blocks {
		if _, err := tx.Exec(
			`INSERT INTO blocks (id, x, y, width, height, label, kind, z, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.Geometry.X, b.Geometry.Y, b.Geometry.Width, b.Geometry.Height,
			b.Label, b.Kind, b.Z, b.CreatedAt, b.UpdatedAt,
		); err != nil {
			return fmt.Errorf("checkpoint block %s: %w", b.ID, err)
		}
	}
	for _, c := range snap.Connections {
		if _, err := tx.Exec(
			`INSERT INTO connections (id, source_id, target_id, label, style, source_anchor, target_anchor, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.SourceID, c.TargetID, c.Label, string(c.Style),
			string(c.SourceAnchor), string(c.TargetAnchor), c.CreatedAt, c.UpdatedAt,
		); err != nil {
			return fmt.Errorf("checkpoint connection %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}
