package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/isometry-app/isometry/pkg/types"
)

// timeLayout is a fixed-width UTC layout so that stored timestamps compare
// correctly as text, which the LATCH-generated fragments rely on.
const timeLayout = "2006-01-02T15:04:05.000Z"

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	node_type TEXT NOT NULL DEFAULT 'note',
	name TEXT NOT NULL,
	content TEXT,
	summary TEXT,
	latitude REAL,
	longitude REAL,
	place_name TEXT,
	address TEXT,
	created_at TEXT NOT NULL,
	modified_at TEXT NOT NULL,
	due_at TEXT,
	completed_at TEXT,
	event_start TEXT,
	event_end TEXT,
	folder TEXT,
	tags TEXT NOT NULL DEFAULT '[]',
	status TEXT,
	priority INTEGER NOT NULL DEFAULT 0,
	importance INTEGER NOT NULL DEFAULT 0,
	sort_order INTEGER NOT NULL DEFAULT 0,
	source TEXT,
	source_id TEXT,
	source_url TEXT,
	deleted_at TEXT,
	version INTEGER NOT NULL DEFAULT 1,
	sync_version INTEGER NOT NULL DEFAULT 1,
	last_synced_at TEXT,
	conflict_resolved_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(node_type);
CREATE INDEX IF NOT EXISTS idx_nodes_created ON nodes(created_at);
CREATE INDEX IF NOT EXISTS idx_nodes_deleted ON nodes(deleted_at);

CREATE TABLE IF NOT EXISTS edges (
	id TEXT PRIMARY KEY,
	edge_type TEXT NOT NULL,
	source_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	label TEXT,
	weight REAL NOT NULL DEFAULT 1.0,
	directed INTEGER NOT NULL DEFAULT 1,
	sequence_order INTEGER,
	channel TEXT,
	timestamp TEXT,
	subject TEXT,
	created_at TEXT NOT NULL,
	sync_version INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
CREATE INDEX IF NOT EXISTS idx_edges_type ON edges(edge_type);
`

// SQLiteStore implements Store on top of an embedded SQLite database. A mutex
// serializes mutations so the instance is single-writer; reads go straight to
// the connection pool.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if necessary) the database at path and applies
// the schema. Use ":memory:" for an in-process database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

const nodeColumns = `id, node_type, name, content, summary,
	latitude, longitude, place_name, address,
	created_at, modified_at, due_at, completed_at, event_start, event_end,
	folder, tags, status, priority, importance, sort_order,
	source, source_id, source_url,
	deleted_at, version, sync_version, last_synced_at, conflict_resolved_at`

func (s *SQLiteStore) CreateNode(ctx context.Context, node *types.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags, err := json.Marshal(node.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO nodes (`+nodeColumns+`) VALUES
		(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		node.ID, node.NodeType, node.Name, node.Content, node.Summary,
		node.Latitude, node.Longitude, node.PlaceName, node.Address,
		formatTime(node.CreatedAt), formatTime(node.ModifiedAt),
		formatTimePtr(node.DueAt), formatTimePtr(node.CompletedAt),
		formatTimePtr(node.EventStart), formatTimePtr(node.EventEnd),
		node.Folder, string(tags), node.Status,
		node.Priority, node.Importance, node.SortOrder,
		node.Source, node.SourceID, node.SourceURL,
		formatTimePtr(node.DeletedAt), node.Version, node.SyncVersion,
		formatTimePtr(node.LastSyncedAt), formatTimePtr(node.ConflictResolvedAt))
	if err != nil {
		return fmt.Errorf("insert node %s: %w", node.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetNode(ctx context.Context, id string) (*types.Node, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE id = ? AND deleted_at IS NULL`, id)
	node, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, types.NotFoundf("node %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	return node, nil
}

// UpdateNode writes the record conditionally on the stored version still
// matching expectedVersion, so concurrent stale writers lose with ErrConflict
// instead of silently overwriting each other.
func (s *SQLiteStore) UpdateNode(ctx context.Context, node *types.Node, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags, err := json.Marshal(node.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE nodes SET
		node_type=?, name=?, content=?, summary=?,
		latitude=?, longitude=?, place_name=?, address=?,
		created_at=?, modified_at=?, due_at=?, completed_at=?, event_start=?, event_end=?,
		folder=?, tags=?, status=?, priority=?, importance=?, sort_order=?,
		source=?, source_id=?, source_url=?,
		deleted_at=?, version=?, sync_version=?, last_synced_at=?, conflict_resolved_at=?
		WHERE id=? AND version=? AND deleted_at IS NULL`,
		node.NodeType, node.Name, node.Content, node.Summary,
		node.Latitude, node.Longitude, node.PlaceName, node.Address,
		formatTime(node.CreatedAt), formatTime(node.ModifiedAt),
		formatTimePtr(node.DueAt), formatTimePtr(node.CompletedAt),
		formatTimePtr(node.EventStart), formatTimePtr(node.EventEnd),
		node.Folder, string(tags), node.Status,
		node.Priority, node.Importance, node.SortOrder,
		node.Source, node.SourceID, node.SourceURL,
		formatTimePtr(node.DeletedAt), node.Version, node.SyncVersion,
		formatTimePtr(node.LastSyncedAt), formatTimePtr(node.ConflictResolvedAt),
		node.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update node %s: %w", node.ID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Zero rows means either the node is gone or someone else won the race.
	var current int64
	err = s.db.QueryRowContext(ctx,
		`SELECT version FROM nodes WHERE id = ? AND deleted_at IS NULL`, node.ID).Scan(&current)
	if err == sql.ErrNoRows {
		return types.NotFoundf("node %s", node.ID)
	}
	if err != nil {
		return fmt.Errorf("update node %s: %w", node.ID, err)
	}
	return fmt.Errorf("%w: node %s version %d, expected %d",
		types.ErrConflict, node.ID, expectedVersion, current)
}

func (s *SQLiteStore) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE nodes SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("delete node %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NotFoundf("node %s", id)
	}
	return nil
}

func (s *SQLiteStore) GetAllNodes(ctx context.Context, limit, offset int, includeDeleted bool) ([]*types.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY created_at, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, offset)
	}
	return s.queryNodes(ctx, query, args...)
}

func (s *SQLiteStore) CountNodes(ctx context.Context, includeDeleted bool) (int, error) {
	query := `SELECT COUNT(*) FROM nodes`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) GetNodesByDateRange(ctx context.Context, field DateField, start, end time.Time) ([]*types.Node, error) {
	if !ValidDateField(field) {
		return nil, types.Invalidf("unknown date field %q", field)
	}
	query := fmt.Sprintf(`SELECT %s FROM nodes
		WHERE deleted_at IS NULL AND %s >= ? AND %s <= ?
		ORDER BY %s, id`, nodeColumns, field, field, field)
	return s.queryNodes(ctx, query, formatTime(start), formatTime(end))
}

func (s *SQLiteStore) GetNodesWithLocation(ctx context.Context) ([]*types.Node, error) {
	return s.queryNodes(ctx, `SELECT `+nodeColumns+` FROM nodes
		WHERE deleted_at IS NULL AND latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY created_at, id`)
}

func (s *SQLiteStore) SearchNodes(ctx context.Context, text string) ([]*types.Node, error) {
	pattern := "%" + text + "%"
	return s.queryNodes(ctx, `SELECT `+nodeColumns+` FROM nodes
		WHERE deleted_at IS NULL AND (name LIKE ? OR content LIKE ? OR summary LIKE ?)
		ORDER BY created_at, id`, pattern, pattern, pattern)
}

// QueryNodes executes a compiled filter fragment against the nodes table.
// The fragment is the WhereClause of a types.CompiledFilter.
func (s *SQLiteStore) QueryNodes(ctx context.Context, where string, params []any) ([]*types.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE ` + where + ` ORDER BY created_at, id`
	return s.queryNodes(ctx, query, params...)
}

func (s *SQLiteStore) queryNodes(ctx context.Context, query string, args ...any) ([]*types.Node, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*types.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return nodes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (*types.Node, error) {
	var (
		n                                     types.Node
		content, summary, placeName, address  sql.NullString
		latitude, longitude                   sql.NullFloat64
		createdAt, modifiedAt                 string
		dueAt, completedAt, evStart, evEnd    sql.NullString
		folder, status, tags                  sql.NullString
		source, sourceID, sourceURL           sql.NullString
		deletedAt, lastSynced, conflictResolv sql.NullString
	)
	err := row.Scan(&n.ID, &n.NodeType, &n.Name, &content, &summary,
		&latitude, &longitude, &placeName, &address,
		&createdAt, &modifiedAt, &dueAt, &completedAt, &evStart, &evEnd,
		&folder, &tags, &status, &n.Priority, &n.Importance, &n.SortOrder,
		&source, &sourceID, &sourceURL,
		&deletedAt, &n.Version, &n.SyncVersion, &lastSynced, &conflictResolv)
	if err != nil {
		return nil, err
	}

	n.Content = nullString(content)
	n.Summary = nullString(summary)
	if latitude.Valid {
		n.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		n.Longitude = &longitude.Float64
	}
	n.PlaceName = nullString(placeName)
	n.Address = nullString(address)
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if n.ModifiedAt, err = parseTime(modifiedAt); err != nil {
		return nil, err
	}
	if n.DueAt, err = nullTime(dueAt); err != nil {
		return nil, err
	}
	if n.CompletedAt, err = nullTime(completedAt); err != nil {
		return nil, err
	}
	if n.EventStart, err = nullTime(evStart); err != nil {
		return nil, err
	}
	if n.EventEnd, err = nullTime(evEnd); err != nil {
		return nil, err
	}
	n.Folder = nullString(folder)
	n.Status = nullString(status)
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &n.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	n.Source = nullString(source)
	n.SourceID = nullString(sourceID)
	n.SourceURL = nullString(sourceURL)
	if n.DeletedAt, err = nullTime(deletedAt); err != nil {
		return nil, err
	}
	if n.LastSyncedAt, err = nullTime(lastSynced); err != nil {
		return nil, err
	}
	if n.ConflictResolvedAt, err = nullTime(conflictResolv); err != nil {
		return nil, err
	}
	return &n, nil
}

const edgeColumns = `id, edge_type, source_id, target_id, label, weight, directed,
	sequence_order, channel, timestamp, subject, created_at, sync_version`

func (s *SQLiteStore) CreateEdge(ctx context.Context, edge *types.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO edges (`+edgeColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		edge.ID, string(edge.EdgeType), edge.SourceID, edge.TargetID,
		edge.Label, edge.Weight, edge.Directed, edge.SequenceOrder,
		edge.Channel, formatTimePtr(edge.Timestamp), edge.Subject,
		formatTime(edge.CreatedAt), edge.SyncVersion)
	if err != nil {
		return fmt.Errorf("insert edge %s: %w", edge.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetEdge(ctx context.Context, id string) (*types.Edge, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+edgeColumns+` FROM edges WHERE id = ?`, id)
	edge, err := scanEdge(row)
	if err == sql.ErrNoRows {
		return nil, types.NotFoundf("edge %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get edge %s: %w", id, err)
	}
	return edge, nil
}

func (s *SQLiteStore) UpdateEdge(ctx context.Context, edge *types.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE edges SET
		edge_type=?, source_id=?, target_id=?, label=?, weight=?, directed=?,
		sequence_order=?, channel=?, timestamp=?, subject=?, created_at=?, sync_version=?
		WHERE id=?`,
		string(edge.EdgeType), edge.SourceID, edge.TargetID, edge.Label,
		edge.Weight, edge.Directed, edge.SequenceOrder, edge.Channel,
		formatTimePtr(edge.Timestamp), edge.Subject, formatTime(edge.CreatedAt),
		edge.SyncVersion, edge.ID)
	if err != nil {
		return fmt.Errorf("update edge %s: %w", edge.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NotFoundf("edge %s", edge.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteEdge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete edge %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NotFoundf("edge %s", id)
	}
	return nil
}

func (s *SQLiteStore) GetAllEdges(ctx context.Context, limit, offset int) ([]*types.Edge, error) {
	query := `SELECT ` + edgeColumns + ` FROM edges ORDER BY created_at, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, offset)
	}
	return s.queryEdges(ctx, query, args...)
}

func (s *SQLiteStore) CountEdges(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) GetEdgesByType(ctx context.Context, edgeType types.EdgeType) ([]*types.Edge, error) {
	return s.queryEdges(ctx, `SELECT `+edgeColumns+` FROM edges WHERE edge_type = ? ORDER BY created_at, id`,
		string(edgeType))
}

func (s *SQLiteStore) GetOutgoingEdges(ctx context.Context, nodeID string, edgeType *types.EdgeType) ([]*types.Edge, error) {
	query := `SELECT ` + edgeColumns + ` FROM edges WHERE source_id = ?`
	args := []any{nodeID}
	if edgeType != nil {
		query += ` AND edge_type = ?`
		args = append(args, string(*edgeType))
	}
	return s.queryEdges(ctx, query+` ORDER BY created_at, id`, args...)
}

func (s *SQLiteStore) GetIncomingEdges(ctx context.Context, nodeID string, edgeType *types.EdgeType) ([]*types.Edge, error) {
	query := `SELECT ` + edgeColumns + ` FROM edges WHERE target_id = ?`
	args := []any{nodeID}
	if edgeType != nil {
		query += ` AND edge_type = ?`
		args = append(args, string(*edgeType))
	}
	return s.queryEdges(ctx, query+` ORDER BY created_at, id`, args...)
}

func (s *SQLiteStore) GetConnectedEdges(ctx context.Context, nodeID string, edgeType *types.EdgeType) ([]*types.Edge, error) {
	query := `SELECT ` + edgeColumns + ` FROM edges WHERE (source_id = ? OR target_id = ?)`
	args := []any{nodeID, nodeID}
	if edgeType != nil {
		query += ` AND edge_type = ?`
		args = append(args, string(*edgeType))
	}
	return s.queryEdges(ctx, query+` ORDER BY created_at, id`, args...)
}

func (s *SQLiteStore) queryEdges(ctx context.Context, query string, args ...any) ([]*types.Edge, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var edges []*types.Edge
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}
	return edges, nil
}

func scanEdge(row scanner) (*types.Edge, error) {
	var (
		e                       types.Edge
		edgeType                string
		label, channel, subject sql.NullString
		seqOrder                sql.NullInt64
		timestamp               sql.NullString
		createdAt               string
	)
	err := row.Scan(&e.ID, &edgeType, &e.SourceID, &e.TargetID, &label,
		&e.Weight, &e.Directed, &seqOrder, &channel, &timestamp, &subject,
		&createdAt, &e.SyncVersion)
	if err != nil {
		return nil, err
	}
	e.EdgeType = types.EdgeType(edgeType)
	e.Label = nullString(label)
	if seqOrder.Valid {
		v := int(seqOrder.Int64)
		e.SequenceOrder = &v
	}
	e.Channel = nullString(channel)
	e.Subject = nullString(subject)
	if e.Timestamp, err = nullTime(timestamp); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
