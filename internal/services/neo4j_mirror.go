package services

import (
	"context"
	"fmt"

	"graphv/internal/models"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// GraphMirror receives a copy of every ingested dataset.
type GraphMirror interface {
	Mirror(ctx context.Context, ds *models.Dataset, nodes []models.Node, edges []models.Edge) error
	Forget(ctx context.Context, ds *models.Dataset) error
	Close(ctx context.Context) error
}

const mirrorBatchSize = 500

// Neo4jMirror exports datasets to Neo4j as (:GraphNode)-[:LINKS]->(:GraphNode),
// keyed by dataset hash, using batched UNWIND queries.
type Neo4jMirror struct {
	driver neo4j.DriverWithContext
	log    *zap.Logger
}

// NewNeo4jMirror connects to Neo4j and ensures the lookup index exists.
func NewNeo4jMirror(ctx context.Context, uri, user, password string, log *zap.Logger) (*Neo4jMirror, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("neo4j unreachable: %w", err)
	}
	m := &Neo4jMirror{driver: driver, log: log}
	for _, q := range []string{
		"CREATE INDEX graph_node_name IF NOT EXISTS FOR (n:GraphNode) ON (n.dataset, n.name)",
		"CREATE INDEX graph_node_id IF NOT EXISTS FOR (n:GraphNode) ON (n.dataset, n.node_id)",
	} {
		if err := m.run(ctx, q, nil); err != nil {
			driver.Close(ctx)
			return nil, fmt.Errorf("create neo4j index: %w", err)
		}
	}
	return m, nil
}

func (m *Neo4jMirror) run(ctx context.Context, cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(ctx, m.driver, cypher, params, neo4j.EagerResultTransformer)
	return err
}

const (
	cypherForget = `MATCH (n:GraphNode {dataset: $dataset}) DETACH DELETE n`

	cypherNodes = `UNWIND $batch AS row
		MERGE (n:GraphNode {dataset: $dataset, node_id: row.id})
		SET n += row.props, n.name = row.name, n.position = row.position`

	// Edges attach to the first node carrying each endpoint name, as in the
	// rendered graph; unresolved endpoints are skipped.
	cypherEdges = `UNWIND $batch AS row
		CALL {
			WITH row
			MATCH (a:GraphNode {dataset: $dataset, name: row.src})
			RETURN a ORDER BY a.position LIMIT 1
		}
		CALL {
			WITH row
			MATCH (b:GraphNode {dataset: $dataset, name: row.dst})
			RETURN b ORDER BY b.position LIMIT 1
		}
		CREATE (a)-[r:LINKS]->(b)
		SET r += row.props, r.type = row.type`
)

// Mirror replaces the dataset's subgraph in Neo4j.
func (m *Neo4jMirror) Mirror(ctx context.Context, ds *models.Dataset, nodes []models.Node, edges []models.Edge) error {
	if err := m.Forget(ctx, ds); err != nil {
		return err
	}
	for _, batch := range chunk(nodeRows(nodes), mirrorBatchSize) {
		if err := m.run(ctx, cypherNodes, map[string]any{"dataset": ds.Hash, "batch": batch}); err != nil {
			return fmt.Errorf("mirror nodes: %w", err)
		}
	}
	for _, batch := range chunk(edgeRows(edges), mirrorBatchSize) {
		if err := m.run(ctx, cypherEdges, map[string]any{"dataset": ds.Hash, "batch": batch}); err != nil {
			return fmt.Errorf("mirror edges: %w", err)
		}
	}
	m.log.Info("dataset mirrored to neo4j",
		zap.String("dataset", ds.Hash),
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(edges)),
	)
	return nil
}

// Forget removes the dataset's subgraph.
func (m *Neo4jMirror) Forget(ctx context.Context, ds *models.Dataset) error {
	if err := m.run(ctx, cypherForget, map[string]any{"dataset": ds.Hash}); err != nil {
		return fmt.Errorf("forget dataset: %w", err)
	}
	return nil
}

// Close releases the underlying Neo4j driver resources.
func (m *Neo4jMirror) Close(ctx context.Context) error {
	return m.driver.Close(ctx)
}

func nodeRows(nodes []models.Node) []map[string]any {
	rows := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		rows[i] = map[string]any{
			"id":       n.NodeID,
			"name":     n.Name,
			"position": n.Position,
			"props":    props(n.Attributes),
		}
	}
	return rows
}

func edgeRows(edges []models.Edge) []map[string]any {
	rows := make([]map[string]any, len(edges))
	for i, e := range edges {
		rows[i] = map[string]any{
			"src":   e.Src,
			"dst":   e.Dst,
			"type":  e.EdgeType,
			"props": props(e.Attributes),
		}
	}
	return rows
}

// props keeps non-empty cells; Neo4j drops null-valued properties anyway.
func props(attrs models.Attributes) map[string]any {
	p := make(map[string]any, len(attrs))
	for _, a := range attrs {
		if isEmptyValue(a.Value) {
			continue
		}
		p[a.Name] = a.Value
	}
	return p
}

func chunk(rows []map[string]any, size int) [][]map[string]any {
	var out [][]map[string]any
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}
