//go:build cgo

package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/seamcheck/seamcheck/internal/contract"
	"github.com/seamcheck/seamcheck/internal/ir"
)

// KuzuExporter writes the contract graph into a KuzuDB database so
// results can be queried with Cypher. It requires CGO because the
// go-kuzu driver wraps KuzuDB's C library.
type KuzuExporter struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// NewKuzuExporter opens (or creates) a file-based KuzuDB at dbPath.
func NewKuzuExporter(dbPath string) (*KuzuExporter, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuExporter{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (e *KuzuExporter) Close() error {
	if e.conn != nil {
		e.conn.Close()
	}
	if e.db != nil {
		e.db.Close()
	}
	return nil
}

// ddlStatements defines the Cypher DDL executed by InitSchema. Node
// tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS GraphNode(
		id INT64,
		kind STRING,
		name STRING,
		file STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Schema(
		id STRING,
		name STRING,
		origin STRING,
		file STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Chain(
		id STRING,
		name STRING,
		kind STRING,
		direction STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS CALLS(FROM GraphNode TO GraphNode)`,
	`CREATE REL TABLE IF NOT EXISTS FLOWS_TO(FROM GraphNode TO GraphNode)`,
	`CREATE REL TABLE IF NOT EXISTS IMPORTS(FROM GraphNode TO GraphNode)`,
	`CREATE REL TABLE IF NOT EXISTS RETURNS_TO(FROM GraphNode TO GraphNode)`,
	`CREATE REL TABLE IF NOT EXISTS HAS_LINK(FROM Chain TO GraphNode, position INT64)`,
	`CREATE REL TABLE IF NOT EXISTS CHECKS(FROM Chain TO Schema, severity STRING, mismatches INT64)`,
}

// InitSchema creates all node and relationship tables if they do not
// exist.
func (e *KuzuExporter) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := e.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ExportGraph writes every node and edge of g.
func (e *KuzuExporter) ExportGraph(_ context.Context, g *ir.Graph) error {
	for i := 0; i < g.NodeCount(); i++ {
		id := ir.NodeID(i)
		node, _ := g.Node(id)
		name, file := nodeDescriptor(node)
		err := e.exec(
			"CREATE (n:GraphNode {id: $id, kind: $kind, name: $name, file: $file})",
			map[string]any{
				"id":   int64(id),
				"kind": string(node.Kind()),
				"name": name,
				"file": file,
			},
		)
		if err != nil {
			return err
		}
	}

	for _, edge := range g.Edges() {
		rel := relTable(edge.Payload.Kind())
		err := e.exec(
			fmt.Sprintf(`MATCH (a:GraphNode {id: $src}), (b:GraphNode {id: $dst})
				CREATE (a)-[:%s]->(b)`, rel),
			map[string]any{"src": int64(edge.From), "dst": int64(edge.To)},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ExportChains writes chains, their link memberships, and one CHECKS row
// per contract.
func (e *KuzuExporter) ExportChains(_ context.Context, chains []contract.DataChain) error {
	for _, c := range chains {
		err := e.exec(
			"CREATE (c:Chain {id: $id, name: $name, kind: $kind, direction: $dir})",
			map[string]any{
				"id":   c.ID,
				"name": c.Name,
				"kind": string(c.Type),
				"dir":  string(c.Direction),
			},
		)
		if err != nil {
			return err
		}

		for pos, l := range c.Links {
			if l.Node == ir.InvalidNode {
				continue
			}
			err := e.exec(
				`MATCH (c:Chain {id: $cid}), (n:GraphNode {id: $nid})
					CREATE (c)-[:HAS_LINK {position: $pos}]->(n)`,
				map[string]any{"cid": c.ID, "nid": int64(l.Node), "pos": int64(pos)},
			)
			if err != nil {
				return err
			}
		}

		for _, ct := range c.Contracts {
			schemaID := c.ID + "/" + ct.ToLink
			err := e.exec(
				"CREATE (s:Schema {id: $id, name: $name, origin: $origin, file: $file})",
				map[string]any{
					"id":     schemaID,
					"name":   ct.ToSchema.Name,
					"origin": string(ct.ToSchema.Type),
					"file":   ct.ToSchema.Location.File,
				},
			)
			if err != nil {
				return err
			}
			err = e.exec(
				`MATCH (c:Chain {id: $cid}), (s:Schema {id: $sid})
					CREATE (c)-[:CHECKS {severity: $sev, mismatches: $n}]->(s)`,
				map[string]any{
					"cid": c.ID,
					"sid": schemaID,
					"sev": string(ct.Severity),
					"n":   int64(len(ct.Mismatches)),
				},
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *KuzuExporter) exec(cypher string, params map[string]any) error {
	stmt, err := e.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := e.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

func relTable(kind ir.EdgeKind) string {
	switch kind {
	case ir.EdgeKindCall:
		return "CALLS"
	case ir.EdgeKindDataFlow:
		return "FLOWS_TO"
	case ir.EdgeKindImport:
		return "IMPORTS"
	default:
		return "RETURNS_TO"
	}
}

func nodeDescriptor(node ir.GraphNode) (name, file string) {
	switch n := node.(type) {
	case ir.ModuleNode:
		return n.Path, n.Path
	case ir.FunctionNode:
		return n.Name, n.File
	case ir.MethodNode:
		return n.Name, ""
	case ir.ClassNode:
		return n.Name, n.File
	case ir.RouteNode:
		return n.Method + " " + n.Path, n.Location.File
	case ir.SchemaNode:
		return n.Schema.Name, n.Schema.Location.File
	default:
		return "", ""
	}
}
