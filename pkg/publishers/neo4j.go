package publishers

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/samvad-hq/bacon-oracle/pkg/oracle"
)

// mergeChainCypher stores a connection chain as (:Person)-[:APPEARED_IN]->(:Movie) edges.
const mergeChainCypher = `
UNWIND range(0, size($movies) - 1) AS i
MERGE (a:Person {name: $people[i]})
MERGE (b:Person {name: $people[i + 1]})
MERGE (m:Movie {title: $movies[i]})
MERGE (a)-[:APPEARED_IN]->(m)
MERGE (b)-[:APPEARED_IN]->(m)`

// cypherWriter runs a write statement.
type cypherWriter interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) error
	Close(ctx context.Context) error
}

// neo4jPublisher writes graph events into a Neo4j database. Other kinds are skipped.
type neo4jPublisher struct {
	id     string
	typ    string
	writer cypherWriter
	log    Logger
}

func newNeo4jPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Neo4j == nil {
		return nil, fmt.Errorf("publisher %q missing neo4j configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	auth := neo4j.NoAuth()
	if cfg.Neo4j.Username != "" {
		auth = neo4j.BasicAuth(cfg.Neo4j.Username, cfg.Neo4j.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	return &neo4jPublisher{
		id:     cfg.ID,
		typ:    TypeNeo4j,
		writer: &neo4jWriter{driver: driver, database: cfg.Neo4j.Database},
		log:    ensureLogger(log),
	}, nil
}

func (n *neo4jPublisher) ID() string   { return n.id }
func (n *neo4jPublisher) Type() string { return n.typ }

// Publish merges the people and movies of a graph event.
func (n *neo4jPublisher) Publish(ctx context.Context, evt Event) error {
	if evt.Kind != string(oracle.KindGraph) || len(evt.Path) < 3 {
		n.log.DebugObj("neo4j publisher skipped event", "publisher_neo4j_skip", map[string]any{
			"publisher_id": n.id,
			"kind":         evt.Kind,
		})
		return nil
	}

	chain := oracle.Graph{Path: evt.Path}
	params := map[string]any{
		"people": chain.People(),
		"movies": chain.Movies(),
	}
	if err := n.writer.ExecuteWrite(ctx, mergeChainCypher, params); err != nil {
		return fmt.Errorf("merge chain into neo4j: %w", err)
	}
	return nil
}

func (n *neo4jPublisher) Close(ctx context.Context) error {
	return n.writer.Close(ctx)
}

type neo4jWriter struct {
	driver   neo4j.DriverWithContext
	database string
}

func (w *neo4jWriter) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) error {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: w.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func (w *neo4jWriter) Close(ctx context.Context) error {
	return w.driver.Close(ctx)
}
