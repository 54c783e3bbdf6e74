// Package neuprint reads optic-lobe column data from a neuPrint-style
// Neo4j database. It supplies the raw rows and the full anatomical
// lattice; normalization into canonical records belongs to the
// hexgrid adapter.
package neuprint

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/opticmap/server/internal/hexgrid"
)

// Config contains Neo4j connection settings.
type Config struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Dataset  string `yaml:"dataset"`
}

// Client is a read-only neuPrint query client.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	dataset  string
	log      *zap.Logger
}

// NewClient connects to the database and verifies connectivity.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify neo4j connectivity: %w", err)
	}

	return &Client{
		driver:   driver,
		database: cfg.Database,
		dataset:  cfg.Dataset,
		log:      log,
	}, nil
}

// Close releases the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// Dataset returns the configured dataset identifier.
func (c *Client) Dataset() string {
	return c.dataset
}

const allColumnsCypher = `
MATCH (c:Column {dataset: $dataset})
RETURN c.roi AS region, c.side AS side, c.hex1 AS col1, c.hex2 AS col2`

const observedRowsCypher = `
MATCH (n:Neuron {dataset: $dataset, type: $type})-[a:AssignedTo]->(c:Column)
RETURN c.roi AS region, c.side AS side, c.hex1 AS col1, c.hex2 AS col2,
       sum(a.pre) AS pre_count, sum(a.post) AS post_count,
       count(DISTINCT n) AS neuron_count, head(collect(c.name)) AS label`

// AllPossibleColumns returns every addressable column of the dataset,
// independent of the current neuron type. Rows with unrecognized
// region/side or unparsable coordinates are skipped.
func (c *Client) AllPossibleColumns(ctx context.Context) ([]hexgrid.ColumnCoord, error) {
	rows, err := c.readRows(ctx, allColumnsCypher, map[string]any{"dataset": c.dataset})
	if err != nil {
		return nil, fmt.Errorf("failed to query column lattice: %w", err)
	}

	coords := make([]hexgrid.ColumnCoord, 0, len(rows))
	for _, row := range rows {
		coord, err := coordFromRow(row)
		if err != nil {
			c.log.Warn("skipping lattice row", zap.Error(err))
			continue
		}
		coords = append(coords, coord)
	}
	return coords, nil
}

// ObservedRecords returns raw per-column rows for a neuron type,
// unnormalized; the hexgrid adapter owns canonicalization.
func (c *Client) ObservedRecords(ctx context.Context, neuronType string) ([]map[string]any, error) {
	rows, err := c.readRows(ctx, observedRowsCypher, map[string]any{
		"dataset": c.dataset,
		"type":    neuronType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query columns for type %q: %w", neuronType, err)
	}
	return rows, nil
}

func (c *Client) readRows(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		var rows []map[string]any
		for res.Next(ctx) {
			rows = append(rows, res.Record().AsMap())
		}
		return rows, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return out.([]map[string]any), nil
}

func coordFromRow(row map[string]any) (hexgrid.ColumnCoord, error) {
	var coord hexgrid.ColumnCoord

	regionRaw, _ := row["region"].(string)
	region, ok := hexgrid.ParseRegion(regionRaw)
	if !ok {
		return coord, fmt.Errorf("unrecognized region %q", regionRaw)
	}
	sideRaw, _ := row["side"].(string)
	side, ok := hexgrid.ParseSide(sideRaw)
	if !ok {
		return coord, fmt.Errorf("unrecognized side %q", sideRaw)
	}
	col1, err := hexgrid.ParseCoordinate(row["col1"])
	if err != nil {
		return coord, fmt.Errorf("col1: %w", err)
	}
	col2, err := hexgrid.ParseCoordinate(row["col2"])
	if err != nil {
		return coord, fmt.Errorf("col2: %w", err)
	}

	coord.Region = region
	coord.Side = side
	coord.Col1 = col1
	coord.Col2 = col2
	return coord, nil
}
