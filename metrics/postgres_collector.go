package metrics

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresCollector implements the Collector interface for the PostgreSQL store
type PostgresCollector struct {
	DB *sql.DB
}

func NewPostgresCollector(db *sql.DB) *PostgresCollector {
	return &PostgresCollector{DB: db}
}

func (c *PostgresCollector) GetReceivedCounts(ctx context.Context) (map[string]int64, error) {
	return c.counts(ctx, "SELECT id, total_received FROM webhook_configs")
}

func (c *PostgresCollector) GetAuditCounts(ctx context.Context) (map[string]int64, error) {
	return c.counts(ctx, "SELECT webhook_id, COUNT(*) FROM webhook_results GROUP BY webhook_id")
}

func (c *PostgresCollector) counts(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			id string
			n  int64
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}

	return counts, nil
}
