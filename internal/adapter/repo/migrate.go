package repo

import (
	"context"
	"fmt"

	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// Migrate applies the schema DDL. Statements are idempotent, so running at
// every startup is safe.
func Migrate(ctx context.Context, sql infra.SQLExecutor) error {
	for _, stmt := range sqlinline.Schema() {
		if _, err := sql.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
