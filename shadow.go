package gpkgcheck

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nvigis/gpkgcheck/internal/schema"
)

// shadowRebuild recreates a table under its (overlay-augmented) model schema
// inside the given transaction: rename the original aside, create the
// replacement, copy all rows by position, drop the original. The caller owns
// the transaction and must roll it back; the rebuilt table exists only to be
// inspected.
func shadowRebuild(ctx context.Context, tx *sql.Tx, t *schema.Table) error {
	old := t.Name + "_old"

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", t.Name, old)); err != nil {
		return fmt.Errorf("failed to rename %s: %w", t.Name, err)
	}
	if _, err := tx.ExecContext(ctx, t.CreateStatement()); err != nil {
		return fmt.Errorf("failed to recreate %s: %w", t.Name, err)
	}
	// Relies on the model preserving column order: the INSERT matches
	// columns by position.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s SELECT * FROM %s", t.Name, old)); err != nil {
		return fmt.Errorf("failed to copy rows into %s: %w", t.Name, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", old)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", old, err)
	}

	return nil
}
