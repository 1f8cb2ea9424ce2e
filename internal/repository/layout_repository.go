package repository // repository defines data access for screen layouts

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iliyamo/seating-designer/internal/model"
)

// LayoutRepo stores one row record per layout row.  A screen's layout is
// always replaced as a whole: the old rows are deleted and the new ones
// inserted in one transaction.
type LayoutRepo struct {
	db *sql.DB
}

// NewLayoutRepo constructs a LayoutRepo with the given DB handle.
func NewLayoutRepo(db *sql.DB) *LayoutRepo {
	return &LayoutRepo{db: db}
}

// Fetch returns the stored rows of a screen in position order.  A screen
// without a layout yields an empty slice.
func (r *LayoutRepo) Fetch(ctx context.Context, screenID string) ([]model.Row, error) {
	const q = `SELECT label, tier, seats
	           FROM screen_layout_rows
	           WHERE screen_id = ?
	           ORDER BY position`
	rows, err := r.db.QueryContext(ctx, q, screenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Row{}
	for rows.Next() {
		var (
			row   model.Row
			tier  string
			seats []byte
		)
		if err := rows.Scan(&row.Label, &tier, &seats); err != nil {
			return nil, err
		}
		row.Tier = model.Tier(tier)
		if err := json.Unmarshal(seats, &row.Seats); err != nil {
			return nil, fmt.Errorf("%w: row %s of screen %s: %v", ErrCorruptLayout, row.Label, screenID, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Replace overwrites the layout of a screen with rows, in one transaction.
func (r *LayoutRepo) Replace(ctx context.Context, screenID string, rows []model.Row) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM screen_layout_rows WHERE screen_id = ?`, screenID); err != nil {
		return err
	}
	if len(rows) > 0 {
		query, args, berr := bulkInsert(screenID, rows)
		if berr != nil {
			return berr
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// bulkInsert builds a single multi-row INSERT for the layout rows.
func bulkInsert(screenID string, rows []model.Row) (string, []interface{}, error) {
	var b strings.Builder
	b.WriteString(`INSERT INTO screen_layout_rows (screen_id, position, label, tier, seats) VALUES `)
	args := make([]interface{}, 0, len(rows)*5)
	for i, row := range rows {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		seats, err := json.Marshal(row.Seats)
		if err != nil {
			return "", nil, err
		}
		args = append(args, screenID, i, row.Label, string(row.Tier), string(seats))
	}
	return b.String(), args, nil
}
