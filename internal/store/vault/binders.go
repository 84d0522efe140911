package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/binderapp/binder-server/internal/domain"
)

// ErrBinderNotFound is returned when a binder id has no vault row.
var ErrBinderNotFound = errors.New("binder not found in vault")

// binderColumns is the ordered list of columns selected in binder queries.
// Must match the scan order in scanBinder.
const binderColumns = `id, owner_id, name, description, slug, public,
	grid_rows, grid_cols, sort_order, created_at, updated_at, deleted_at`

// scanBinder scans a row into a domain.Binder without its cards.
func scanBinder(scanner interface{ Scan(dest ...any) error }) (*domain.Binder, error) {
	var b domain.Binder

	var (
		description sql.NullString
		slug        sql.NullString
		public      int
		sortOrder   string
		createdAt   string
		updatedAt   string
		deletedAt   sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&b.OwnerID,
		&b.Name,
		&description,
		&slug,
		&public,
		&b.Settings.Rows,
		&b.Settings.Columns,
		&sortOrder,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		b.Description = description.String
	}
	if slug.Valid {
		b.Slug = slug.String
	}
	b.Public = public != 0
	b.Settings.SortOrder = domain.SortOrder(sortOrder)

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	b.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// SaveBinder upserts a binder snapshot including its slot map.
// The card rows are replaced wholesale; diffing positions isn't worth it
// at binder sizes.
func (v *Vault) SaveBinder(ctx context.Context, binder *domain.Binder) error {
	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `
		INSERT INTO binders (id, owner_id, name, description, slug, public,
			grid_rows, grid_cols, sort_order, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			name = excluded.name,
			description = excluded.description,
			slug = excluded.slug,
			public = excluded.public,
			grid_rows = excluded.grid_rows,
			grid_cols = excluded.grid_cols,
			sort_order = excluded.sort_order,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`,
		binder.ID,
		binder.OwnerID,
		binder.Name,
		nullString(binder.Description),
		nullString(binder.Slug),
		boolToInt(binder.Public),
		binder.Settings.Rows,
		binder.Settings.Columns,
		string(binder.Settings.SortOrder),
		formatTime(binder.CreatedAt),
		formatTime(binder.UpdatedAt),
		nullTimeString(binder.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert binder: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM binder_cards WHERE binder_id = ?`, binder.ID); err != nil {
		return fmt.Errorf("clear cards: %w", err)
	}

	for pos, ref := range binder.Cards {
		if ref.IsEmpty() {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO binder_cards (binder_id, position, card_id, condition, notes, quantity, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			binder.ID,
			pos,
			ref.CardID,
			nullString(string(ref.Condition)),
			nullString(ref.Notes),
			ref.Quantity,
			formatTime(ref.AddedAt),
		)
		if err != nil {
			return fmt.Errorf("insert card at %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// GetBinder loads a binder snapshot with its cards.
func (v *Vault) GetBinder(ctx context.Context, id string) (*domain.Binder, error) {
	row := v.db.QueryRowContext(ctx,
		`SELECT `+binderColumns+` FROM binders WHERE id = ?`, id)

	binder, err := scanBinder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBinderNotFound
		}
		return nil, fmt.Errorf("scan binder: %w", err)
	}

	if err := v.loadCards(ctx, binder); err != nil {
		return nil, err
	}

	return binder, nil
}

// ListBinders returns all vault snapshots sorted by update time, newest
// first. Soft-deleted binders are included; the vault is a mirror, not a
// view.
func (v *Vault) ListBinders(ctx context.Context) ([]*domain.Binder, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT `+binderColumns+` FROM binders ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query binders: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var binders []*domain.Binder
	for rows.Next() {
		binder, err := scanBinder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan binder: %w", err)
		}
		binders = append(binders, binder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate binders: %w", err)
	}

	for _, binder := range binders {
		if err := v.loadCards(ctx, binder); err != nil {
			return nil, err
		}
	}

	return binders, nil
}

// DeleteBinder removes a snapshot and its cards. Deleting a missing
// binder is a no-op.
func (v *Vault) DeleteBinder(ctx context.Context, id string) error {
	if _, err := v.db.ExecContext(ctx, `DELETE FROM binders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete binder: %w", err)
	}
	return nil
}

// BinderCount returns the number of snapshots in the vault.
func (v *Vault) BinderCount(ctx context.Context) (int, error) {
	var count int
	if err := v.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM binders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count binders: %w", err)
	}
	return count, nil
}

// loadCards populates the sparse slot map for a binder.
func (v *Vault) loadCards(ctx context.Context, binder *domain.Binder) error {
	rows, err := v.db.QueryContext(ctx, `
		SELECT position, card_id, condition, notes, quantity, added_at
		FROM binder_cards WHERE binder_id = ?`, binder.ID)
	if err != nil {
		return fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	binder.Cards = make(map[int]domain.CardRef)

	for rows.Next() {
		var (
			pos       int
			ref       domain.CardRef
			condition sql.NullString
			notes     sql.NullString
			addedAt   string
		)
		if err := rows.Scan(&pos, &ref.CardID, &condition, &notes, &ref.Quantity, &addedAt); err != nil {
			return fmt.Errorf("scan card: %w", err)
		}

		if condition.Valid {
			ref.Condition = domain.Condition(condition.String)
		}
		if notes.Valid {
			ref.Notes = notes.String
		}
		ref.AddedAt, err = parseTime(addedAt)
		if err != nil {
			return fmt.Errorf("parse added_at: %w", err)
		}

		binder.Cards[pos] = ref
	}

	return rows.Err()
}
