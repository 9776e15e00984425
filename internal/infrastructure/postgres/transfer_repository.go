package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo persiste traslados en stock_transfers y sus ítems en stock_transfer_items.
type TransferRepo struct {
	pool *pgxpool.Pool
}

// NewTransferRepository construye el adaptador.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepo {
	return &TransferRepo{pool: pool}
}

const transferColumns = `id, organization_id, from_location_id, to_location_id, status, notes,
	created_by, created_at, approved_by, approved_at, received_by, completed_date,
	cancelled_by, cancelled_at, cancel_reason, updated_at`

// Create inserta cabecera e ítems en una transacción.
func (r *TransferRepo) Create(ctx context.Context, t *transfer.StockTransfer) error {
	return withTx(ctx, r.pool, func(q Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO stock_transfers (`+transferColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			t.ID, t.OrganizationID, t.FromLocationID, t.ToLocationID, t.Status.String(), nullIfEmpty(t.Notes),
			t.CreatedBy, t.CreatedAt, nullIfEmpty(t.ApprovedBy), t.ApprovedAt, nullIfEmpty(t.ReceivedBy), t.CompletedDate,
			nullIfEmpty(t.CancelledBy), t.CancelledAt, nullIfEmpty(t.CancelReason), t.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("transfer %s: %w", t.ID, domain.ErrDuplicate)
			}
			return fmt.Errorf("insert transfer: %w", err)
		}
		return upsertItems(ctx, q, t)
	})
}

// Update guarda estado, actores, fechas y cantidades. Los ítems no se agregan ni se quitan
// después de creado el traslado; solo cambian sus cantidades. El WHERE sobre status evita
// que una transición concurrente pise a otra.
func (r *TransferRepo) Update(ctx context.Context, t *transfer.StockTransfer, expected transfer.Status) error {
	return withTx(ctx, r.pool, func(q Querier) error {
		tag, err := q.Exec(ctx, `
			UPDATE stock_transfers
			SET status = $2, notes = $3, approved_by = $4, approved_at = $5,
			    received_by = $6, completed_date = $7, cancelled_by = $8, cancelled_at = $9,
			    cancel_reason = $10, updated_at = $11
			WHERE id = $1 AND status = $12`,
			t.ID, t.Status.String(), nullIfEmpty(t.Notes), nullIfEmpty(t.ApprovedBy), t.ApprovedAt,
			nullIfEmpty(t.ReceivedBy), t.CompletedDate, nullIfEmpty(t.CancelledBy), t.CancelledAt,
			nullIfEmpty(t.CancelReason), t.UpdatedAt, expected.String(),
		)
		if err != nil {
			return fmt.Errorf("update transfer: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var current string
			err := q.QueryRow(ctx, `SELECT status FROM stock_transfers WHERE id = $1`, t.ID).Scan(&current)
			if isNoRows(err) {
				return domain.ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("get transfer status: %w", err)
			}
			return fmt.Errorf("%w: traslado %s en estado %s", domain.ErrConflict, t.ID, current)
		}
		return upsertItems(ctx, q, t)
	})
}

func upsertItems(ctx context.Context, q Querier, t *transfer.StockTransfer) error {
	batch := &pgx.Batch{}
	for i, it := range t.Items {
		batch.Queue(`
			INSERT INTO stock_transfer_items (transfer_id, position, inventory_item_id, requested_quantity, transferred_quantity, received_quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (transfer_id, inventory_item_id) DO UPDATE
			SET transferred_quantity = EXCLUDED.transferred_quantity,
			    received_quantity    = EXCLUDED.received_quantity`,
			t.ID, i, it.InventoryItemID, it.RequestedQuantity, it.TransferredQuantity, it.ReceivedQuantity,
		)
	}
	br := q.SendBatch(ctx, batch)
	for range t.Items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("upsert transfer item: %w", err)
		}
	}
	return br.Close()
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*transfer.StockTransfer, error) {
	t, err := scanTransfer(r.pool.QueryRow(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if err := r.loadItems(ctx, map[string]*transfer.StockTransfer{t.ID: t}); err != nil {
		return nil, err
	}
	return t, nil
}

// List más recientes primero.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*transfer.StockTransfer, error) {
	lim, off := limitClause(f.Limit, f.Offset)
	rows, err := r.pool.Query(ctx, `
		SELECT `+transferColumns+`
		FROM stock_transfers
		WHERE organization_id = $1
		  AND ($2::text = '' OR status = $2)
		  AND ($3::text = '' OR from_location_id = $3 OR to_location_id = $3)
		ORDER BY created_at DESC, id
		LIMIT $4 OFFSET $5`,
		f.OrganizationID, f.Status.String(), f.LocationID, lim, off,
	)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var list []*transfer.StockTransfer
	byID := make(map[string]*transfer.StockTransfer)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, byID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *TransferRepo) loadItems(ctx context.Context, byID map[string]*transfer.StockTransfer) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT transfer_id, inventory_item_id, requested_quantity, transferred_quantity, received_quantity
		FROM stock_transfer_items
		WHERE transfer_id = ANY($1)
		ORDER BY transfer_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var transferID string
		var it transfer.Item
		if err := rows.Scan(&transferID, &it.InventoryItemID, &it.RequestedQuantity,
			&it.TransferredQuantity, &it.ReceivedQuantity); err != nil {
			return fmt.Errorf("scan transfer item: %w", err)
		}
		if t, ok := byID[transferID]; ok {
			t.Items = append(t.Items, it)
		}
	}
	return rows.Err()
}

func scanTransfer(row pgx.Row) (*transfer.StockTransfer, error) {
	var t transfer.StockTransfer
	var status string
	var notes, approvedBy, receivedBy, cancelledBy, cancelReason *string
	if err := row.Scan(
		&t.ID, &t.OrganizationID, &t.FromLocationID, &t.ToLocationID, &status, &notes,
		&t.CreatedBy, &t.CreatedAt, &approvedBy, &t.ApprovedAt, &receivedBy, &t.CompletedDate,
		&cancelledBy, &t.CancelledAt, &cancelReason, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = transfer.Status(status)
	t.Notes = stringOrEmpty(notes)
	t.ApprovedBy = stringOrEmpty(approvedBy)
	t.ReceivedBy = stringOrEmpty(receivedBy)
	t.CancelledBy = stringOrEmpty(cancelledBy)
	t.CancelReason = stringOrEmpty(cancelReason)
	return &t, nil
}
