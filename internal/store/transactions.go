package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookstore-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type transactionRow struct {
	ID          int64           `db:"id"`
	CustomerID  int64           `db:"customer_id"`
	BookID      sql.NullInt64   `db:"book_id"`
	Quantity    sql.NullInt64   `db:"quantity"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	CreatedAt   time.Time       `db:"created_at"`
}

type transactionItemRow struct {
	TransactionID int64 `db:"transaction_id"`
	models.TransactionItem
}

// ListTransactions retrieves all transactions with their items
func (s *Store) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var rows []transactionRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, customer_id, book_id, quantity, total_amount, created_at FROM transactions ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []models.Transaction{}, nil
	}

	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	query, args, err := sqlx.In(
		"SELECT transaction_id, book_id, quantity, price FROM transaction_items WHERE transaction_id IN (?) ORDER BY id", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var itemRows []transactionItemRow
	if err := s.db.SelectContext(ctx, &itemRows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load transaction items: %w", err)
	}

	items := make(map[int64][]models.TransactionItem)
	for _, ir := range itemRows {
		items[ir.TransactionID] = append(items[ir.TransactionID], ir.TransactionItem)
	}

	txs := make([]models.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, models.Transaction{
			ID:          r.ID,
			CustomerID:  r.CustomerID,
			BookID:      r.BookID.Int64,
			Quantity:    int(r.Quantity.Int64),
			Items:       items[r.ID],
			TotalAmount: r.TotalAmount,
			CreatedAt:   r.CreatedAt,
		})
	}
	return txs, nil
}

// CreateTransactionFromCheckout stores a submitted checkout and its items in
// one database transaction
func (s *Store) CreateTransactionFromCheckout(ctx context.Context, event *models.CheckoutSubmittedEvent) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.GetContext(ctx, &id, `
		INSERT INTO transactions (customer_id, total_amount, shipping_address, shipping_phone, payment_method, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		event.CustomerID, event.TotalAmount, event.ShippingAddress, event.ShippingPhone,
		event.PaymentMethod, event.Notes, event.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, item := range event.Items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO transaction_items (transaction_id, book_id, quantity, price) VALUES ($1, $2, $3, $4)",
			id, item.BookID, item.Quantity, item.Price)
		if err != nil {
			return 0, fmt.Errorf("failed to insert transaction item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
