package activity

import (
	"time"

	"bookstore-service/internal/models"

	"github.com/shopspring/decimal"
)

// Summary is a customer's purchase history in aggregate
type Summary struct {
	TransactionsCount int             `json:"transactions_count"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	LastTransaction   *time.Time      `json:"last_transaction"`
}

// Summarize folds the transactions belonging to customerID
func Summarize(customerID int64, txs []models.Transaction) Summary {
	s := Summary{TotalSpent: decimal.Zero}
	for _, tx := range txs {
		if tx.CustomerKey() != customerID {
			continue
		}

		s.TransactionsCount++
		s.TotalSpent = s.TotalSpent.Add(tx.TotalAmount)
		if s.LastTransaction == nil || tx.CreatedAt.After(*s.LastTransaction) {
			at := tx.CreatedAt
			s.LastTransaction = &at
		}
	}
	return s
}
