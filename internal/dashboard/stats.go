package dashboard

import (
	"bookstore-service/internal/models"

	"github.com/shopspring/decimal"
)

// Stats are the headline dashboard figures.
//
// TotalBooksSold counts units over every sale line, nested items included,
// so it agrees with TopSellingBooks. It is not a per-transaction
// quantity-or-one count; only a transaction with no lines at all counts as 1.
type Stats struct {
	TotalBooks              int             `json:"total_books"`
	TotalAuthors            int             `json:"total_authors"`
	TotalGenres             int             `json:"total_genres"`
	TotalTransactions       int             `json:"total_transactions"`
	TotalRevenue            decimal.Decimal `json:"total_revenue"`
	TotalBooksSold          int             `json:"total_books_sold"`
	AverageTransactionValue decimal.Decimal `json:"average_transaction_value"`
	UniqueCustomers         int             `json:"unique_customers"`
	Inventory               InventoryStats  `json:"inventory_stats"`
}

// InventoryStats summarize the catalog stock
type InventoryStats struct {
	TotalStock int             `json:"total_stock"`
	OutOfStock int             `json:"out_of_stock"`
	LowStock   int             `json:"low_stock"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// ComputeStatistics derives inventory figures from books, transaction figures
// from filtered, and the customer count from the full history in all.
func ComputeStatistics(books []models.Book, authors []models.Author, genres []models.Genre, filtered, all []models.Transaction) Stats {
	stats := Stats{
		TotalBooks:        len(books),
		TotalAuthors:      len(authors),
		TotalGenres:       len(genres),
		TotalTransactions: len(filtered),
		TotalRevenue:      decimal.Zero,
		Inventory:         computeInventory(books),
	}

	for _, tx := range filtered {
		stats.TotalRevenue = stats.TotalRevenue.Add(tx.TotalAmount)
		stats.TotalBooksSold += unitsSold(tx)
	}

	stats.AverageTransactionValue = decimal.Zero
	if stats.TotalTransactions > 0 {
		stats.AverageTransactionValue = stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.TotalTransactions)))
	}

	customers := make(map[int64]struct{})
	for _, tx := range all {
		customers[tx.CustomerKey()] = struct{}{}
	}
	stats.UniqueCustomers = len(customers)

	return stats
}

func computeInventory(books []models.Book) InventoryStats {
	inv := InventoryStats{TotalValue: decimal.Zero}
	for _, b := range books {
		inv.TotalStock += b.Stock
		switch StockStatus(b.Stock) {
		case StatusOutOfStock:
			inv.OutOfStock++
		case StatusLowStock:
			inv.LowStock++
		}
		inv.TotalValue = inv.TotalValue.Add(b.Price.Mul(decimal.NewFromInt(int64(b.Stock))))
	}
	return inv
}
