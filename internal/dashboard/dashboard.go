// Package dashboard turns catalog and transaction collections into the
// admin dashboard figures. Everything here is a pure function of its inputs.
package dashboard

import (
	"math"
	"sort"
	"time"

	"bookstore-service/internal/models"
)

// DefaultRecentTransactions is the number of newest transactions shown
const DefaultRecentTransactions = 5

// Input holds the collections a dashboard is built from
type Input struct {
	Books        []models.Book
	Authors      []models.Author
	Genres       []models.Genre
	Transactions []models.Transaction
}

// Dashboard is the assembled view
type Dashboard struct {
	TimeRange          TimeRange            `json:"time_range"`
	GeneratedAt        time.Time            `json:"generated_at"`
	Stats              Stats                `json:"stats"`
	TopSellingBooks    []TopSeller          `json:"top_selling_books"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
	StockAlerts        []StockAlert         `json:"stock_alerts"`
}

// Build assembles the dashboard for range r at now. Statistics respect the
// window; top sellers and recent transactions cover the full history.
func Build(in Input, r TimeRange, now time.Time) Dashboard {
	filtered := FilterByTimeRange(in.Transactions, r, now)

	return Dashboard{
		TimeRange:          r,
		GeneratedAt:        now,
		Stats:              ComputeStatistics(in.Books, in.Authors, in.Genres, filtered, in.Transactions),
		TopSellingBooks:    TopSellingBooks(in.Transactions, in.Books, DefaultTopSellers),
		RecentTransactions: RecentTransactions(in.Transactions, DefaultRecentTransactions),
		StockAlerts:        LowStockAlerts(in.Books),
	}
}

// RecentTransactions returns the n newest transactions, newest first
func RecentTransactions(txs []models.Transaction, n int) []models.Transaction {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Change is a period-over-period movement
type Change struct {
	Percent    float64 `json:"percent"`
	IsPositive bool    `json:"is_positive"`
}

// PercentageChange compares current to previous. With no previous value the
// change is 100% when current is positive and 0% otherwise.
func PercentageChange(current, previous float64) Change {
	if previous == 0 {
		if current > 0 {
			return Change{Percent: 100, IsPositive: true}
		}
		return Change{Percent: 0, IsPositive: false}
	}

	change := (current - previous) / previous * 100
	return Change{
		Percent:    math.Round(math.Abs(change)*10) / 10,
		IsPositive: change >= 0,
	}
}
