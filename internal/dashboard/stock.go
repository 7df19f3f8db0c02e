package dashboard

import (
	"sort"

	"bookstore-service/internal/models"
)

// LowStockThreshold is the highest stock still reported as low
const LowStockThreshold = 5

// Stock status labels
const (
	StatusOutOfStock = "Out of Stock"
	StatusLowStock   = "Low Stock"
	StatusInStock    = "In Stock"
)

// StockStatus classifies a stock level
func StockStatus(stock int) string {
	switch {
	case stock == 0:
		return StatusOutOfStock
	case stock <= LowStockThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// StockAlert is a book whose stock needs attention
type StockAlert struct {
	BookID int64  `json:"book_id"`
	Title  string `json:"title"`
	Stock  int    `json:"stock"`
	Status string `json:"status"`
}

// LowStockAlerts lists out-of-stock and low-stock books, emptiest first
func LowStockAlerts(books []models.Book) []StockAlert {
	alerts := make([]StockAlert, 0)
	for _, b := range books {
		status := StockStatus(b.Stock)
		if status == StatusInStock {
			continue
		}
		alerts = append(alerts, StockAlert{
			BookID: b.ID,
			Title:  b.Title,
			Stock:  b.Stock,
			Status: status,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Stock < alerts[j].Stock
	})
	return alerts
}
