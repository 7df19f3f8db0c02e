package dashboard

import (
	"sort"

	"bookstore-service/internal/models"
)

// DefaultTopSellers is the number of books ranked on the dashboard
const DefaultTopSellers = 5

// TopSeller is a book ranked by units sold
type TopSeller struct {
	BookID    int64       `json:"book_id"`
	TotalSold int         `json:"total_sold"`
	Book      BookSummary `json:"book"`
}

// BookSummary is the catalog data joined onto a TopSeller. It is left zero
// when the book is not in the catalog.
type BookSummary struct {
	ID         int64  `json:"id,omitempty"`
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
	CoverPhoto string `json:"cover_photo,omitempty"`
}

// TopSellingBooks ranks books by units sold across txs, best first
func TopSellingBooks(txs []models.Transaction, books []models.Book, limit int) []TopSeller {
	sold := make(map[int64]int)
	for _, tx := range txs {
		for _, line := range saleLines(tx) {
			sold[line.BookID] += line.Quantity
		}
	}

	catalog := make(map[int64]models.Book, len(books))
	for _, b := range books {
		catalog[b.ID] = b
	}

	ranked := make([]TopSeller, 0, len(sold))
	for bookID, total := range sold {
		entry := TopSeller{BookID: bookID, TotalSold: total}
		if b, ok := catalog[bookID]; ok {
			entry.Book = BookSummary{
				ID:         b.ID,
				Title:      b.Title,
				Author:     b.Author.Name,
				CoverPhoto: b.CoverPhoto,
			}
		}
		ranked = append(ranked, entry)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalSold != ranked[j].TotalSold {
			return ranked[i].TotalSold > ranked[j].TotalSold
		}
		return ranked[i].BookID < ranked[j].BookID
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
