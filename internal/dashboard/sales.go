package dashboard

import "bookstore-service/internal/models"

// saleLine is the single internal shape both transaction layouts reduce to
type saleLine struct {
	BookID   int64
	Quantity int
}

// saleLines normalizes the flat book_id/quantity layout and the nested items
// layout. A transaction may carry both; both are counted. A missing quantity
// counts as one unit.
func saleLines(tx models.Transaction) []saleLine {
	lines := make([]saleLine, 0, len(tx.Items)+1)

	if tx.BookID != 0 {
		lines = append(lines, saleLine{BookID: tx.BookID, Quantity: unitsOrOne(tx.Quantity)})
	}
	for _, item := range tx.Items {
		if item.BookID == 0 {
			continue
		}
		lines = append(lines, saleLine{BookID: item.BookID, Quantity: unitsOrOne(item.Quantity)})
	}
	return lines
}

// unitsSold counts books in a transaction; a transaction without any book
// reference still counts as one sale
func unitsSold(tx models.Transaction) int {
	lines := saleLines(tx)
	if len(lines) == 0 {
		return unitsOrOne(tx.Quantity)
	}

	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

func unitsOrOne(q int) int {
	if q == 0 {
		return 1
	}
	return q
}
