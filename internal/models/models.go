package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and totals travel as JSON numbers, as the catalog API sends them.
	decimal.MarshalJSONWithoutQuotes = true
}

// UnknownAuthor is used when a product carries no author name
const UnknownAuthor = "Unknown Author"

// Customer roles
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// AuthorRef is the author attached to a catalog record. The catalog sends
// either an object with a name or a bare string.
type AuthorRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts {"name": ...}, a plain string, or null
func (a *AuthorRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = AuthorRef{}
		return nil
	}

	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*a = AuthorRef{Name: name}
		return nil
	}

	type plain AuthorRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = AuthorRef(p)
	return nil
}

// DisplayName returns the author name or UnknownAuthor
func (a AuthorRef) DisplayName() string {
	if a.Name == "" {
		return UnknownAuthor
	}
	return a.Name
}

// Book represents a catalog record. It is also the product shape accepted by
// the cart and wishlist.
type Book struct {
	ID         int64           `db:"id" json:"id"`
	Title      string          `db:"title" json:"title"`
	Price      decimal.Decimal `db:"price" json:"price"`
	CoverPhoto string          `db:"cover_photo" json:"cover_photo,omitempty"`
	Author     AuthorRef       `db:"-" json:"author"`
	GenreID    int64           `db:"genre_id" json:"genre_id,omitempty"`
	Stock      int             `db:"stock" json:"stock"`
}

// Author represents a catalog author
type Author struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Genre represents a catalog genre
type Genre struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Customer represents a registered user
type Customer struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Role       string    `db:"role" json:"role"`
	LastAccess *string   `db:"last_access" json:"last_access"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Transaction is a purchase record as listed by the transaction collaborator.
// Older records carry a single book in BookID/Quantity, newer ones an Items list.
type Transaction struct {
	ID          int64             `json:"id"`
	CustomerID  int64             `json:"customer_id,omitempty"`
	UserID      int64             `json:"user_id,omitempty"`
	BookID      int64             `json:"book_id,omitempty"`
	Quantity    int               `json:"quantity,omitempty"`
	Items       []TransactionItem `json:"items,omitempty"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	CreatedAt   time.Time         `json:"created_at"`
}

// CustomerKey identifies the buyer, preferring customer_id over user_id
func (t Transaction) CustomerKey() int64 {
	if t.CustomerID != 0 {
		return t.CustomerID
	}
	return t.UserID
}

// TransactionItem is one book inside a multi-item transaction
type TransactionItem struct {
	BookID   int64           `db:"book_id" json:"book_id"`
	Quantity int             `db:"quantity" json:"quantity"`
	Price    decimal.Decimal `db:"price" json:"price,omitempty"`
}

// LineItem is one row of a cart
type LineItem struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	CoverPhoto string          `json:"cover_photo,omitempty"`
	Author     string          `json:"author"`
	Stock      int             `json:"stock"`
	Quantity   int             `json:"quantity"`
}

// Subtotal returns price * quantity
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// WishlistItem is one saved product
type WishlistItem struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	CoverPhoto string          `json:"cover_photo,omitempty"`
	Author     string          `json:"author"`
	Stock      int             `json:"stock"`
}
