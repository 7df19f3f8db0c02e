package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"bookstore-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Migrate creates missing tables
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// bookRow is a books row joined with its author name
type bookRow struct {
	models.Book
	AuthorID   sql.NullInt64  `db:"author_id"`
	AuthorName sql.NullString `db:"author_name"`
}

func (r bookRow) toBook() models.Book {
	b := r.Book
	b.Author = models.AuthorRef{ID: r.AuthorID.Int64, Name: r.AuthorName.String}
	return b
}

const bookColumns = `
	b.id, b.title, b.price, b.cover_photo, b.stock,
	COALESCE(b.genre_id, 0) AS genre_id,
	b.author_id, a.name AS author_name`

// ListBooks retrieves all books with their author names
func (s *Store) ListBooks(ctx context.Context) ([]models.Book, error) {
	var rows []bookRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT"+bookColumns+" FROM books b LEFT JOIN authors a ON a.id = b.author_id ORDER BY b.id")
	if err != nil {
		return nil, err
	}

	books := make([]models.Book, 0, len(rows))
	for _, r := range rows {
		books = append(books, r.toBook())
	}
	return books, nil
}

// GetBookByID retrieves a book by ID
func (s *Store) GetBookByID(ctx context.Context, id int64) (*models.Book, error) {
	var row bookRow
	err := s.db.GetContext(ctx, &row,
		"SELECT"+bookColumns+" FROM books b LEFT JOIN authors a ON a.id = b.author_id WHERE b.id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book not found: %d", id)
	}
	if err != nil {
		return nil, err
	}

	book := row.toBook()
	return &book, nil
}

// ListAuthors retrieves all authors
func (s *Store) ListAuthors(ctx context.Context) ([]models.Author, error) {
	var authors []models.Author
	err := s.db.SelectContext(ctx, &authors, "SELECT id, name, created_at FROM authors ORDER BY id")
	return authors, err
}

// ListGenres retrieves all genres
func (s *Store) ListGenres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	err := s.db.SelectContext(ctx, &genres, "SELECT id, name, created_at FROM genres ORDER BY id")
	return genres, err
}

// ListCustomers retrieves users with the customer role
func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.SelectContext(ctx, &customers,
		"SELECT id, name, email, role, last_access, created_at FROM users WHERE role = $1 ORDER BY created_at DESC",
		models.RoleCustomer)
	return customers, err
}
