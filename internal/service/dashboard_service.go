package service

import (
	"context"
	"time"

	"bookstore-service/internal/dashboard"
	"bookstore-service/internal/models"
	"bookstore-service/internal/util"

	"go.uber.org/zap"
)

// CatalogReader loads the collections behind the admin views
type CatalogReader interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	ListAuthors(ctx context.Context) ([]models.Author, error)
	ListGenres(ctx context.Context) ([]models.Genre, error)
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
}

// DashboardService builds the admin dashboard
type DashboardService struct {
	catalog CatalogReader
	now     func() time.Time
	logger  *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(catalog CatalogReader) *DashboardService {
	return &DashboardService{
		catalog: catalog,
		now:     time.Now,
		logger:  util.GetLogger(),
	}
}

// Load reads every collection and builds the dashboard for r. A collection
// that fails to load is treated as empty; the dashboard is always produced.
func (s *DashboardService) Load(ctx context.Context, r dashboard.TimeRange) dashboard.Dashboard {
	ctx, span := util.StartSpan(ctx, "DashboardService.Load")
	defer span.End()

	start := time.Now()
	defer func() {
		util.DashboardBuildLatency.Observe(time.Since(start).Seconds())
	}()

	in := dashboard.Input{
		Books:        loadOrEmpty(ctx, s, "books", s.catalog.ListBooks),
		Authors:      loadOrEmpty(ctx, s, "authors", s.catalog.ListAuthors),
		Genres:       loadOrEmpty(ctx, s, "genres", s.catalog.ListGenres),
		Transactions: loadOrEmpty(ctx, s, "transactions", s.catalog.ListTransactions),
	}

	return dashboard.Build(in, r, s.now())
}

func loadOrEmpty[T any](ctx context.Context, s *DashboardService, collection string, load func(context.Context) ([]T, error)) []T {
	items, err := load(ctx)
	if err != nil {
		util.DashboardSourceErrorsTotal.WithLabelValues(collection).Inc()
		s.logger.Warn("Dashboard collection unavailable",
			zap.String("collection", collection),
			zap.Error(err))
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}
