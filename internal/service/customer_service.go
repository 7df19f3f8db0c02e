package service

import (
	"context"
	"fmt"
	"time"

	"bookstore-service/internal/activity"
	"bookstore-service/internal/models"
	"bookstore-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CustomerReader loads customers and their transactions
type CustomerReader interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
}

// CustomerView is one row of the admin customers page
type CustomerView struct {
	models.Customer
	Summary  activity.Summary      `json:"summary"`
	Activity activity.Activity     `json:"activity"`
	Spending activity.SpendingTier `json:"spending"`
}

// CustomerOverview holds the page header figures
type CustomerOverview struct {
	TotalCustomers  int             `json:"total_customers"`
	TotalOrders     int             `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	ActiveCustomers int             `json:"active_customers"`
}

// CustomerList is the customers page
type CustomerList struct {
	Customers []CustomerView   `json:"customers"`
	Overview  CustomerOverview `json:"overview"`
}

// CustomerService classifies customers for the admin views
type CustomerService struct {
	reader CustomerReader
	now    func() time.Time
	logger *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(reader CustomerReader) *CustomerService {
	return &CustomerService{
		reader: reader,
		now:    time.Now,
		logger: util.GetLogger(),
	}
}

// List returns every customer with purchase summary, activity status and
// spending tier. Failing to load customers is an error; failing to load
// transactions only leaves the summaries empty.
func (s *CustomerService) List(ctx context.Context) (*CustomerList, error) {
	ctx, span := util.StartSpan(ctx, "CustomerService.List")
	defer span.End()

	customers, err := s.reader.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	txs, err := s.reader.ListTransactions(ctx)
	if err != nil {
		s.logger.Warn("Transactions unavailable for customer summaries", zap.Error(err))
		txs = nil
	}

	now := s.now()
	list := &CustomerList{
		Customers: make([]CustomerView, 0, len(customers)),
		Overview: CustomerOverview{
			TotalCustomers:  len(customers),
			TotalRevenue:    decimal.Zero,
			ActiveCustomers: activity.CountActive(customers, now),
		},
	}

	for _, c := range customers {
		summary := activity.Summarize(c.ID, txs)
		list.Overview.TotalOrders += summary.TransactionsCount
		list.Overview.TotalRevenue = list.Overview.TotalRevenue.Add(summary.TotalSpent)

		list.Customers = append(list.Customers, CustomerView{
			Customer: c,
			Summary:  summary,
			Activity: activity.Status(lastAccess(c), now),
			Spending: activity.Spending(summary.TotalSpent),
		})
	}

	return list, nil
}

func lastAccess(c models.Customer) string {
	if c.LastAccess == nil {
		return ""
	}
	return *c.LastAccess
}
