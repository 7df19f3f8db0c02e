package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookstore-service/internal/models"
	"bookstore-service/internal/session"
	"bookstore-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultPaymentMethod is used when a checkout names none
const DefaultPaymentMethod = "credit_card"

// CheckoutPublisher sends submitted checkouts downstream
type CheckoutPublisher interface {
	PublishCheckoutSubmitted(ctx context.Context, event *models.CheckoutSubmittedEvent) error
}

// ShopService exposes the cart and wishlist of each session
type ShopService struct {
	sessions    *session.Registry
	publisher   CheckoutPublisher
	shippingFee decimal.Decimal
	logger      *zap.Logger
}

// NewShopService creates a new shop service
func NewShopService(sessions *session.Registry, publisher CheckoutPublisher, shippingFee int64) *ShopService {
	return &ShopService{
		sessions:    sessions,
		publisher:   publisher,
		shippingFee: decimal.NewFromInt(shippingFee),
		logger:      util.GetLogger(),
	}
}

// CartView is the cart as returned to callers
type CartView struct {
	Items     []models.LineItem `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int               `json:"item_count"`
	Open      bool              `json:"open"`
}

// WishlistView is the wishlist as returned to callers
type WishlistView struct {
	Items []models.WishlistItem `json:"items"`
	Count int                   `json:"count"`
}

// NewSession mints a fresh session
func (s *ShopService) NewSession(ctx context.Context) string {
	sess := s.sessions.New(ctx)
	s.logger.Info("Session created", zap.String("session_id", sess.ID))
	return sess.ID
}

// GetCart returns the cart of a session
func (s *ShopService) GetCart(ctx context.Context, sessionID string) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return cartView(sess), nil
}

// AddToCart adds quantity units of product, merging into an existing line
func (s *ShopService) AddToCart(ctx context.Context, sessionID string, product models.Book, quantity int) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "ShopService.AddToCart")
	defer span.End()
	span.SetAttributes(attribute.Int64("book_id", product.ID), attribute.Int("quantity", quantity))

	if product.ID <= 0 {
		return nil, ErrInvalidProduct
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Cart.Add(ctx, product, quantity)
	return cartView(sess), nil
}

// UpdateCartQuantity sets a line's quantity; zero or less removes it
func (s *ShopService) UpdateCartQuantity(ctx context.Context, sessionID string, bookID int64, quantity int) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Cart.UpdateQuantity(ctx, bookID, quantity)
	return cartView(sess), nil
}

// RemoveFromCart drops a line
func (s *ShopService) RemoveFromCart(ctx context.Context, sessionID string, bookID int64) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Cart.Remove(ctx, bookID)
	return cartView(sess), nil
}

// ClearCart empties the cart
func (s *ShopService) ClearCart(ctx context.Context, sessionID string) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Cart.Clear(ctx)
	return cartView(sess), nil
}

// SetCartOpen toggles the cart panel flag
func (s *ShopService) SetCartOpen(ctx context.Context, sessionID string, open bool) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Cart.SetOpen(open)
	return cartView(sess), nil
}

// GetWishlist returns the wishlist of a session
func (s *ShopService) GetWishlist(ctx context.Context, sessionID string) (*WishlistView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return wishlistView(sess), nil
}

// AddToWishlist adds product unless it is already present
func (s *ShopService) AddToWishlist(ctx context.Context, sessionID string, product models.Book) (*WishlistView, error) {
	if product.ID <= 0 {
		return nil, ErrInvalidProduct
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Wishlist.Add(ctx, product)
	return wishlistView(sess), nil
}

// RemoveFromWishlist drops an entry
func (s *ShopService) RemoveFromWishlist(ctx context.Context, sessionID string, bookID int64) (*WishlistView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Wishlist.Remove(ctx, bookID)
	return wishlistView(sess), nil
}

// InWishlist reports whether bookID is wishlisted
func (s *ShopService) InWishlist(ctx context.Context, sessionID string, bookID int64) (bool, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return sess.Wishlist.Contains(bookID), nil
}

// ClearWishlist empties the wishlist
func (s *ShopService) ClearWishlist(ctx context.Context, sessionID string) (*WishlistView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Wishlist.Clear(ctx)
	return wishlistView(sess), nil
}

// CheckoutRequest carries the shipping form
type CheckoutRequest struct {
	CustomerID         int64  `json:"customer_id"`
	ShippingName       string `json:"shipping_name"`
	ShippingAddress    string `json:"shipping_address"`
	ShippingCity       string `json:"shipping_city"`
	ShippingPostalCode string `json:"shipping_postal_code"`
	ShippingPhone      string `json:"shipping_phone"`
	PaymentMethod      string `json:"payment_method"`
	Notes              string `json:"notes"`
}

func (r *CheckoutRequest) validate() error {
	for _, field := range []string{r.ShippingName, r.ShippingAddress, r.ShippingCity, r.ShippingPostalCode, r.ShippingPhone} {
		if strings.TrimSpace(field) == "" {
			return ErrInvalidCheckout
		}
	}
	return nil
}

// CheckoutResponse summarises a submitted checkout. ItemCount is the number
// of units, as in CartView; LineCount is the number of distinct books.
type CheckoutResponse struct {
	EventID     string          `json:"event_id"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	LineCount   int             `json:"line_count"`
	ItemCount   int             `json:"item_count"`
}

// Checkout submits the session's cart and clears it. The cart is left
// untouched when the request is rejected or the event cannot be published.
func (s *ShopService) Checkout(ctx context.Context, sessionID string, req *CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := util.StartSpan(ctx, "ShopService.Checkout")
	defer span.End()

	if err := req.validate(); err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("invalid_shipping").Inc()
		return nil, err
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var event *models.CheckoutSubmittedEvent
	err = sess.Cart.Checkout(ctx, func(lines []models.LineItem, subtotal decimal.Decimal) error {
		if len(lines) == 0 {
			util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
			return ErrEmptyCart
		}
		for _, line := range lines {
			if line.Quantity <= 0 {
				util.CheckoutsFailedTotal.WithLabelValues("invalid_quantity").Inc()
				return fmt.Errorf("%w: book %d has quantity %d", ErrInvalidCheckout, line.ID, line.Quantity)
			}
		}

		event = s.buildCheckoutEvent(sessionID, req, lines, subtotal)
		span.SetAttributes(attribute.String("event_id", event.EventID), attribute.Int("lines", len(lines)))

		if err := s.publisher.PublishCheckoutSubmitted(ctx, event); err != nil {
			util.CheckoutsFailedTotal.WithLabelValues("publish_failed").Inc()
			s.logger.Error("Failed to publish CheckoutSubmitted event",
				zap.String("session_id", sessionID),
				zap.Error(err))
			return fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return nil, util.SpanError(span, err)
	}

	util.CheckoutsTotal.Inc()
	s.logger.Info("Checkout submitted",
		zap.String("session_id", sessionID),
		zap.String("event_id", event.EventID),
		zap.String("grand_total", event.GrandTotal.String()))

	units := 0
	for _, item := range event.Items {
		units += item.Quantity
	}

	return &CheckoutResponse{
		EventID:     event.EventID,
		Subtotal:    event.TotalAmount,
		ShippingFee: event.ShippingFee,
		GrandTotal:  event.GrandTotal,
		LineCount:   len(event.Items),
		ItemCount:   units,
	}, nil
}

func (s *ShopService) buildCheckoutEvent(sessionID string, req *CheckoutRequest, lines []models.LineItem, subtotal decimal.Decimal) *models.CheckoutSubmittedEvent {
	items := make([]models.CheckoutItemData, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.CheckoutItemData{
			BookID:   line.ID,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	return &models.CheckoutSubmittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCheckoutSubmitted,
			Timestamp: time.Now(),
		},
		SessionID:       sessionID,
		CustomerID:      req.CustomerID,
		Items:           items,
		TotalAmount:     subtotal,
		ShippingFee:     s.shippingFee,
		GrandTotal:      subtotal.Add(s.shippingFee),
		ShippingName:    req.ShippingName,
		ShippingAddress: fmt.Sprintf("%s, %s, %s", req.ShippingAddress, req.ShippingCity, req.ShippingPostalCode),
		ShippingPhone:   req.ShippingPhone,
		PaymentMethod:   paymentMethod,
		Notes:           req.Notes,
	}
}

func cartView(sess *session.Session) *CartView {
	return &CartView{
		Items:     sess.Cart.Items(),
		Total:     sess.Cart.Total(),
		ItemCount: sess.Cart.ItemCount(),
		Open:      sess.Cart.IsOpen(),
	}
}

func wishlistView(sess *session.Session) *WishlistView {
	return &WishlistView{
		Items: sess.Wishlist.Items(),
		Count: sess.Wishlist.Count(),
	}
}
