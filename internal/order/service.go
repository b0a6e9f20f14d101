package order

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/jusastore/store-backend/internal/cart"
	"github.com/jusastore/store-backend/internal/product"
	"github.com/jusastore/store-backend/internal/validation"
	"github.com/shopspring/decimal"
)

const missingDeliveryMsg = "Missing required delivery information."

// CartReader loads the cart being checked out.
type CartReader interface {
	Get(ctx context.Context, userID string) (cart.Cart, error)
}

// Catalog resolves product ids to their current entries.
type Catalog interface {
	Lookup(ctx context.Context, ids []string) (map[string]product.Product, error)
}

// CheckoutRequest is the checkout payload. The payment method may arrive
// as paymentMethod.type or as paymentInfo.method.
type CheckoutRequest struct {
	DeliveryInfo  DeliveryInfo `json:"deliveryInfo"`
	PaymentMethod *struct {
		Type string `json:"type"`
	} `json:"paymentMethod"`
	PaymentInfo *struct {
		Method string `json:"method"`
	} `json:"paymentInfo"`
}

func (r CheckoutRequest) methodTag() string {
	if r.PaymentMethod != nil && r.PaymentMethod.Type != "" {
		return r.PaymentMethod.Type
	}
	if r.PaymentInfo != nil {
		return r.PaymentInfo.Method
	}
	return ""
}

// Service provides business logic for orders.
type Service struct {
	repo    Repository
	carts   CartReader
	catalog Catalog
	now     func() time.Time
}

func NewService(repo Repository, carts CartReader, catalog Catalog) *Service {
	return &Service{repo: repo, carts: carts, catalog: catalog, now: time.Now}
}

// Checkout turns the user's cart into an order priced at current catalog
// prices and empties the cart. Nothing is written when any line's product
// no longer exists.
func (s *Service) Checkout(ctx context.Context, userID string, req CheckoutRequest) (Order, error) {
	delivery := req.DeliveryInfo.trimmed()
	if err := validation.StructMsg(&delivery, missingDeliveryMsg); err != nil {
		return Order{}, err
	}
	method, ok := ParsePaymentMethod(req.methodTag())
	if !ok {
		return Order{}, ErrPaymentMethod
	}

	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, cart.ErrNotFound) {
		return Order{}, ErrEmptyCart
	}
	if err != nil {
		return Order{}, err
	}
	if len(c.Items) == 0 {
		return Order{}, ErrEmptyCart
	}

	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return Order{}, err
	}

	items := make([]LineItem, 0, len(c.Items))
	total := decimal.Zero
	for _, it := range c.Items {
		p, ok := products[it.ProductID]
		if !ok {
			log.Warnw("checkout rejected: product missing", "userId", userID, "productId", it.ProductID)
			return Order{}, ErrInconsistentCart
		}
		items = append(items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
			Color:     it.Color,
			Size:      it.Size,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	now := s.now().UTC()
	o := Order{
		ID:           uuid.NewString(),
		UserID:       userID,
		Items:        items,
		TotalAmount:  total,
		DeliveryInfo: delivery,
		PaymentInfo:  PaymentInfo{Method: method, Status: PaymentPending},
		Status:       StatusPending,
		OrderDate:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Place(ctx, o); err != nil {
		return Order{}, err
	}
	log.Infow("order placed", "orderId", o.ID, "userId", userID, "items", len(items), "total", total.StringFixed(2))
	return o, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one of the user's orders. Other users' orders look missing.
func (s *Service) Get(ctx context.Context, userID, id string) (Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Order{}, ErrInvalidID
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) Cancel(ctx context.Context, userID, id string) (Order, error) {
	o, err := s.Get(ctx, userID, id)
	if err != nil {
		return Order{}, err
	}
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return Order{}, ErrNotCancellable
	}

	updated, err := s.repo.UpdateStatus(ctx, id, o.Status, StatusCancelled, s.now().UTC())
	if errors.Is(err, ErrStatusChanged) {
		return Order{}, ErrNotCancellable
	}
	if err != nil {
		return Order{}, err
	}
	log.Infow("order cancelled", "orderId", id, "userId", userID)
	return updated, nil
}
