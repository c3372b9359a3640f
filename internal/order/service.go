package order

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/avezhov/shop-api/internal/address"
	"github.com/avezhov/shop-api/internal/notify"
	"github.com/avezhov/shop-api/internal/user"
)

var (
	ErrAddressNotFound  = errors.New("address not found")
	ErrAddressOwnership = errors.New("address belongs to another user")
)

const defaultCancelComment = "canceled without comment"

type Addresses interface {
	GetByID(ctx context.Context, id string) (*address.Address, error)
}

type Users interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Service drives the order state machine. Callers arrive already
// authenticated and authorized; the service validates transition legality,
// runs the transactional repo operations and fires notifications only after
// the transition has committed.
type Service struct {
	repo       Repository
	addresses  Addresses
	users      Users
	dispatcher notify.Dispatcher
	logger     zerolog.Logger
}

func NewService(repo Repository, addresses Addresses, users Users, dispatcher notify.Dispatcher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, addresses: addresses, users: users, dispatcher: dispatcher, logger: logger}
}

// AddToBasket resolves (or creates) the user's basket and merges qty of the
// item into it. Stock is not checked here; availability is validated at
// StartOrder only.
func (s *Service) AddToBasket(ctx context.Context, userID, itemID string, qty int) (*Order, error) {
	if qty < 1 {
		return nil, errors.New("quantity must be at least 1")
	}
	basket, err := s.repo.Basket(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.MergeLine(ctx, basket.ID, itemID, qty)
}

// Basket returns the user's current basket with its lines, creating an
// empty one if none exists.
func (s *Service) Basket(ctx context.Context, userID string) (*Order, []Line, error) {
	basket, err := s.repo.Basket(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.repo.Lines(ctx, basket.ID)
	if err != nil {
		return nil, nil, err
	}
	return basket, lines, nil
}

// StartOrder checks out the basket: validates the address, reserves stock
// for every line all-or-nothing, and moves basket -> created. On success the
// customer confirmation and the back-office invoice are dispatched.
func (s *Service) StartOrder(ctx context.Context, userID, orderID, addressID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := Next(o.State, ActionStart); err != nil {
		return nil, err
	}
	addr, err := s.addresses.GetByID(ctx, addressID)
	if err != nil {
		return nil, ErrAddressNotFound
	}
	if addr.UserID != userID {
		return nil, ErrAddressOwnership
	}
	if err := s.repo.Checkout(ctx, orderID, addressID); err != nil {
		return nil, err
	}
	o, err = s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, o, notify.KindOrderConfirmed, notify.KindInvoiceReady)
	return o, nil
}

// Advance applies one of the pure warehouse transitions (collecting,
// collected, shipped) and returns the order in its new state.
func (s *Service) Advance(ctx context.Context, orderID string, action Action) (*Order, error) {
	switch action {
	case ActionCollecting, ActionCollected, ActionShipped:
	default:
		return nil, ErrInvalidTransition
	}
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	next, err := Next(o.State, action)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetState(ctx, orderID, o.State, next); err != nil {
		return nil, err
	}
	o.State = next
	return o, nil
}

// Delivered closes the order and notifies the customer.
func (s *Service) Delivered(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := Next(o.State, ActionDelivered); err != nil {
		return nil, err
	}
	if err := s.repo.CloseDelivered(ctx, orderID); err != nil {
		return nil, err
	}
	o, err = s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, o, notify.KindOrderDelivered)
	return o, nil
}

// Cancel releases the reserved stock and closes the order with the supplied
// comment (or a placeholder when none is given).
func (s *Service) Cancel(ctx context.Context, orderID, comment string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := Next(o.State, ActionCanceled); err != nil {
		return nil, err
	}
	if comment == "" {
		comment = defaultCancelComment
	}
	if err := s.repo.Cancel(ctx, orderID, comment); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, orderID)
}

// MyOrders returns the user's order history, newest first, baskets excluded.
func (s *Service) MyOrders(ctx context.Context, userID string) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}
	return orders, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, []Line, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.repo.Lines(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return o, lines, nil
}

// dispatch fires notifications after a committed transition. It never
// reports failure to the caller: the transition is the unit of truth, mail
// is best-effort.
func (s *Service) dispatch(ctx context.Context, o *Order, kinds ...notify.Kind) {
	inv, err := s.invoice(ctx, o)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", o.ID).Msg("build notification payload")
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		for _, kind := range kinds {
			if err := s.dispatcher.Notify(ctx, kind, inv); err != nil {
				s.logger.Error().Err(err).Str("order_id", o.ID).Str("kind", string(kind)).Msg("notification failed")
			}
		}
	}()
}

func (s *Service) invoice(ctx context.Context, o *Order) (*notify.Invoice, error) {
	u, err := s.users.GetByID(ctx, o.UserID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.Lines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	inv := &notify.Invoice{
		OrderID:       o.ID,
		CustomerEmail: u.Email,
		CustomerName:  u.FirstName + " " + u.LastName,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
	}
	for _, l := range lines {
		price, err := decimal.NewFromString(l.PriceAtOrder)
		if err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, notify.InvoiceLine{
			Name:     l.ItemName,
			Quantity: l.Quantity,
			Price:    price.StringFixed(2),
			Total:    price.Mul(decimal.NewFromInt(int64(l.Quantity))).StringFixed(2),
		})
	}
	return inv, nil
}
