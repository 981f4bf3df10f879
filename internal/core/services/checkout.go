// internal/core/services/checkout.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
)

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)

// CheckoutService turns a cart into a placed order
type CheckoutService struct {
	placer   ports.OrderPlacer
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(placer ports.OrderPlacer, logger *slog.Logger) *CheckoutService {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// MM/YY
	_ = v.RegisterValidation("card_expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})

	return &CheckoutService{
		placer:   placer,
		validate: v,
		logger:   logger.With(slog.String("service", "checkout")),
		now:      time.Now,
	}
}

// PlaceOrder validates the request, places an order for the cart's current
// lines and clears the cart once the placer confirms. The cart is left
// untouched on any error.
func (s *CheckoutService) PlaceOrder(ctx context.Context, cart ports.Cart, req CheckoutRequest) (*domain.Order, error) {
	items := cart.Items()
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	method := req.ShippingMethod
	if method == "" {
		method = domain.ShippingStandard
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown shipping method %q", domain.ErrInvalidCheckout, method)
	}

	payment := req.Payment
	payment.CardNumber = strings.ReplaceAll(payment.CardNumber, " ", "")

	if err := s.validateDetails(req.Shipping, payment); err != nil {
		return nil, err
	}

	placedAt := s.now()
	order := &domain.Order{
		ID:             domain.NewOrderID(placedAt),
		Items:          items,
		Shipping:       req.Shipping,
		Payment:        payment.Mask(),
		ShippingMethod: method,
		Summary:        domain.CalculateSummary(items, method),
		Status:         domain.OrderStatusConfirmed,
		PlacedAt:       placedAt,
	}

	confirmation, err := s.placer.Place(ctx, order)
	if err != nil {
		s.logger.ErrorContext(ctx, "order placement failed",
			slog.String("order_id", order.ID),
			"err", err)
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	if confirmation != "" {
		order.ID = confirmation
	}

	cart.Clear(ctx)

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.Int("items", order.Summary.ItemCount),
		slog.String("total", order.Summary.Total.StringFixed(2)),
		slog.String("shipping_method", string(method)))

	return order, nil
}

func (s *CheckoutService) validateDetails(shipping domain.ShippingDetails, payment domain.PaymentDetails) error {
	var problems []string
	for _, v := range []any{shipping, payment} {
		if err := s.validate.Struct(v); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return fmt.Errorf("%w: %v", domain.ErrInvalidCheckout, err)
			}
			for _, fe := range verrs {
				problems = append(problems, fieldProblem(fe))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidCheckout, strings.Join(problems, "; "))
	}
	return nil
}

func fieldProblem(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "card_expiry":
		return field + " must be MM/YY"
	case "numeric":
		return field + " must contain only digits"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
