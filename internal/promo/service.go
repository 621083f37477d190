package promo

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/mserebryaakov/delivery-panel/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type PromoService interface {
	CreatePromo(ctx context.Context, input PromoInput) (*PromoView, error)
	UpdatePromo(ctx context.Context, id uuid.UUID, input PromoInput) (*PromoView, error)
	DeletePromo(ctx context.Context, id uuid.UUID) error
	GetPromo(ctx context.Context, id uuid.UUID) (*PromoView, error)
	GetPromos(ctx context.Context) ([]PromoView, error)

	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoCode, error)
	Redeem(ctx context.Context, promo *PromoCode) error
}

var maxSubtotal = decimal.RequireFromString("99999999.99")

type promoService struct {
	storage Storage
	logger  *logrus.Entry
	now     func() time.Time
}

func NewService(storage Storage, log *logrus.Entry) PromoService {
	return &promoService{
		storage: storage,
		logger:  log,
		now:     time.Now,
	}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *promoService) CreatePromo(ctx context.Context, input PromoInput) (*PromoView, error) {
	p := &PromoCode{ID: uuid.New(), IsActive: true}
	if err := apply(p, input); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, p); err != nil {
		return nil, err
	}

	if err := s.storage.CreatePromo(ctx, p); err != nil {
		return nil, apperror.Server("falha ao criar código promocional", err)
	}

	s.logger.Infof("promo %s created", p.Code)
	return s.view(*p), nil
}

func (s *promoService) UpdatePromo(ctx context.Context, id uuid.UUID, input PromoInput) (*PromoView, error) {
	p, err := s.storage.GetPromoByID(ctx, id)
	if err != nil {
		return nil, promoError(err)
	}

	if err := apply(p, input); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, p); err != nil {
		return nil, err
	}

	if err := s.storage.UpdatePromo(ctx, p); err != nil {
		return nil, promoError(err)
	}
	return s.view(*p), nil
}

func (s *promoService) DeletePromo(ctx context.Context, id uuid.UUID) error {
	if err := s.storage.DeletePromo(ctx, id); err != nil {
		return promoError(err)
	}
	s.logger.Infof("promo %s deleted", id)
	return nil
}

func (s *promoService) GetPromo(ctx context.Context, id uuid.UUID) (*PromoView, error) {
	p, err := s.storage.GetPromoByID(ctx, id)
	if err != nil {
		return nil, promoError(err)
	}
	return s.view(*p), nil
}

func (s *promoService) GetPromos(ctx context.Context) ([]PromoView, error) {
	promos, err := s.storage.GetPromos(ctx)
	if err != nil {
		return nil, apperror.Server("falha ao listar códigos promocionais", err)
	}

	views := make([]PromoView, 0, len(promos))
	for _, p := range promos {
		views = append(views, *s.view(p))
	}
	return views, nil
}

// Validate checks that code can be applied to an order of subtotal right now.
func (s *promoService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoCode, error) {
	if !validation.DecimalWithin(subtotal, maxSubtotal) {
		return nil, apperror.Validation("subtotal inválido")
	}

	p, err := s.storage.GetPromoByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, promoError(err)
	}

	now := s.now()
	switch p.State(now) {
	case StateInactive:
		return nil, rejected("código promocional inativo", ErrPromoInactive)
	case StateExpired:
		return nil, rejected("código promocional expirado", ErrPromoExpired)
	case StateDepleted:
		return nil, rejected("código promocional esgotado", ErrPromoDepleted)
	}

	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return nil, rejected("código promocional ainda não está válido", ErrPromoNotStarted)
	}
	if p.MinOrderValue.Valid && subtotal.LessThan(p.MinOrderValue.Decimal) {
		return nil, rejected("pedido mínimo para este código: R$ "+p.MinOrderValue.Decimal.StringFixed(2), ErrBelowMinimum)
	}

	return p, nil
}

func (s *promoService) Redeem(ctx context.Context, p *PromoCode) error {
	if err := s.storage.IncrementUsage(ctx, p.ID); err != nil {
		if errors.Is(err, ErrPromoDepleted) {
			return rejected("código promocional esgotado", err)
		}
		return apperror.Server("falha ao registrar uso do código promocional", err)
	}
	s.logger.Debugf("promo %s redeemed", p.Code)
	return nil
}

func (s *promoService) ensureUnique(ctx context.Context, p *PromoCode) error {
	existing, err := s.storage.GetPromoByCode(ctx, p.Code)
	if err != nil {
		if errors.Is(err, ErrPromoNotFound) {
			return nil
		}
		return apperror.Server("falha ao verificar código promocional", err)
	}
	if existing.ID != p.ID {
		return apperror.NewError(apperror.ConflictAppError, "código promocional já existe", http.StatusConflict, nil)
	}
	return nil
}

func (s *promoService) view(p PromoCode) *PromoView {
	state := p.State(s.now())
	return &PromoView{PromoCode: p, Status: state, StatusLabel: state.Label()}
}

func apply(p *PromoCode, input PromoInput) error {
	code := NormalizeCode(input.Code)
	if code == "" {
		return apperror.Validation("código é obrigatório")
	}

	switch input.DiscountType {
	case Percentage:
		if !input.DiscountValue.IsPositive() || input.DiscountValue.GreaterThan(hundred) {
			return apperror.Validation("percentual deve estar entre 0 e 100")
		}
	case Fixed:
		if !input.DiscountValue.IsPositive() {
			return apperror.Validation("valor do desconto deve ser maior que zero")
		}
	default:
		return apperror.Validation("tipo de desconto inválido")
	}

	if input.MinOrderValue.Valid && input.MinOrderValue.Decimal.IsNegative() {
		return apperror.Validation("pedido mínimo não pode ser negativo")
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return apperror.Validation("data final anterior à data inicial")
	}

	p.Code = code
	p.Description = input.Description
	p.DiscountType = input.DiscountType
	p.DiscountValue = input.DiscountValue.Round(2)
	p.MinOrderValue = input.MinOrderValue
	p.UsageLimit = input.UsageLimit
	p.ValidFrom = input.ValidFrom
	p.ValidUntil = input.ValidUntil
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	return nil
}

func rejected(message string, err error) error {
	return apperror.NewError(apperror.ValidationAppError, message, http.StatusUnprocessableEntity, err)
}

func promoError(err error) error {
	if errors.Is(err, ErrPromoNotFound) {
		return apperror.NotFound("código promocional não encontrado", err)
	}
	return apperror.Server("falha ao acessar código promocional", err)
}
