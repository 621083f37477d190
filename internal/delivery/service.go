package delivery

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/internal/kvstore"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/mserebryaakov/delivery-panel/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// maxFee is the numeric(10,2) column limit.
var maxFee = decimal.RequireFromString("99999999.99")

type DeliveryService interface {
	Estimate(radiusKm decimal.Decimal) (Estimate, error)

	ListZones(ctx context.Context, activeOnly bool) ([]Zone, error)
	GetZone(ctx context.Context, id uuid.UUID) (*Zone, error)
	ActiveZone(ctx context.Context, id uuid.UUID) (*Zone, error)
	CreateZone(ctx context.Context, input ZoneInput) (*Zone, error)
	UpdateZone(ctx context.Context, id uuid.UUID, input ZoneInput) (*Zone, error)
	DeleteZone(ctx context.Context, id uuid.UUID) error

	BusinessAddress(ctx context.Context) (*Address, error)
	SetBusinessAddress(ctx context.Context, address Address) (*Address, error)
}

type deliveryService struct {
	storage Storage
	kv      kvstore.Store
	rates   Rates
	logger  *logrus.Entry
}

func NewService(storage Storage, kv kvstore.Store, rates Rates, log *logrus.Entry) DeliveryService {
	return &deliveryService{
		storage: storage,
		kv:      kv,
		rates:   rates,
		logger:  log,
	}
}

func (s *deliveryService) Estimate(radiusKm decimal.Decimal) (Estimate, error) {
	estimate, err := s.rates.Estimate(radiusKm)
	if err != nil {
		return Estimate{}, apperror.NewError(apperror.ValidationAppError, msgInvalidRadius, http.StatusBadRequest, err)
	}
	return estimate, nil
}

func (s *deliveryService) ListZones(ctx context.Context, activeOnly bool) ([]Zone, error) {
	zones, err := s.storage.ListZones(ctx, activeOnly)
	if err != nil {
		return nil, apperror.Server("falha ao listar zonas de entrega", err)
	}
	return zones, nil
}

func (s *deliveryService) GetZone(ctx context.Context, id uuid.UUID) (*Zone, error) {
	zone, err := s.storage.GetZone(ctx, id)
	if err != nil {
		return nil, zoneError(err)
	}
	return zone, nil
}

// ActiveZone is GetZone for checkout: inactive zones cannot be picked.
func (s *deliveryService) ActiveZone(ctx context.Context, id uuid.UUID) (*Zone, error) {
	zone, err := s.GetZone(ctx, id)
	if err != nil {
		return nil, err
	}
	if !zone.Active {
		return nil, apperror.Validation("zona de entrega indisponível")
	}
	return zone, nil
}

func (s *deliveryService) CreateZone(ctx context.Context, input ZoneInput) (*Zone, error) {
	address, err := s.BusinessAddress(ctx)
	if err != nil {
		if apperror.IsKind(err, apperror.NotFoundAppError) {
			return nil, apperror.NewError(apperror.ConflictAppError,
				"Configure o endereço do estabelecimento antes de criar zonas", http.StatusConflict, err)
		}
		return nil, err
	}

	zone := &Zone{ID: uuid.New(), Active: true}
	if err := s.apply(zone, input); err != nil {
		return nil, err
	}

	if err := s.storage.CreateZone(ctx, zone); err != nil {
		return nil, apperror.Server("falha ao criar zona de entrega", err)
	}

	s.logger.Infof("zone %q created (%s km around %s)", zone.Name, zone.RadiusKm, address.City)
	return zone, nil
}

func (s *deliveryService) UpdateZone(ctx context.Context, id uuid.UUID, input ZoneInput) (*Zone, error) {
	zone, err := s.storage.GetZone(ctx, id)
	if err != nil {
		return nil, zoneError(err)
	}

	if err := s.apply(zone, input); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateZone(ctx, zone); err != nil {
		return nil, zoneError(err)
	}
	return zone, nil
}

func (s *deliveryService) DeleteZone(ctx context.Context, id uuid.UUID) error {
	if err := s.storage.DeleteZone(ctx, id); err != nil {
		return zoneError(err)
	}
	s.logger.Infof("zone %s deleted", id)
	return nil
}

func (s *deliveryService) BusinessAddress(ctx context.Context) (*Address, error) {
	var address Address
	err := kvstore.Get(ctx, s.kv, AddressKey, &address)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, apperror.NotFound("endereço do estabelecimento não configurado", errAddressNotFound)
		}
		return nil, apperror.Server("falha ao carregar endereço", err)
	}
	if !address.Complete() {
		return nil, apperror.NotFound("endereço do estabelecimento incompleto", errAddressNotFound)
	}
	return &address, nil
}

func (s *deliveryService) SetBusinessAddress(ctx context.Context, address Address) (*Address, error) {
	if !address.Complete() {
		return nil, apperror.Validation("rua, número, cidade e estado são obrigatórios")
	}
	if err := kvstore.Set(ctx, s.kv, AddressKey, address); err != nil {
		return nil, apperror.Server("falha ao salvar endereço", err)
	}
	s.logger.Infof("business address set to %s", address)
	return &address, nil
}

// apply validates input and copies it onto zone. Missing fee or times come
// from the radius estimate.
func (s *deliveryService) apply(zone *Zone, input ZoneInput) error {
	name := strings.TrimSpace(input.Name)
	if utf8.RuneCountInString(name) < 2 {
		return apperror.Validation("Nome deve ter pelo menos 2 caracteres")
	}

	estimate, err := s.rates.Estimate(input.RadiusKm)
	if err != nil {
		return apperror.Validation(msgInvalidRadius)
	}

	fee := estimate.Fee
	if input.Fee.Valid {
		fee = input.Fee.Decimal
	}
	if fee.IsNegative() {
		return apperror.Validation("Taxa não pode ser negativa")
	}
	if !validation.DecimalWithin(fee, maxFee) {
		return apperror.Validation("Taxa acima do permitido")
	}

	minTime, maxTime := estimate.MinTime, estimate.MaxTime
	if input.MinTime != nil {
		minTime = *input.MinTime
	}
	if input.MaxTime != nil {
		maxTime = *input.MaxTime
	}
	if minTime < 0 || maxTime < 0 {
		return apperror.Validation("Tempo estimado não pode ser negativo")
	}
	if minTime > maxTime {
		return apperror.Validation("Tempo mínimo não pode ser maior que o máximo")
	}

	if input.MinOrderValue.Valid && input.MinOrderValue.Decimal.IsNegative() {
		return apperror.Validation("Pedido mínimo não pode ser negativo")
	}

	zone.Name = name
	zone.RadiusKm = input.RadiusKm
	zone.Fee = fee.Round(2)
	zone.MinTime = minTime
	zone.MaxTime = maxTime
	zone.Description = input.Description
	zone.MinOrderValue = input.MinOrderValue
	zone.Color = input.Color
	if input.Active != nil {
		zone.Active = *input.Active
	}
	return nil
}

func zoneError(err error) error {
	if errors.Is(err, errZoneNotFound) {
		return apperror.NotFound("zona de entrega não encontrada", err)
	}
	return apperror.Server("falha ao acessar zona de entrega", err)
}
