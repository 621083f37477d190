package settings

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/internal/kvstore"
	"github.com/mserebryaakov/delivery-panel/internal/notify"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/sirupsen/logrus"
)

type SettingsService interface {
	Company(ctx context.Context) (*CompanySettings, error)
	UpdateCompany(ctx context.Context, input CompanyInput) (*CompanySettings, error)
	Preferences(ctx context.Context) (Preferences, error)
	UpdatePreferences(ctx context.Context, update PreferencesUpdate) (Preferences, error)

	BusinessPhone(ctx context.Context) (string, error)
	NotificationFlags(ctx context.Context) (notify.Flags, error)
	PrinterWidth(ctx context.Context) int
	CompanyName(ctx context.Context) string
}

type settingsService struct {
	storage      Storage
	kv           kvstore.Store
	defaultWidth int
	logger       *logrus.Entry
}

func NewService(storage Storage, kv kvstore.Store, defaultWidth int, log *logrus.Entry) SettingsService {
	return &settingsService{
		storage:      storage,
		kv:           kv,
		defaultWidth: defaultWidth,
		logger:       log,
	}
}

func (s *settingsService) Company(ctx context.Context) (*CompanySettings, error) {
	settings, err := s.storage.GetCompany(ctx)
	if err != nil {
		if errors.Is(err, errSettingsNotFound) {
			return nil, apperror.NotFound("configurações da empresa não encontradas", err)
		}
		return nil, apperror.Server("falha ao carregar configurações", err)
	}
	return settings, nil
}

func (s *settingsService) UpdateCompany(ctx context.Context, input CompanyInput) (*CompanySettings, error) {
	if strings.TrimSpace(input.WhatsappNumber) == "" {
		return nil, apperror.Validation("número do WhatsApp é obrigatório")
	}
	if input.DeliveryFee.Valid && input.DeliveryFee.Decimal.IsNegative() {
		return nil, apperror.Validation("taxa de entrega não pode ser negativa")
	}
	if input.MinimumOrder.Valid && input.MinimumOrder.Decimal.IsNegative() {
		return nil, apperror.Validation("pedido mínimo não pode ser negativo")
	}

	settings, err := s.storage.GetCompany(ctx)
	if err != nil {
		if !errors.Is(err, errSettingsNotFound) {
			return nil, apperror.Server("falha ao carregar configurações", err)
		}
		settings = &CompanySettings{ID: uuid.New()}
	}

	settings.WhatsappNumber = strings.TrimSpace(input.WhatsappNumber)
	settings.CompanyName = input.CompanyName
	settings.CompanyAddress = input.CompanyAddress
	settings.DeliveryFee = input.DeliveryFee
	settings.MinimumOrder = input.MinimumOrder

	if err := s.storage.SaveCompany(ctx, settings); err != nil {
		return nil, apperror.Server("falha ao salvar configurações", err)
	}

	s.logger.Infof("company settings saved (%s)", settings.ID)
	return settings, nil
}

func (s *settingsService) Preferences(ctx context.Context) (Preferences, error) {
	flags, err := s.NotificationFlags(ctx)
	if err != nil {
		return Preferences{}, err
	}

	prefs := Preferences{
		Notifications: flags,
		PrinterWidth:  s.PrinterWidth(ctx),
		CompanyName:   DefaultCompanyName,
	}

	if err := s.optional(ctx, keyPrinterHeight, &prefs.PrinterHeight); err != nil {
		return Preferences{}, err
	}
	if err := s.optional(ctx, keyCompanyName, &prefs.CompanyName); err != nil {
		return Preferences{}, err
	}
	if err := s.optional(ctx, keyCompanyLogo, &prefs.CompanyLogo); err != nil {
		return Preferences{}, err
	}

	return prefs, nil
}

func (s *settingsService) UpdatePreferences(ctx context.Context, update PreferencesUpdate) (Preferences, error) {
	if update.CompanyLogo != nil && *update.CompanyLogo != "" {
		if err := validateLogo(*update.CompanyLogo); err != nil {
			return Preferences{}, apperror.NewError(apperror.ValidationAppError, "logo inválido", http.StatusBadRequest, err)
		}
	}
	if update.CompanyName != nil && strings.TrimSpace(*update.CompanyName) == "" {
		return Preferences{}, apperror.Validation("nome da empresa não pode ser vazio")
	}

	values := map[string]any{}
	if update.SoundEnabled != nil {
		values[keySound] = *update.SoundEnabled
	}
	if update.WhatsappEnabled != nil {
		values[keyWhatsapp] = *update.WhatsappEnabled
	}
	if update.AutoConfirm != nil {
		values[keyAutoConfirm] = *update.AutoConfirm
	}
	if update.DeliveryEnabled != nil {
		values[keyDelivery] = *update.DeliveryEnabled
	}
	if update.PrinterWidth != nil {
		values[keyPrinterWidth] = *update.PrinterWidth
	}
	if update.PrinterHeight != nil {
		values[keyPrinterHeight] = *update.PrinterHeight
	}
	if update.CompanyName != nil {
		values[keyCompanyName] = strings.TrimSpace(*update.CompanyName)
	}

	for key, value := range values {
		if err := kvstore.Set(ctx, s.kv, key, value); err != nil {
			return Preferences{}, apperror.Server("falha ao salvar preferências", err)
		}
	}

	if update.CompanyLogo != nil {
		var err error
		if *update.CompanyLogo == "" {
			err = s.kv.Delete(ctx, keyCompanyLogo)
		} else {
			err = kvstore.Set(ctx, s.kv, keyCompanyLogo, *update.CompanyLogo)
		}
		if err != nil {
			return Preferences{}, apperror.Server("falha ao salvar logo", err)
		}
	}

	return s.Preferences(ctx)
}

func (s *settingsService) BusinessPhone(ctx context.Context) (string, error) {
	settings, err := s.storage.GetCompany(ctx)
	if err != nil {
		return "", err
	}
	if settings.WhatsappNumber == "" {
		return "", notify.ErrNoBusinessPhone
	}
	return settings.WhatsappNumber, nil
}

// NotificationFlags reads the four switches. A switch never saved is on.
func (s *settingsService) NotificationFlags(ctx context.Context) (notify.Flags, error) {
	flags := notify.AllEnabled()

	for key, dst := range map[string]*bool{
		keySound:       &flags.Sound,
		keyWhatsapp:    &flags.Whatsapp,
		keyAutoConfirm: &flags.AutoConfirm,
		keyDelivery:    &flags.Delivery,
	} {
		if err := s.optional(ctx, key, dst); err != nil {
			return notify.AllEnabled(), err
		}
	}

	return flags, nil
}

// PrinterWidth is the saved paper width in mm, 58 or 80.
func (s *settingsService) PrinterWidth(ctx context.Context) int {
	width := s.defaultWidth
	if err := s.optional(ctx, keyPrinterWidth, &width); err != nil {
		s.logger.Warnf("printer width: %v", err)
		return s.defaultWidth
	}
	if width != 58 && width != 80 {
		return s.defaultWidth
	}
	return width
}

// CompanyName prefers the panel preference, then the company row.
func (s *settingsService) CompanyName(ctx context.Context) string {
	var name string
	if err := s.optional(ctx, keyCompanyName, &name); err == nil && name != "" {
		return name
	}

	settings, err := s.storage.GetCompany(ctx)
	if err == nil && settings.CompanyName != nil && *settings.CompanyName != "" {
		return *settings.CompanyName
	}
	return DefaultCompanyName
}

func (s *settingsService) optional(ctx context.Context, key string, dst any) error {
	err := kvstore.Get(ctx, s.kv, key, dst)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return apperror.Server("falha ao carregar preferências", err)
	}
	return nil
}

func validateLogo(logo string) error {
	header, payload, ok := strings.Cut(logo, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return errInvalidLogo
	}
	if len(payload)/4*3 > maxLogoBytes {
		return errLogoTooLarge
	}
	return nil
}
