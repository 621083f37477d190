package product

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/sirupsen/logrus"
)

type ProductService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProducts(ctx context.Context, filter Filter) ([]Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error)
	Menu(ctx context.Context) ([]Category, error)
}

type productService struct {
	storage Storage
	logger  *logrus.Entry
}

func NewService(storage Storage, log *logrus.Entry) ProductService {
	return &productService{
		storage: storage,
		logger:  log,
	}
}

func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	p := &Product{ID: uuid.New(), IsAvailable: true}
	if err := apply(p, input); err != nil {
		return nil, err
	}

	if err := s.storage.CreateProduct(ctx, p); err != nil {
		return nil, apperror.Server("falha ao criar produto", err)
	}

	s.logger.Infof("product %q created (%s)", p.Name, p.ID)
	return p, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*Product, error) {
	p, err := s.storage.GetProductByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}

	if err := apply(p, input); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateProduct(ctx, p); err != nil {
		return nil, productError(err)
	}
	return p, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.storage.DeleteProduct(ctx, id); err != nil {
		return productError(err)
	}
	s.logger.Infof("product %s deleted", id)
	return nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.storage.GetProductByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}
	return p, nil
}

func (s *productService) GetProducts(ctx context.Context, filter Filter) ([]Product, error) {
	products, err := s.storage.GetProducts(ctx, filter)
	if err != nil {
		return nil, apperror.Server("falha ao listar produtos", err)
	}
	return products, nil
}

func (s *productService) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	products, err := s.storage.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Server("falha ao carregar produtos", err)
	}

	byID := make(map[uuid.UUID]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// Menu groups the available products by category, categories by name with
// the uncategorized group last.
func (s *productService) Menu(ctx context.Context) ([]Category, error) {
	products, err := s.GetProducts(ctx, Filter{AvailableOnly: true})
	if err != nil {
		return nil, err
	}
	return groupByCategory(products), nil
}

func groupByCategory(products []Product) []Category {
	groups := map[string][]Product{}
	for _, p := range products {
		name := UncategorizedName
		if p.Category != nil && strings.TrimSpace(*p.Category) != "" {
			name = strings.TrimSpace(*p.Category)
		}
		groups[name] = append(groups[name], p)
	}

	categories := make([]Category, 0, len(groups))
	for name, items := range groups {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
		categories = append(categories, Category{Name: name, Products: items})
	}

	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Name == UncategorizedName {
			return false
		}
		if categories[j].Name == UncategorizedName {
			return true
		}
		return categories[i].Name < categories[j].Name
	})
	return categories
}

func apply(p *Product, input ProductInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperror.Validation("nome do produto é obrigatório")
	}
	if !input.Price.IsPositive() {
		return apperror.Validation("preço deve ser maior que zero")
	}

	p.Name = name
	p.Description = input.Description
	p.Price = input.Price.Round(2)
	p.Category = input.Category
	p.ImageURL = input.ImageURL
	if input.IsAvailable != nil {
		p.IsAvailable = *input.IsAvailable
	}
	return nil
}

func productError(err error) error {
	if errors.Is(err, errProductNotFound) {
		return apperror.NotFound("produto não encontrado", err)
	}
	return apperror.Server("falha ao acessar produto", err)
}
