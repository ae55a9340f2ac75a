package service

import (
	"github.com/munakata1001/jujutsukaisenapp/internal/db"
	"github.com/munakata1001/jujutsukaisenapp/internal/entities"
)

type ProductService struct {
	Repo ProductStore
}

func NewProductService(repo ProductStore) *ProductService {
	return &ProductService{Repo: repo}
}

func (s *ProductService) ListProducts() ([]entities.ProductResponse, error) {
	products, err := s.Repo.ListProducts()
	if err != nil {
		return nil, err
	}
	responses := make([]entities.ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, toProductResponse(p))
	}
	return responses, nil
}

func (s *ProductService) GetProduct(id string) (*entities.ProductResponse, error) {
	product, err := s.Repo.GetProduct(id)
	if err != nil {
		return nil, err
	}
	response := toProductResponse(*product)
	return &response, nil
}

func toProductResponse(p db.Product) entities.ProductResponse {
	return entities.ProductResponse{
		ProductID:         p.ID,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price,
		MaxPerReservation: p.MaxPerReservation,
	}
}
