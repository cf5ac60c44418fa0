package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
)

var ErrConstructorNameRequired = errors.New("constructor name is required")

type ConstructorService interface {
	CreateConstructor(ctx context.Context, name string) (*models.Constructor, error)
	ListConstructors(ctx context.Context) ([]models.Constructor, error)
}

type constructorService struct {
	constructorRepo repositories.ConstructorRepository
}

func NewConstructorService(constructorRepo repositories.ConstructorRepository) ConstructorService {
	return &constructorService{
		constructorRepo: constructorRepo,
	}
}

func (s *constructorService) CreateConstructor(ctx context.Context, name string) (*models.Constructor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrConstructorNameRequired
	}

	constructor := &models.Constructor{Name: name}

	if err := s.constructorRepo.Create(ctx, constructor); err != nil {
		if errors.Is(err, repositories.ErrConstructorNameConflict) {
			return nil, ErrConstructorConflict
		}
		return nil, fmt.Errorf("failed to create constructor: %w", err)
	}
	return constructor, nil
}

func (s *constructorService) ListConstructors(ctx context.Context) ([]models.Constructor, error) {
	constructors, err := s.constructorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list constructors: %w", err)
	}
	return constructors, nil
}
