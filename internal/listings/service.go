package listings

import (
	"context"
	"errors"

	"github.com/Lelo88/listings-api-golang/internal/validation"
	"github.com/jackc/pgx/v5"
)

// RepositoryAPI es lo que el service necesita del almacenamiento.
type RepositoryAPI interface {
	FindAll(ctx context.Context) ([]Listing, error)
	FindByID(ctx context.Context, id int64) (Listing, error)
	Save(ctx context.Context, listing Listing) (Listing, error)
	DeleteByID(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// Service contiene las reglas de negocio de listings.
// No guarda estado entre llamadas: la fuente de verdad es el repositorio.
type Service struct {
	repository RepositoryAPI
}

// NewService crea un service de listings.
func NewService(repository RepositoryAPI) *Service {
	return &Service{repository: repository}
}

// ListAll devuelve todos los listings en el orden del almacenamiento.
func (service *Service) ListAll(ctx context.Context) ([]ListingDTO, error) {
	listings, err := service.repository.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]ListingDTO, 0, len(listings))
	for _, listing := range listings {
		dtos = append(dtos, toDTO(listing))
	}
	return dtos, nil
}

// Get obtiene un listing por id.
func (service *Service) Get(ctx context.Context, id int64) (ListingDTO, error) {
	listing, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return ListingDTO{}, notFoundOr(err, id)
	}
	return toDTO(listing), nil
}

// Create valida el input y persiste un listing nuevo.
func (service *Service) Create(ctx context.Context, input CreateListingInput) (ListingDTO, error) {
	if err := validation.Validate(input); err != nil {
		return ListingDTO{}, newValidationError(err)
	}

	saved, err := service.repository.Save(ctx, newListing(input))
	if err != nil {
		return ListingDTO{}, err
	}
	return toDTO(saved), nil
}

// Update pisa los campos presentes en el input y conserva el resto.
// Primero busca el registro: un id inexistente es NotFound aunque el input sea inválido.
func (service *Service) Update(ctx context.Context, id int64, input UpdateListingInput) (ListingDTO, error) {
	listing, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return ListingDTO{}, notFoundOr(err, id)
	}

	if err := validateUpdate(input); err != nil {
		return ListingDTO{}, err
	}

	input.applyTo(&listing)
	listing.ID = id

	saved, err := service.repository.Save(ctx, listing)
	if err != nil {
		return ListingDTO{}, notFoundOr(err, id)
	}
	return toDTO(saved), nil
}

// Delete borra un listing de forma definitiva.
func (service *Service) Delete(ctx context.Context, id int64) error {
	exists, err := service.repository.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return &NotFoundError{ID: id}
	}

	if err := service.repository.DeleteByID(ctx, id); err != nil {
		return notFoundOr(err, id)
	}
	return nil
}

// validateUpdate aplica a cada campo presente las mismas reglas que en la creación.
func validateUpdate(input UpdateListingInput) error {
	fields := make(map[string]string)

	check := func(name string, set bool, value any, tag string) {
		if !set {
			return
		}
		if err := validation.Var(value, tag); err != nil {
			fields[name] = validation.Message(err)
		}
	}
	check("title", input.Title.Set, input.Title.Value, "required,notblank")
	check("description", input.Description.Set, input.Description.Value, "required,notblank,max=1000")
	check("price", input.Price.Set, input.Price.Value, "required,positive")

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func newValidationError(err error) error {
	fields := validation.FormatValidationErrors(err)
	if len(fields) == 0 {
		return err
	}
	return &ValidationError{Fields: fields}
}

// notFoundOr traduce los "no existe" del repositorio a NotFoundError con el id pedido.
func notFoundOr(err error, id int64) error {
	if errors.Is(err, ErrorNotFound) || errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{ID: id}
	}
	return err
}
