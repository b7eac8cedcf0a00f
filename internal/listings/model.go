package listings

import (
	"encoding/json"
	"time"
)

// Listing representa un registro persistido en la tabla listings.
// No tiene tags JSON: nunca sale del paquete sin pasar por ListingDTO.
type Listing struct {
	ID          int64
	Title       string
	Description string
	Price       Price
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ImageURL    *string
	Category    *string
	Status      *string
}

// ListingDTO es la forma pública de un listing (respuestas HTTP).
// Los opcionales ausentes se serializan como null.
type ListingDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       Price     `json:"price"`
	ImageURL    *string   `json:"imageUrl"`
	Category    *string   `json:"category"`
	Status      *string   `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateListingInput representa el payload para crear un listing.
// Un id enviado por el cliente se ignora.
type CreateListingInput struct {
	Title       string  `json:"title" validate:"required,notblank"`
	Description string  `json:"description" validate:"required,notblank,max=1000"`
	Price       Price   `json:"price" validate:"required,positive"`
	ImageURL    *string `json:"imageUrl"`
	Category    *string `json:"category"`
	Status      *string `json:"status"`
}

// UnmarshalJSON acepta también los nombres "titre" y "prix" que usaban los clientes viejos.
// Si llegan ambos nombres, gana el nombre en inglés.
func (input *CreateListingInput) UnmarshalJSON(data []byte) error {
	type plain CreateListingInput
	var payload struct {
		plain
		Titre *string `json:"titre"`
		Prix  *Price  `json:"prix"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	*input = CreateListingInput(payload.plain)
	if input.Title == "" && payload.Titre != nil {
		input.Title = *payload.Titre
	}
	if input.Price == "" && payload.Prix != nil {
		input.Price = *payload.Prix
	}
	return nil
}

// UpdateListingInput representa el payload de PUT /listings/{id}.
// Cada campo es Optional: solo se pisa lo que el cliente envió con valor no nulo.
type UpdateListingInput struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Price       Optional[Price]  `json:"price"`
	ImageURL    Optional[string] `json:"imageUrl"`
	Category    Optional[string] `json:"category"`
	Status      Optional[string] `json:"status"`
}

// UnmarshalJSON acepta los alias "titre" y "prix" igual que en la creación.
func (input *UpdateListingInput) UnmarshalJSON(data []byte) error {
	type plain UpdateListingInput
	var payload struct {
		plain
		Titre Optional[string] `json:"titre"`
		Prix  Optional[Price]  `json:"prix"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	*input = UpdateListingInput(payload.plain)
	if !input.Title.Set && payload.Titre.Set {
		input.Title = payload.Titre
	}
	if !input.Price.Set && payload.Prix.Set {
		input.Price = payload.Prix
	}
	return nil
}

// applyTo pisa en el registro los campos presentes en el input.
func (input UpdateListingInput) applyTo(listing *Listing) {
	if input.Title.Set {
		listing.Title = input.Title.Value
	}
	if input.Description.Set {
		listing.Description = input.Description.Value
	}
	if input.Price.Set {
		listing.Price = input.Price.Value
	}
	if input.ImageURL.Set {
		listing.ImageURL = stringPointer(input.ImageURL.Value)
	}
	if input.Category.Set {
		listing.Category = stringPointer(input.Category.Value)
	}
	if input.Status.Set {
		listing.Status = stringPointer(input.Status.Value)
	}
}

func newListing(input CreateListingInput) Listing {
	return Listing{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Category:    input.Category,
		Status:      input.Status,
	}
}

func toDTO(listing Listing) ListingDTO {
	return ListingDTO{
		ID:          listing.ID,
		Title:       listing.Title,
		Description: listing.Description,
		Price:       listing.Price,
		ImageURL:    listing.ImageURL,
		Category:    listing.Category,
		Status:      listing.Status,
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}

func stringPointer(value string) *string {
	return &value
}
