package listings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// database es lo mínimo que el repositorio usa del pool.
// *pgxpool.Pool lo cumple; en tests se reemplaza por un fake.
type database interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository accede a la tabla listings.
// Contiene SQL y mapeo DB → modelo.
type Repository struct {
	database database
	now      func() time.Time
}

// NewRepository crea un repositorio de listings.
func NewRepository(database database) *Repository {
	return &Repository{database: database, now: time.Now}
}

const listingColumns = `id, title, description, price::text, created_at, updated_at, image_url, category, status`

// FindAll devuelve todos los listings ordenados por id.
func (repository *Repository) FindAll(ctx context.Context) ([]Listing, error) {
	const query = `SELECT ` + listingColumns + ` FROM listings ORDER BY id;`

	rows, err := repository.database.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	listings := make([]Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}

	return listings, nil
}

// FindByID devuelve ErrorNotFound si no hay fila con ese id.
func (repository *Repository) FindByID(ctx context.Context, id int64) (Listing, error) {
	const query = `SELECT ` + listingColumns + ` FROM listings WHERE id = $1;`

	listing, err := scanListing(repository.database.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrorNotFound
		}
		return Listing{}, fmt.Errorf("find listing %d: %w", id, err)
	}
	return listing, nil
}

// Save inserta si listing.ID es 0, si no actualiza la fila existente.
// Los timestamps los fija el repositorio; created_at nunca se toca en un update.
func (repository *Repository) Save(ctx context.Context, listing Listing) (Listing, error) {
	// Postgres guarda microsegundos: truncamos para que lo devuelto sea lo guardado.
	now := repository.now().UTC().Truncate(time.Microsecond)

	if listing.ID == 0 {
		return repository.insert(ctx, listing, now)
	}
	return repository.update(ctx, listing, now)
}

func (repository *Repository) insert(ctx context.Context, listing Listing, now time.Time) (Listing, error) {
	const query = `
		INSERT INTO listings (title, description, price, image_url, category, status, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $7)
		RETURNING ` + listingColumns + `;
	`

	saved, err := scanListing(repository.database.QueryRow(ctx, query,
		listing.Title, listing.Description, string(listing.Price),
		listing.ImageURL, listing.Category, listing.Status, now,
	))
	if err != nil {
		return Listing{}, translateError("insert listing", err)
	}
	return saved, nil
}

func (repository *Repository) update(ctx context.Context, listing Listing, now time.Time) (Listing, error) {
	// GREATEST asegura updated_at estrictamente mayor aunque el reloj no avance.
	const query = `
		UPDATE listings
		SET title = $1,
		    description = $2,
		    price = $3::numeric,
		    image_url = $4,
		    category = $5,
		    status = $6,
		    updated_at = GREATEST($7, updated_at + INTERVAL '1 microsecond')
		WHERE id = $8
		RETURNING ` + listingColumns + `;
	`

	saved, err := scanListing(repository.database.QueryRow(ctx, query,
		listing.Title, listing.Description, string(listing.Price),
		listing.ImageURL, listing.Category, listing.Status, now, listing.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrorNotFound
		}
		return Listing{}, translateError(fmt.Sprintf("update listing %d", listing.ID), err)
	}
	return saved, nil
}

// DeleteByID devuelve ErrorNotFound si no se borró ninguna fila.
func (repository *Repository) DeleteByID(ctx context.Context, id int64) error {
	const query = `DELETE FROM listings WHERE id = $1;`

	tag, err := repository.database.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete listing %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (repository *Repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM listings WHERE id = $1);`

	var exists bool
	if err := repository.database.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check listing %d: %w", id, err)
	}
	return exists, nil
}

func scanListing(row pgx.Row) (Listing, error) {
	var (
		listing Listing
		price   string
	)
	err := row.Scan(
		&listing.ID, &listing.Title, &listing.Description, &price,
		&listing.CreatedAt, &listing.UpdatedAt,
		&listing.ImageURL, &listing.Category, &listing.Status,
	)
	if err != nil {
		return Listing{}, err
	}
	listing.Price = Price(price)
	listing.CreatedAt = listing.CreatedAt.UTC()
	listing.UpdatedAt = listing.UpdatedAt.UTC()
	return listing, nil
}

// translateError convierte violaciones de constraints en ErrorInvalidInput.
func translateError(operation string, err error) error {
	var postgresError *pgconn.PgError
	if errors.As(err, &postgresError) {
		switch postgresError.Code {
		// check_violation, not_null_violation, string_data_right_truncation,
		// character_not_in_repertoire (\u0000 en un texto), numeric_value_out_of_range
		case "23514", "23502", "22001", "22021", "22003":
			return fmt.Errorf("%s: %w: %s", operation, ErrorInvalidInput, postgresError.Message)
		}
	}
	return fmt.Errorf("%s: %w", operation, err)
}
