package city

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/citypulse/citypulse/internal/platform/database/schema"
	"github.com/citypulse/citypulse/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// cityColumns is the SELECT list, in scan order.
var cityColumns = strings.Join(schema.City.Columns(), ", ")

func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*City, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, schema.City.Table)

	var total int
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_cities")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s ASC
		LIMIT $1 OFFSET $2;
	`,
		cityColumns,
		schema.City.Table,
		schema.City.Name,
	)

	rows, err := repository.db.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_cities")
	}
	defer rows.Close()

	var cities []*City
	for rows.Next() {
		c := &City{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Country, &c.Slug); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_city")
		}
		cities = append(cities, c)
	}

	return cities, total, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id int) (*City, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1;
	`,
		cityColumns,
		schema.City.Table,
		schema.City.ID,
	)

	c := &City{}
	err := repository.db.QueryRow(context, query, id).Scan(&c.ID, &c.Name, &c.Country, &c.Slug)
	if err != nil {
		return nil, dberr.Wrap(err, "get_city")
	}

	return c, nil
}

func (repository *PostgresRepository) FindByNameContains(context context.Context, fragment string) (*City, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s ILIKE '%%' || $1 || '%%'
		ORDER BY %s ASC
		LIMIT 1;
	`,
		cityColumns,
		schema.City.Table,
		schema.City.Name,
		schema.City.Name,
	)

	c := &City{}
	err := repository.db.QueryRow(context, query, fragment).Scan(&c.ID, &c.Name, &c.Country, &c.Slug)
	if err != nil {
		return nil, dberr.Wrap(err, "get_city_by_name")
	}

	return c, nil
}

func (repository *PostgresRepository) Search(context context.Context, query string, limit int) ([]*City, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s ILIKE '%%' || $1 || '%%'
		ORDER BY %s ASC
		LIMIT $2;
	`,
		cityColumns,
		schema.City.Table,
		schema.City.Name,
		schema.City.Name,
	)

	rows, err := repository.db.Query(context, sql, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "search_cities")
	}
	defer rows.Close()

	var cities []*City
	for rows.Next() {
		c := &City{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Country, &c.Slug); err != nil {
			return nil, dberr.Wrap(err, "scan_city")
		}
		cities = append(cities, c)
	}

	return cities, nil
}

func (repository *PostgresRepository) Create(context context.Context, city *City) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s;
	`,
		schema.City.Table,
		schema.City.Name,
		schema.City.Country,
		schema.City.Slug,
		schema.City.ID,
	)

	err := repository.db.QueryRow(context, query, city.Name, city.Country, city.Slug).Scan(&city.ID)

	return dberr.Wrap(err, "create_city")
}
