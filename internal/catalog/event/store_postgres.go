package event

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

// eventColumns is the SELECT list in scan order; eventColumnsPrefixed is the
// same list qualified for the joined single-event read.
var (
	eventColumns         = strings.Join(schema.Event.Columns(), ", ")
	eventColumnsPrefixed = "e." + strings.Join(schema.Event.Columns(), ", e.")
)

func (repository *PostgresRepository) ListByCity(context context.Context, cityID, limit, offset int) ([]*Event, int, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE %s = $1;
	`,
		schema.Event.Table,
		schema.Event.CityID,
	)

	var total int
	if err := repository.db.QueryRow(context, countQuery, cityID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_events_by_city")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC NULLS LAST, %s ASC
		LIMIT $2 OFFSET $3;
	`,
		eventColumns,
		schema.Event.Table,
		schema.Event.CityID,
		schema.Event.EventDate,
		schema.Event.ID,
	)

	rows, err := repository.db.Query(context, query, cityID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_events_by_city")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.Location, &e.EventDate, &e.ImageURL, &e.IsFeatured, &e.CityID); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_event")
		}
		events = append(events, e)
	}

	return events, total, nil
}

func (repository *PostgresRepository) Featured(context context.Context, limit int) ([]*Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = TRUE AND %s >= NOW()
		ORDER BY %s ASC
		LIMIT $1;
	`,
		eventColumns,
		schema.Event.Table,
		schema.Event.IsFeatured,
		schema.Event.EventDate,
		schema.Event.EventDate,
	)

	rows, err := repository.db.Query(context, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_featured_events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.Location, &e.EventDate, &e.ImageURL, &e.IsFeatured, &e.CityID); err != nil {
			return nil, dberr.Wrap(err, "scan_event")
		}
		events = append(events, e)
	}

	return events, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id int) (*Event, error) {
	query := fmt.Sprintf(`
		SELECT %s, c.%s
		FROM %s e
		JOIN %s c ON c.%s = e.%s
		WHERE e.%s = $1;
	`,
		eventColumnsPrefixed,
		schema.City.Name,
		schema.Event.Table,
		schema.City.Table,
		schema.City.ID,
		schema.Event.CityID,
		schema.Event.ID,
	)

	e := &Event{}
	err := repository.db.QueryRow(context, query, id).
		Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.Location, &e.EventDate, &e.ImageURL, &e.IsFeatured, &e.CityID, &e.CityName)
	if err != nil {
		return nil, dberr.Wrap(err, "get_event")
	}

	return e, nil
}

func (repository *PostgresRepository) Create(context context.Context, event *Event) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s;
	`,
		schema.Event.Table,
		schema.Event.Title,
		schema.Event.Description,
		schema.Event.Category,
		schema.Event.Location,
		schema.Event.EventDate,
		schema.Event.ImageURL,
		schema.Event.IsFeatured,
		schema.Event.CityID,
		schema.Event.ID,
	)

	err := repository.db.QueryRow(context, query,
		event.Title,
		event.Description,
		event.Category,
		event.Location,
		event.EventDate,
		event.ImageURL,
		event.IsFeatured,
		event.CityID,
	).Scan(&event.ID)

	return dberr.Wrap(err, "create_event")
}
