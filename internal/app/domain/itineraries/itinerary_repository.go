package itineraries

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
	"github.com/FACorreiaa/go-tripboard/internal/app/observability/metrics"
)

const uniqueViolation = "23505"

// DBTX is the subset of *pgxpool.Pool the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists itineraries, their days and items. Every method is
// scoped to the owning user.
type Repository interface {
	CreateItinerary(ctx context.Context, userID uuid.UUID, params models.CreateItineraryParams) (uuid.UUID, error)
	ListItineraries(ctx context.Context, userID uuid.UUID, countryISO2 string) ([]models.Itinerary, error)
	GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (models.Itinerary, error)
	CountryCounts(ctx context.Context, userID uuid.UUID) ([]models.CountryCount, error)

	ListDays(ctx context.Context, userID, itineraryID uuid.UUID) ([]models.ItineraryDay, error)
	ListItems(ctx context.Context, userID uuid.UUID, dayIDs []uuid.UUID) ([]models.ItineraryItem, error)
	InsertDay(ctx context.Context, userID, itineraryID uuid.UUID, dayIndex int, date *string) (models.ItineraryDay, error)
	InsertItem(ctx context.Context, userID, itineraryID uuid.UUID, item models.ItineraryItem) (models.ItineraryItem, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (uuid.UUID, error)
	DeleteItineraryCascade(ctx context.Context, userID, itineraryID uuid.UUID) error
}

type RepositoryImpl struct {
	logger *zap.Logger
	db     DBTX
	psql   sq.StatementBuilderType
}

func NewRepository(db DBTX, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func observe(ctx context.Context, op string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("db.operation", op))
	m.DBQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		m.DBQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CreateItinerary inserts an itinerary and returns its generated id.
func (r *RepositoryImpl) CreateItinerary(ctx context.Context, userID uuid.UUID, params models.CreateItineraryParams) (id uuid.UUID, err error) {
	defer func(start time.Time) { observe(ctx, "create_itinerary", start, err) }(time.Now())

	query := `
        INSERT INTO itineraries (user_id, title, country_iso2, start_date, end_date, notes)
        VALUES ($1, $2, $3, $4::date, $5::date, $6)
        RETURNING id`
	err = r.db.QueryRow(ctx, query,
		userID, params.Title, params.CountryISO2, params.StartDate, params.EndDate, params.Notes,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to create itinerary", zap.Error(err))
		return uuid.Nil, fmt.Errorf("failed to create itinerary: %w", err)
	}
	return id, nil
}

// ListItineraries returns the user's itineraries, newest trip first,
// optionally restricted to one country.
func (r *RepositoryImpl) ListItineraries(ctx context.Context, userID uuid.UUID, countryISO2 string) (list []models.Itinerary, err error) {
	defer func(start time.Time) { observe(ctx, "list_itineraries", start, err) }(time.Now())

	qb := r.psql.
		Select("id", "user_id", "title", "country_iso2",
			"to_char(start_date, 'YYYY-MM-DD')", "to_char(end_date, 'YYYY-MM-DD')",
			"notes", "created_at").
		From("itineraries").
		Where("user_id = ?", userID).
		OrderBy("start_date DESC", "created_at DESC")
	if countryISO2 != "" {
		qb = qb.Where("country_iso2 = ?", countryISO2)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build itineraries query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list itineraries", zap.Error(err))
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	list = []models.Itinerary{}
	for rows.Next() {
		var it models.Itinerary
		if err = rows.Scan(&it.ID, &it.UserID, &it.Title, &it.CountryISO2,
			&it.StartDate, &it.EndDate, &it.Notes, &it.CreatedAt); err != nil {
			r.logger.Error("Failed to scan itinerary row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan itinerary row: %w", err)
		}
		list = append(list, it)
	}
	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating itinerary rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating itinerary rows: %w", err)
	}
	return list, nil
}

// GetItinerary loads one itinerary owned by userID.
func (r *RepositoryImpl) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (it models.Itinerary, err error) {
	defer func(start time.Time) { observe(ctx, "get_itinerary", start, err) }(time.Now())

	query := `
        SELECT id, user_id, title, country_iso2,
               to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
               notes, created_at
        FROM itineraries
        WHERE id = $1 AND user_id = $2`
	err = r.db.QueryRow(ctx, query, itineraryID, userID).Scan(
		&it.ID, &it.UserID, &it.Title, &it.CountryISO2,
		&it.StartDate, &it.EndDate, &it.Notes, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Itinerary{}, fmt.Errorf("itinerary %s: %w", itineraryID, models.ErrNotFound)
		}
		r.logger.Error("Failed to get itinerary", zap.Error(err))
		return models.Itinerary{}, fmt.Errorf("failed to get itinerary: %w", err)
	}
	return it, nil
}

// CountryCounts returns how many itineraries the user has per country.
func (r *RepositoryImpl) CountryCounts(ctx context.Context, userID uuid.UUID) (counts []models.CountryCount, err error) {
	defer func(start time.Time) { observe(ctx, "country_counts", start, err) }(time.Now())

	query, args, err := r.psql.
		Select("country_iso2", "count(*)").
		From("itineraries").
		Where("user_id = ?", userID).
		GroupBy("country_iso2").
		OrderBy("country_iso2").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build country counts query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to count itineraries per country", zap.Error(err))
		return nil, fmt.Errorf("failed to count itineraries per country: %w", err)
	}
	defer rows.Close()

	counts = []models.CountryCount{}
	for rows.Next() {
		var cc models.CountryCount
		if err = rows.Scan(&cc.CountryISO2, &cc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan country count: %w", err)
		}
		counts = append(counts, cc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating country counts: %w", err)
	}
	return counts, nil
}

// ListDays returns the days of an itinerary ordered by day_index.
func (r *RepositoryImpl) ListDays(ctx context.Context, userID, itineraryID uuid.UUID) (days []models.ItineraryDay, err error) {
	defer func(start time.Time) { observe(ctx, "list_days", start, err) }(time.Now())

	query := `
        SELECT d.id, d.itinerary_id, d.day_index, to_char(d.date, 'YYYY-MM-DD')
        FROM itinerary_day d
        JOIN itineraries t ON t.id = d.itinerary_id
        WHERE d.itinerary_id = $1 AND t.user_id = $2
        ORDER BY d.day_index ASC`
	rows, err := r.db.Query(ctx, query, itineraryID, userID)
	if err != nil {
		r.logger.Error("Failed to list days", zap.Error(err))
		return nil, fmt.Errorf("failed to list days: %w", err)
	}
	defer rows.Close()

	days = []models.ItineraryDay{}
	for rows.Next() {
		var d models.ItineraryDay
		if err = rows.Scan(&d.ID, &d.ItineraryID, &d.DayIndex, &d.Date); err != nil {
			r.logger.Error("Failed to scan day row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan day row: %w", err)
		}
		days = append(days, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day rows: %w", err)
	}
	return days, nil
}

// ListItems returns the items of the given days ordered by time, untimed last.
func (r *RepositoryImpl) ListItems(ctx context.Context, userID uuid.UUID, dayIDs []uuid.UUID) (items []models.ItineraryItem, err error) {
	if len(dayIDs) == 0 {
		return []models.ItineraryItem{}, nil
	}
	defer func(start time.Time) { observe(ctx, "list_items", start, err) }(time.Now())

	query, args, err := r.psql.
		Select("i.id", "i.itinerary_day_id", "to_char(i.time, 'HH24:MI')",
			"i.activity", "i.location", "i.notes", "i.cost_cents").
		From("itinerary_items i").
		Join("itinerary_day d ON d.id = i.itinerary_day_id").
		Join("itineraries t ON t.id = d.itinerary_id").
		Where(sq.Eq{"i.itinerary_day_id": dayIDs}).
		Where("t.user_id = ?", userID).
		OrderBy("i.time ASC NULLS LAST", "i.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build items query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list items", zap.Error(err))
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items = []models.ItineraryItem{}
	for rows.Next() {
		var it models.ItineraryItem
		var cost *int64
		if err = rows.Scan(&it.ID, &it.DayID, &it.Time, &it.Activity, &it.Location, &it.Notes, &cost); err != nil {
			r.logger.Error("Failed to scan item row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		it.Cost = toCents(cost)
		items = append(items, it)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}
	return items, nil
}

// InsertDay adds a day to an itinerary the user owns.
func (r *RepositoryImpl) InsertDay(ctx context.Context, userID, itineraryID uuid.UUID, dayIndex int, date *string) (day models.ItineraryDay, err error) {
	defer func(start time.Time) { observe(ctx, "insert_day", start, err) }(time.Now())

	query := `
        INSERT INTO itinerary_day (itinerary_id, day_index, date)
        SELECT t.id, $3, $4::date
        FROM itineraries t
        WHERE t.id = $1 AND t.user_id = $2
        RETURNING id, itinerary_id, day_index, to_char(date, 'YYYY-MM-DD')`
	err = r.db.QueryRow(ctx, query, itineraryID, userID, dayIndex, date).
		Scan(&day.ID, &day.ItineraryID, &day.DayIndex, &day.Date)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return models.ItineraryDay{}, fmt.Errorf("itinerary %s: %w", itineraryID, models.ErrNotFound)
		case isUniqueViolation(err):
			r.logger.Warn("Duplicate day index", zap.String("itineraryID", itineraryID.String()), zap.Int("dayIndex", dayIndex))
			return models.ItineraryDay{}, models.ErrDuplicateDay
		}
		r.logger.Error("Failed to insert day", zap.Error(err))
		return models.ItineraryDay{}, fmt.Errorf("failed to insert day: %w", err)
	}
	return day, nil
}

// InsertItem adds an item to a day of an itinerary the user owns.
func (r *RepositoryImpl) InsertItem(ctx context.Context, userID, itineraryID uuid.UUID, item models.ItineraryItem) (out models.ItineraryItem, err error) {
	defer func(start time.Time) { observe(ctx, "insert_item", start, err) }(time.Now())

	query := `
        INSERT INTO itinerary_items (itinerary_day_id, time, activity, location, notes, cost_cents, currency)
        SELECT d.id, $4::time, $5, $6, $7, $8, $9
        FROM itinerary_day d
        JOIN itineraries t ON t.id = d.itinerary_id
        WHERE d.id = $1 AND d.itinerary_id = $2 AND t.user_id = $3
        RETURNING id, itinerary_day_id, to_char(time, 'HH24:MI'), activity, location, notes, cost_cents`
	var cost *int64
	err = r.db.QueryRow(ctx, query,
		item.DayID, itineraryID, userID,
		item.Time, item.Activity, item.Location, item.Notes, fromCents(item.Cost), models.DefaultCurrency,
	).Scan(&out.ID, &out.DayID, &out.Time, &out.Activity, &out.Location, &out.Notes, &cost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ItineraryItem{}, fmt.Errorf("day %s: %w", item.DayID, models.ErrNotFound)
		}
		r.logger.Error("Failed to insert item", zap.Error(err))
		return models.ItineraryItem{}, fmt.Errorf("failed to insert item: %w", err)
	}
	out.Cost = toCents(cost)
	return out, nil
}

// DeleteItem removes one item and returns the id of the itinerary it belonged to.
func (r *RepositoryImpl) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (itineraryID uuid.UUID, err error) {
	defer func(start time.Time) { observe(ctx, "delete_item", start, err) }(time.Now())

	query := `
        DELETE FROM itinerary_items i
        USING itinerary_day d, itineraries t
        WHERE i.id = $1
          AND d.id = i.itinerary_day_id
          AND t.id = d.itinerary_id
          AND t.user_id = $2
        RETURNING d.itinerary_id`
	err = r.db.QueryRow(ctx, query, itemID, userID).Scan(&itineraryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("item %s: %w", itemID, models.ErrNotFound)
		}
		r.logger.Error("Failed to delete item", zap.Error(err))
		return uuid.Nil, fmt.Errorf("failed to delete item: %w", err)
	}
	return itineraryID, nil
}

// DeleteItineraryCascade removes the items, then the days, then the itinerary
// itself in one transaction. Nothing is removed if any step fails.
func (r *RepositoryImpl) DeleteItineraryCascade(ctx context.Context, userID, itineraryID uuid.UUID) (err error) {
	defer func(start time.Time) { observe(ctx, "delete_itinerary_cascade", start, err) }(time.Now())
	l := r.logger.With(zap.String("method", "DeleteItineraryCascade"), zap.String("itineraryID", itineraryID.String()))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		l.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			l.Error("Failed to roll back cascade delete", zap.Error(rbErr))
		}
	}()

	var lockedID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM itineraries WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		itineraryID, userID,
	).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("itinerary %s: %w", itineraryID, models.ErrNotFound)
		}
		return fmt.Errorf("failed to lock itinerary: %w", err)
	}

	dayIDs, err := r.dayIDs(ctx, tx, itineraryID)
	if err != nil {
		return err
	}

	if len(dayIDs) > 0 {
		var query string
		var args []any
		query, args, err = r.psql.Delete("itinerary_items").
			Where(sq.Eq{"itinerary_day_id": dayIDs}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build item delete: %w", err)
		}
		var tag pgconn.CommandTag
		if tag, err = tx.Exec(ctx, query, args...); err != nil {
			l.Error("Failed to delete items", zap.Error(err))
			return fmt.Errorf("failed to delete items: %w", err)
		}
		l.Debug("Deleted items", zap.Int64("rows", tag.RowsAffected()))
	}

	if _, err = tx.Exec(ctx, `DELETE FROM itinerary_day WHERE itinerary_id = $1`, itineraryID); err != nil {
		l.Error("Failed to delete days", zap.Error(err))
		return fmt.Errorf("failed to delete days: %w", err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM itineraries WHERE id = $1 AND user_id = $2`, itineraryID, userID); err != nil {
		l.Error("Failed to delete itinerary", zap.Error(err))
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		l.Error("Failed to commit cascade delete", zap.Error(err))
		return fmt.Errorf("failed to commit cascade delete: %w", err)
	}
	l.Info("Itinerary deleted", zap.Int("days", len(dayIDs)))
	return nil
}

func (r *RepositoryImpl) dayIDs(ctx context.Context, tx pgx.Tx, itineraryID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, `SELECT id FROM itinerary_day WHERE itinerary_id = $1`, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to select day ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan day id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day ids: %w", err)
	}
	return ids, nil
}

func toCents(v *int64) *models.Cents {
	if v == nil {
		return nil
	}
	c := models.Cents(*v)
	return &c
}

func fromCents(c *models.Cents) *int64 {
	if c == nil {
		return nil
	}
	v := int64(*c)
	return &v
}
