package postgres_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var tables = map[domain.Collection]string{
	domain.CollectionListings: "listings",
	domain.CollectionProfiles: "profiles",
}

// PostgresStore keeps listings and profiles as JSONB documents.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ port.StorePort = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the document tables and their indexes if they are missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS listings (
			id  UUID PRIMARY KEY,
			doc JSONB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_kind_verified ON listings ((doc ->> 'kind'), (doc ->> 'verified'));`,
		`CREATE INDEX IF NOT EXISTS idx_listings_geohash ON listings ((doc ->> 'geohash') text_pattern_ops);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_doc ON listings USING GIN (doc);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id      UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE,
			doc     JSONB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_flags ON profiles ((doc ->> 'isAgent'), (doc ->> 'isBuilder'), (doc ->> 'verified'));`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, listing *domain.Listing) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "PostgresStore",
		"method":     "Create",
		"listing_id": listing.ID.String(),
	})

	doc, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to encode listing: %w", err)
	}

	query := `INSERT INTO listings (id, doc) VALUES ($1, $2)`
	if _, err := s.pool.Exec(ctx, query, listing.ID, doc); err != nil {
		repoLogger.Error("Failed to insert listing", err, port.Fields{"query": query})
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	repoLogger.Debug("Listing inserted", nil)
	return nil
}

func (s *PostgresStore) Replace(ctx context.Context, listing *domain.Listing) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "PostgresStore",
		"method":     "Replace",
		"listing_id": listing.ID.String(),
	})

	doc, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to encode listing: %w", err)
	}

	query := `UPDATE listings SET doc = $2 WHERE id = $1`
	cmdTag, err := s.pool.Exec(ctx, query, listing.ID, doc)
	if err != nil {
		repoLogger.Error("Failed to replace listing", err, port.Fields{"query": query})
		return fmt.Errorf("failed to replace listing: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM listings WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing %s: %w", id, err)
	}
	return decodeListing(id, doc)
}

func (s *PostgresStore) SetVerified(ctx context.Context, id uuid.UUID, verified bool, at time.Time) (*domain.Listing, error) {
	query := `
		UPDATE listings
		SET doc = jsonb_set(jsonb_set(doc, '{verified}', to_jsonb($2::boolean)), '{updatedAt}', to_jsonb($3::text))
		WHERE id = $1
		RETURNING doc`

	var doc []byte
	err := s.pool.QueryRow(ctx, query, id, verified, at.UTC().Format(time.RFC3339Nano)).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to set verification on %s: %w", id, err)
	}
	return decodeListing(id, doc)
}

// IncrementCounter moves one engagement counter; counters never drop below zero.
func (s *PostgresStore) IncrementCounter(ctx context.Context, id uuid.UUID, field domain.CounterField, delta int64) error {
	query := `
		UPDATE listings
		SET doc = jsonb_set(
			doc,
			ARRAY['counters', $2::text],
			to_jsonb(GREATEST(COALESCE((doc #>> ARRAY['counters', $2::text])::bigint, 0) + $3::bigint, 0))
		)
		WHERE id = $1`

	cmdTag, err := s.pool.Exec(ctx, query, id, string(field), delta)
	if err != nil {
		return fmt.Errorf("failed to increment %s on %s: %w", field, id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (s *PostgresStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var (
		id  uuid.UUID
		doc []byte
	)
	err := s.pool.QueryRow(ctx, `SELECT id, doc FROM profiles WHERE user_id = $1`, userID).Scan(&id, &doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}
	return decodeProfile(id, doc)
}

func (s *PostgresStore) Count(ctx context.Context, q domain.ListQuery) (int64, error) {
	table, err := tableFor(q.Collection)
	if err != nil {
		return 0, err
	}
	qb, err := applyListQuery(q)
	if err != nil {
		return 0, err
	}
	whereClause, args := qb.build()

	var total int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", table, whereClause)
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", q.Catalog, err)
	}
	return total, nil
}

func (s *PostgresStore) FindPage(ctx context.Context, q domain.ListQuery) ([]interface{}, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{"component": "PostgresStore", "method": "FindPage", "catalog": q.Catalog})

	table, err := tableFor(q.Collection)
	if err != nil {
		return nil, err
	}
	qb, err := applyListQuery(q)
	if err != nil {
		return nil, err
	}
	order, err := orderClause(q.Sort)
	if err != nil {
		return nil, err
	}
	limit := qb.addArg(q.Limit)
	offset := qb.addArg(q.Skip())
	whereClause, args := qb.build()

	query := fmt.Sprintf("SELECT id, doc FROM %s %s %s LIMIT %s OFFSET %s", table, whereClause, order, limit, offset)
	repoLogger.Debug("Executing page query", port.Fields{"query": query})

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query page", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query %s page: %w", q.Catalog, err)
	}
	defer rows.Close()

	items := make([]interface{}, 0, q.Limit)
	for rows.Next() {
		var (
			id  uuid.UUID
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", q.Catalog, err)
		}
		var item interface{}
		if q.Collection == domain.CollectionProfiles {
			item, err = decodeProfile(id, doc)
		} else {
			item, err = decodeListing(id, doc)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during %s iteration: %w", q.Catalog, err)
	}
	return items, nil
}

// Distinct returns the sorted non-empty values of a facet path under the query predicate.
func (s *PostgresStore) Distinct(ctx context.Context, q domain.ListQuery, facet domain.FacetSpec) ([]string, error) {
	table, err := tableFor(q.Collection)
	if err != nil {
		return nil, err
	}
	qb, err := applyListQuery(q)
	if err != nil {
		return nil, err
	}

	var query string
	if facet.Type == domain.FieldList {
		field, err := jsonValue(facet.Path)
		if err != nil {
			return nil, err
		}
		qb.conditions = append(qb.conditions, "jsonb_typeof("+field+") = 'array'")
		whereClause, _ := qb.build()
		query = fmt.Sprintf(
			"SELECT DISTINCT e.v FROM %s, jsonb_array_elements_text(%s) AS e(v) %s AND e.v <> '' ORDER BY e.v",
			table, field, whereClause,
		)
	} else {
		field, err := jsonText(facet.Path)
		if err != nil {
			return nil, err
		}
		qb.conditions = append(qb.conditions, field+" <> ''")
		whereClause, _ := qb.build()
		query = fmt.Sprintf("SELECT DISTINCT %s AS v FROM %s %s ORDER BY v", field, table, whereClause)
	}

	rows, err := s.pool.Query(ctx, query, qb.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct %s: %w", facet.Name, err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan distinct %s: %w", facet.Name, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during distinct %s iteration: %w", facet.Name, err)
	}
	return values, nil
}

func tableFor(c domain.Collection) (string, error) {
	table, ok := tables[c]
	if !ok {
		return "", fmt.Errorf("unknown collection %q", c)
	}
	return table, nil
}

func decodeListing(id uuid.UUID, doc []byte) (*domain.Listing, error) {
	var l domain.Listing
	if err := json.Unmarshal(doc, &l); err != nil {
		return nil, fmt.Errorf("failed to decode listing %s: %w", id, err)
	}
	l.ID = id
	return &l, nil
}

func decodeProfile(id uuid.UUID, doc []byte) (*domain.Profile, error) {
	var p domain.Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", id, err)
	}
	p.ID = id
	return &p, nil
}
