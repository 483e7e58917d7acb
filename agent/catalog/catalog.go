// Package catalog implements the read-only vendor/service data access
// against Postgres.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"8"`
	QueryTimeout time.Duration `envconfig:"QUERY_TIMEOUT" split_words:"true" default:"5s"`
}

type vendorRow struct {
	bun.BaseModel `bun:"table:vendors,alias:v"`

	ID         int64   `bun:"id,pk"`
	StoreName  string  `bun:"store_name"`
	VendorType string  `bun:"vendor_type"`
	Rating     float64 `bun:"vendor_rating"`
	Latitude   float64 `bun:"latitude"`
	Longitude  float64 `bun:"longitude"`
	Active     bool    `bun:"active"`

	DistanceKM float64 `bun:"distance_km,scanonly"`
}

type serviceRow struct {
	bun.BaseModel `bun:"table:services,alias:s"`

	ID           int64   `bun:"id,pk"`
	Name         string  `bun:"name"`
	VendorID     int64   `bun:"vendor_id"`
	Price        float64 `bun:"price"`
	Discount     float64 `bun:"discount"`
	DiscountType string  `bun:"discount_type"`
	Veg          *bool   `bun:"veg"`
	CategoryID   int64   `bun:"category_id"`
	CategoryName string  `bun:"category_name,scanonly"`
	VendorName   string  `bun:"vendor_name,scanonly"`
}

// Store is the Postgres-backed Catalog implementation.
type Store struct {
	db      *bun.DB
	timeout time.Duration
}

var _ contractx.Catalog = (*Store)(nil)

func New(cfg Config) (*Store, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("%w: catalog dsn is required", contractx.ErrValidation)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Store{
		db:      bun.NewDB(sqldb, pgdialect.New()),
		timeout: timeout,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// NearbyVendors returns active vendors ordered by haversine distance from
// the given point. vendorType filters when non-empty.
func (s *Store) NearbyVendors(ctx context.Context, lat, lon float64, vendorType string, limit int) ([]contractx.Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	var rows []vendorRow
	q := s.db.NewSelect().
		Model(&rows).
		ColumnExpr("v.id, v.store_name, v.vendor_rating").
		ColumnExpr(
			"(6371 * acos(least(1.0, cos(radians(?)) * cos(radians(v.latitude)) * cos(radians(v.longitude) - radians(?)) + sin(radians(?)) * sin(radians(v.latitude))))) AS distance_km",
			lat, lon, lat,
		).
		Where("v.active = TRUE").
		OrderExpr("distance_km ASC").
		Limit(limit)

	if vt := strings.TrimSpace(vendorType); vt != "" {
		q = q.Where("v.vendor_type = ?", vt)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("catalog: nearby vendors: %w", err)
	}

	vendors := make([]contractx.Vendor, 0, len(rows))
	for _, row := range rows {
		vendors = append(vendors, contractx.Vendor{
			ID:         row.ID,
			StoreName:  row.StoreName,
			Rating:     row.Rating,
			DistanceKM: row.DistanceKM,
		})
	}
	return vendors, nil
}

// VendorServices returns one page of a vendor's services in catalog order.
// filter narrows by name when non-empty.
func (s *Store) VendorServices(ctx context.Context, vendorID int64, limit, offset int, filter string) ([]contractx.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var rows []serviceRow
	q := s.db.NewSelect().
		Model(&rows).
		ColumnExpr("s.id, s.name, s.vendor_id, s.price, s.discount, s.discount_type, s.veg, s.category_id").
		ColumnExpr("c.name AS category_name").
		ColumnExpr("v.store_name AS vendor_name").
		Join("JOIN vendors AS v ON v.id = s.vendor_id").
		Join("LEFT JOIN categories AS c ON c.id = s.category_id").
		Where("s.vendor_id = ?", vendorID).
		OrderExpr("s.category_id ASC, s.id ASC").
		Limit(limit).
		Offset(offset)

	if f := strings.TrimSpace(filter); f != "" {
		q = q.Where("s.name ILIKE ?", "%"+f+"%")
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("catalog: vendor services: %w", err)
	}

	services := make([]contractx.Service, 0, len(rows))
	for _, row := range rows {
		services = append(services, contractx.Service{
			ID:           row.ID,
			Name:         row.Name,
			VendorID:     row.VendorID,
			VendorName:   row.VendorName,
			Price:        row.Price,
			Discount:     row.Discount,
			DiscountType: row.DiscountType,
			Veg:          row.Veg,
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
		})
	}
	return services, nil
}
