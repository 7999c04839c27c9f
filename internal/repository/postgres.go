package repository

import (
	"context"
	"database/sql"

	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/models"
)

const (
	selectTaxClassesQuery = `
		SELECT slug
		FROM tax_classes
		ORDER BY position, slug
	`

	selectRatesForClassQuery = `
		SELECT id, tax_class, country, rate, name, priority, rate_order, shipping
		FROM tax_rates
		WHERE tax_class = $1
		ORDER BY priority, rate_order, id
	`
)

// PostgresTaxRateRepository reads the host tax table from PostgreSQL.
type PostgresTaxRateRepository struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

// NewPostgresTaxRateRepository creates a new PostgreSQL tax rate repository.
func NewPostgresTaxRateRepository(db *sql.DB, logger *logging.LoggerV2) *PostgresTaxRateRepository {
	return &PostgresTaxRateRepository{
		db:     db,
		logger: logger,
	}
}

// TaxClasses lists the configured tax class slugs in display order.
func (r *PostgresTaxRateRepository) TaxClasses(ctx context.Context) ([]models.TaxClass, error) {
	r.logger.Debug("Fetching tax classes")

	rows, err := r.db.QueryContext(ctx, selectTaxClassesQuery)
	if err != nil {
		r.logger.Error("Failed to fetch tax classes", logging.Fields{"error": err.Error()})
		return nil, err
	}
	defer rows.Close()

	classes := make([]models.TaxClass, 0)
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		classes = append(classes, models.TaxClass(slug))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return classes, nil
}

// RatesForClass lists the rates of one class, representative rate first.
func (r *PostgresTaxRateRepository) RatesForClass(ctx context.Context, class models.TaxClass) ([]models.TaxRate, error) {
	r.logger.Debug("Fetching tax rates", logging.Fields{"tax_class": class.Label()})

	rows, err := r.db.QueryContext(ctx, selectRatesForClassQuery, class.Slug())
	if err != nil {
		r.logger.Error("Failed to fetch tax rates", logging.Fields{
			"tax_class": class.Label(),
			"error":     err.Error(),
		})
		return nil, err
	}
	defer rows.Close()

	rates := make([]models.TaxRate, 0)
	for rows.Next() {
		rate, err := scanTaxRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rates, nil
}

func scanTaxRate(rows *sql.Rows) (models.TaxRate, error) {
	var rate models.TaxRate
	var class string
	var country, name sql.NullString

	err := rows.Scan(
		&rate.ID,
		&class,
		&country,
		&rate.Percentage,
		&name,
		&rate.Priority,
		&rate.Order,
		&rate.Shipping,
	)
	if err != nil {
		return models.TaxRate{}, err
	}

	rate.Class = models.TaxClass(class)
	if country.Valid {
		rate.Country = country.String
	}
	if name.Valid {
		rate.Name = name.String
	}

	return rate, nil
}
