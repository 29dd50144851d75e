package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"prodscout/internal/common"
	"prodscout/internal/model"
	"prodscout/internal/service"
)

// ImportProducts persists discovered products for a project. Rows that
// collide on (project, URL) are counted as duplicates; rows that fail
// validation or insertion are counted as errors. Either way the rest of the
// batch proceeds, so partial success is success.
func (s *SQLiteStorage) ImportProducts(ctx context.Context, projectID string, products []model.Product) (service.ImportResult, error) {
	var result service.ImportResult

	if err := validateContext(ctx); err != nil {
		return result, err
	}
	if err := validateString(projectID, "projectID"); err != nil {
		return result, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO products (
			id, project_id, name, url, platform, price,
			rating, review_count, sales_count, trust_score,
			is_mall, is_verified_seller, brand, seller_location, trust_badge,
			keywords, images, imported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return result, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range products {
		p := products[i]
		if validateErr := validateProduct(&p); validateErr != nil {
			slog.Warn("skipping invalid product",
				"name", p.Name,
				"error", validateErr)
			result.SkippedErrors++
			continue
		}

		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.ProjectID = projectID
		if p.ImportedAt.IsZero() {
			p.ImportedAt = time.Now().UTC()
		}

		keywords, marshalErr := json.Marshal(p.Keywords)
		if marshalErr != nil {
			result.SkippedErrors++
			continue
		}
		images, marshalErr := json.Marshal(p.Images)
		if marshalErr != nil {
			result.SkippedErrors++
			continue
		}

		res, execErr := stmt.ExecContext(ctx,
			p.ID, p.ProjectID, p.Name, p.URL, string(p.Platform), p.Price,
			p.Rating, p.ReviewCount, p.SalesCount, p.TrustScore,
			p.IsMall, p.IsVerifiedSeller, p.Brand, p.SellerLocation, p.TrustBadge,
			string(keywords), string(images), p.ImportedAt,
		)
		if execErr != nil {
			slog.Warn("failed to insert product",
				"name", p.Name,
				"error", execErr)
			result.SkippedErrors++
			continue
		}

		affected, affErr := res.RowsAffected()
		if affErr != nil {
			result.SkippedErrors++
			continue
		}
		if affected == 0 {
			// INSERT OR IGNORE swallowed a (project, URL) collision.
			result.SkippedDuplicates++
			continue
		}

		result.ImportedIDs = append(result.ImportedIDs, p.ID)
	}

	if err := tx.Commit(); err != nil {
		return service.ImportResult{}, fmt.Errorf("failed to commit import: %w", err)
	}

	return result, nil
}

// ListProducts returns all products imported for a project, newest first.
func (s *SQLiteStorage) ListProducts(ctx context.Context, projectID string) ([]model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(projectID, "projectID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, productSelect+` WHERE project_id = ? ORDER BY imported_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []model.Product
	for rows.Next() {
		product, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan product: %w", scanErr)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// GetProduct returns a product by ID, or common.ErrNotFound.
func (s *SQLiteStorage) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, productSelect+` WHERE id = ?`, id)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

const productSelect = `
	SELECT id, project_id, name, url, platform, price,
		rating, review_count, sales_count, trust_score,
		is_mall, is_verified_seller, brand, seller_location, trust_badge,
		keywords, images, imported_at
	FROM products`

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	var platform string
	var rating, trustScore sql.NullFloat64
	var reviewCount, salesCount sql.NullInt64
	var brand, sellerLocation, trustBadge, keywords, images sql.NullString

	err := row.Scan(
		&p.ID, &p.ProjectID, &p.Name, &p.URL, &platform, &p.Price,
		&rating, &reviewCount, &salesCount, &trustScore,
		&p.IsMall, &p.IsVerifiedSeller, &brand, &sellerLocation, &trustBadge,
		&keywords, &images, &p.ImportedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Platform = model.Platform(platform)
	p.Brand = brand.String
	p.SellerLocation = sellerLocation.String
	p.TrustBadge = trustBadge.String

	if rating.Valid {
		v := rating.Float64
		p.Rating = &v
	}
	if trustScore.Valid {
		v := trustScore.Float64
		p.TrustScore = &v
	}
	if reviewCount.Valid {
		v := int(reviewCount.Int64)
		p.ReviewCount = &v
	}
	if salesCount.Valid {
		v := int(salesCount.Int64)
		p.SalesCount = &v
	}

	if keywords.Valid && keywords.String != "" {
		if err := json.Unmarshal([]byte(keywords.String), &p.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords: %w", err)
		}
	}
	if images.Valid && images.String != "" {
		if err := json.Unmarshal([]byte(images.String), &p.Images); err != nil {
			return nil, fmt.Errorf("failed to decode images: %w", err)
		}
	}

	return &p, nil
}
