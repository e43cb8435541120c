package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Ba9900/Mzize-Tradings/internal/database"
	"github.com/Ba9900/Mzize-Tradings/internal/models"
)

const planColumns = `id, title, description, price, bedrooms, bathrooms, stories,
	garage_spaces, square_footage, style_category, featured_image_url,
	gallery_images, plan_files, is_featured, is_active, created_at, updated_at`

func scanPlan(row interface{ Scan(...interface{}) error }) (*models.HousePlan, error) {
	plan := &models.HousePlan{}
	err := row.Scan(
		&plan.ID,
		&plan.Title,
		&plan.Description,
		&plan.Price,
		&plan.Bedrooms,
		&plan.Bathrooms,
		&plan.Stories,
		&plan.GarageSpaces,
		&plan.SquareFootage,
		&plan.StyleCategory,
		&plan.FeaturedImageURL,
		&plan.GalleryImages,
		&plan.PlanFiles,
		&plan.IsFeatured,
		&plan.IsActive,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func CreatePlan(ctx context.Context, db *sql.DB, plan *models.HousePlan) (*models.HousePlan, error) {
	query := `
		INSERT INTO house_plans (title, description, price, bedrooms, bathrooms, stories,
			garage_spaces, square_footage, style_category, featured_image_url,
			gallery_images, plan_files, is_featured, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING ` + planColumns

	created, err := scanPlan(db.QueryRowContext(ctx, query,
		plan.Title, plan.Description, plan.Price, plan.Bedrooms, plan.Bathrooms,
		plan.Stories, plan.GarageSpaces, plan.SquareFootage, plan.StyleCategory,
		plan.FeaturedImageURL, plan.GalleryImages, plan.PlanFiles,
		plan.IsFeatured, plan.IsActive))
	if err != nil {
		return nil, fmt.Errorf("create house plan: %w", err)
	}

	return created, nil
}

func GetPlan(ctx context.Context, db *sql.DB, id int64) (*models.HousePlan, error) {
	query := `SELECT ` + planColumns + ` FROM house_plans WHERE id = $1`

	plan, err := scanPlan(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrPlanNotFound
		}
		return nil, fmt.Errorf("get house plan: %w", err)
	}

	return plan, nil
}

// FindActivePlan is the catalog lookup used by the cart and checkout paths.
// Inactive plans are indistinguishable from missing ones.
func FindActivePlan(ctx context.Context, db *sql.DB, id int64) (*models.HousePlan, error) {
	query := `SELECT ` + planColumns + ` FROM house_plans WHERE id = $1 AND is_active = TRUE`

	plan, err := scanPlan(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrPlanNotFound
		}
		return nil, fmt.Errorf("find active house plan: %w", err)
	}

	return plan, nil
}

func ListPlans(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM house_plans WHERE is_active = TRUE`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count house plans: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT ` + planColumns + `
		FROM house_plans
		WHERE is_active = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list house plans: %w", err)
	}
	defer rows.Close()

	var plans []models.HousePlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan house plan: %w", err)
		}
		plans = append(plans, *plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOffsetPage(plans, total, page, pageSize), nil
}
