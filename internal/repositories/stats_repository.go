package repository

import (
	"context"
	"database/sql"

	"github.com/shopworks/storefront/internal/models"
	"github.com/shopworks/storefront/internal/utils"
)

type StatsRepository interface {
	GetDashboardStats(ctx context.Context, days int) (*models.DashboardStats, error)
}

type statsRepository struct {
	DB *sql.DB
}

func NewStatsRepo(db *sql.DB) StatsRepository {
	return &statsRepository{DB: db}
}

// Revenue counts orders that made it past payment, so pending and
// cancelled orders are excluded.
const revenueStatuses = `('paid', 'shipped', 'completed')`

func (r *statsRepository) GetDashboardStats(ctx context.Context, days int) (*models.DashboardStats, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	stats := &models.DashboardStats{}

	err := r.DB.QueryRowContext(dbCtx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM orders),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status IN `+revenueStatuses+`)`).
		Scan(&stats.TotalUsers, &stats.TotalProducts, &stats.TotalOrders, &stats.TotalRevenue)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD') AS day, COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE status IN ` + revenueStatuses + ` AND created_at >= NOW() - make_interval(days => $1)
		GROUP BY day
		ORDER BY day`

	rows, err := r.DB.QueryContext(dbCtx, query, days)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	stats.SalesByDay = []models.DailySales{}

	for rows.Next() {
		var daily models.DailySales

		if err := rows.Scan(&daily.Date, &daily.Sales); err != nil {
			return nil, err
		}

		stats.SalesByDay = append(stats.SalesByDay, daily)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
