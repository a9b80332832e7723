package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/repository"
)

// Dashboard list sizes.
const (
	DashboardRecentLimit      = 5
	DashboardTopProductsLimit = 5
)

// DashboardService assembles the back-office overview.
type DashboardService struct {
	repo   repository.DashboardRepository
	logger *slog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(repo repository.DashboardRepository, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		repo:   repo,
		logger: logger,
	}
}

// Overview returns entity counts, status breakdowns, revenue, recent orders
// and messages, and the top sellers.
func (s *DashboardService) Overview(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}

	var err error
	if stats.ProductCount, stats.ActiveProducts, err = s.repo.CountProducts(ctx); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if stats.CustomerCount, err = s.repo.CountCustomers(ctx); err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if stats.SubscriberCount, err = s.repo.CountSubscribers(ctx); err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}
	if stats.OrdersByStatus, err = s.repo.OrdersByStatus(ctx); err != nil {
		return nil, fmt.Errorf("orders by status: %w", err)
	}
	if stats.MessagesByStatus, err = s.repo.MessagesByStatus(ctx); err != nil {
		return nil, fmt.Errorf("messages by status: %w", err)
	}
	if stats.Revenue, err = s.repo.Revenue(ctx); err != nil {
		return nil, fmt.Errorf("revenue: %w", err)
	}
	if stats.RecentOrders, err = s.repo.RecentOrders(ctx, DashboardRecentLimit); err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	if stats.RecentMessages, err = s.repo.RecentMessages(ctx, DashboardRecentLimit); err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	if stats.TopProducts, err = s.repo.TopProducts(ctx, DashboardTopProductsLimit); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	return stats, nil
}
