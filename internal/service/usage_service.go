package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/qs3c/sheetsync_server/internal/model"
	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/repository"
)

const recentUsageLimit = 20

type UsageService struct {
	usageRepo *repository.UsageLogRepository
	now       func() time.Time
}

func NewUsageService(usageRepo *repository.UsageLogRepository) *UsageService {
	return &UsageService{
		usageRepo: usageRepo,
		now:       time.Now,
	}
}

// GetReport 最近记录与本月统计
func (s *UsageService) GetReport(ctx context.Context, userID string) (*dto.UsageReport, error) {
	logs, err := s.usageRepo.ListRecent(ctx, userID, recentUsageLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent usage: %w", err)
	}

	recent := make([]dto.UsageLogItem, 0, len(logs))
	for _, l := range logs {
		recent = append(recent, dto.UsageLogItem{
			ID:            l.ID,
			Action:        l.Action,
			Provider:      l.Provider,
			Model:         l.Model,
			RowsProcessed: l.RowsProcessed,
			Status:        l.Status,
			CreatedAt:     l.CreatedAt,
		})
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	stats, err := s.usageRepo.StatsSince(ctx, userID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("usage stats: %w", err)
	}

	var month dto.MonthlyStats
	for _, st := range stats {
		month.Total += st.Count
		month.RowsProcessed += st.RowsProcessed
		switch st.Status {
		case model.UsageStatusSuccess:
			month.Success += st.Count
		default:
			month.Failed += st.Count
		}
	}

	lastMonth, err := s.usageRepo.CountBetween(ctx, userID, lastMonthStart, monthStart)
	if err != nil {
		return nil, fmt.Errorf("count last month usage: %w", err)
	}
	month.PercentChange = percentChange(month.Total, lastMonth)

	return &dto.UsageReport{
		Recent: recent,
		Month:  month,
	}, nil
}

// percentChange 相对上月的变化百分比，上月为 0 时记 0
func percentChange(current, previous int64) int64 {
	if previous <= 0 {
		return 0
	}
	return int64(math.Floor(float64(current-previous)/float64(previous)*100 + 0.5))
}
