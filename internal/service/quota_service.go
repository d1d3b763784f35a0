package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/qs3c/sheetsync_server/config"
	"github.com/qs3c/sheetsync_server/internal/model"
	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/pkg/metrics"
	"github.com/qs3c/sheetsync_server/internal/repository"
)

var (
	ErrQuotaExceeded = errors.New("请求额度已用完")
	ErrInvalidPlan   = errors.New("不支持的套餐")
)

// QuotaExceededError 额度用完，携带当前的 limit 和 used
type QuotaExceededError struct {
	Limit int
	Used  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s (%d/%d)", ErrQuotaExceeded.Error(), e.Used, e.Limit)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

type QuotaService struct {
	db          *gorm.DB
	profileRepo *repository.ProfileRepository
	usageRepo   *repository.UsageLogRepository
	cfg         *config.Config
	now         func() time.Time
}

func NewQuotaService(
	db *gorm.DB,
	profileRepo *repository.ProfileRepository,
	usageRepo *repository.UsageLogRepository,
	cfg *config.Config,
) *QuotaService {
	return &QuotaService{
		db:          db,
		profileRepo: profileRepo,
		usageRepo:   usageRepo,
		cfg:         cfg,
		now:         time.Now,
	}
}

// CheckAndRecord 原子地检查额度并记录一次用量
// 未达上限时 requests_used + 1 并写入一条 UsageLog，否则返回 *QuotaExceededError 且不做任何修改
func (s *QuotaService) CheckAndRecord(ctx context.Context, userID string, event *dto.UsageEvent) (*dto.UsageSnapshot, error) {
	entry := newUsageLog(userID, event)

	var snapshot *dto.UsageSnapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profiles := s.profileRepo.WithTx(tx)
		usage := s.usageRepo.WithTx(tx)

		accepted, err := profiles.IncrementUsageIfBelowLimit(ctx, userID)
		if err != nil {
			return fmt.Errorf("increment usage: %w", err)
		}

		profile, err := getProfile(ctx, profiles, userID)
		if err != nil {
			return err
		}
		if !accepted {
			return &QuotaExceededError{Limit: profile.RequestsLimit, Used: profile.RequestsUsed}
		}

		if err := usage.Create(ctx, entry); err != nil {
			return fmt.Errorf("append usage log: %w", err)
		}

		snapshot = &dto.UsageSnapshot{
			Used:      profile.RequestsUsed,
			Limit:     profile.RequestsLimit,
			Remaining: profile.Remaining(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// newUsageLog 填充缺省值并规范化状态
func newUsageLog(userID string, event *dto.UsageEvent) *model.UsageLog {
	entry := &model.UsageLog{
		UserID:        userID,
		Action:        event.Action,
		Provider:      event.Provider,
		Model:         event.Model,
		RowsProcessed: event.RowsProcessed,
		Status:        model.NormalizeUsageStatus(event.Status),
	}
	if entry.Action == "" {
		entry.Action = model.DefaultUsageAction
	}
	if entry.Provider == "" {
		entry.Provider = model.UnknownValue
	}
	if entry.Model == "" {
		entry.Model = model.UnknownValue
	}
	if entry.RowsProcessed < 0 {
		entry.RowsProcessed = 0
	}
	return entry
}

// GetQuotaInfo 获取用户额度信息
func (s *QuotaService) GetQuotaInfo(ctx context.Context, userID string) (*dto.QuotaInfo, error) {
	profile, err := getProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}

	return &dto.QuotaInfo{
		Plan:              profile.Plan,
		RequestsUsed:      profile.RequestsUsed,
		RequestsLimit:     profile.RequestsLimit,
		Remaining:         profile.Remaining(),
		BillingCycleStart: profile.BillingCycleStart,
		DaysUntilRenewal:  profile.DaysUntilRenewal(s.now()),
	}, nil
}

// RolloverExpiredCycles 重置计费周期已满 30 天的用户
func (s *QuotaService) RolloverExpiredCycles(ctx context.Context) (int64, error) {
	now := s.now()
	cutoff := now.AddDate(0, 0, -model.BillingCycleDays)

	n, err := s.profileRepo.ResetExpiredCycles(ctx, cutoff, now)
	if err != nil {
		return 0, fmt.Errorf("reset expired cycles: %w", err)
	}

	if n > 0 {
		metrics.CycleRollovers.Add(float64(n))
		log.Ctx(ctx).Info().Int64("profiles", n).Msg("billing cycles rolled over")
	}
	return n, nil
}

// PendingRollovers 计费周期已到期、等待重置的用户数
func (s *QuotaService) PendingRollovers(ctx context.Context) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -model.BillingCycleDays)
	n, err := s.profileRepo.CountExpiredCycles(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("count expired cycles: %w", err)
	}
	return n, nil
}

// SetPlan 修改用户套餐，额度按配置表设置
func (s *QuotaService) SetPlan(ctx context.Context, userID, plan string) (*model.Profile, error) {
	if !model.ValidPlan(plan) {
		return nil, ErrInvalidPlan
	}

	if err := s.profileRepo.UpdatePlan(ctx, userID, plan, s.cfg.RequestsLimit(plan)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update plan: %w", err)
	}

	return getProfile(ctx, s.profileRepo, userID)
}
