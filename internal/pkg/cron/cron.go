package cron

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultRolloverInterval 计费周期检查间隔
const DefaultRolloverInterval = time.Hour

// Roller 重置到期计费周期
type Roller interface {
	RolloverExpiredCycles(ctx context.Context) (int64, error)
}

type Service struct {
	roller   Roller
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewService(roller Roller, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultRolloverInterval
	}
	return &Service{
		roller:   roller,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start 启动定时任务，启动时先执行一次
func (s *Service) Start() {
	s.wg.Add(1)
	go s.runRollover()
	log.Info().Dur("interval", s.interval).Msg("cron service started (billing cycle rollover)")
}

// Stop 停止定时任务并等待当前执行结束
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	log.Info().Msg("cron service stopped")
}

func (s *Service) runRollover() {
	defer s.wg.Done()

	s.rollover()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.rollover()
		}
	}
}

func (s *Service) rollover() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if _, err := s.roller.RolloverExpiredCycles(ctx); err != nil {
		log.Error().Err(err).Msg("billing cycle rollover failed")
	}
}

// RunNow 立即执行一次周期重置（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context) (int64, error) {
	log.Info().Msg("manual billing cycle rollover triggered")
	return s.roller.RolloverExpiredCycles(ctx)
}
