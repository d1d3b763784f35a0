package model

import (
	"math"
	"time"
)

// 计费周期长度（天）
const BillingCycleDays = 30

// 套餐
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanTeam       = "team"
	PlanEnterprise = "enterprise"
)

// ValidPlan 是否为支持的套餐
func ValidPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanPro, PlanTeam, PlanEnterprise:
		return true
	}
	return false
}

type Profile struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	Email             string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName          *string    `gorm:"size:255" json:"full_name,omitempty"`
	AvatarURL         *string    `gorm:"size:500" json:"avatar_url,omitempty"`
	Plan              string     `gorm:"size:20;default:free;not null" json:"plan"`
	RequestsUsed      int        `gorm:"default:0;not null" json:"requests_used"`
	RequestsLimit     int        `gorm:"default:100;not null" json:"requests_limit"`
	BillingCycleStart time.Time  `gorm:"not null;index" json:"billing_cycle_start"`
	ConnectToken      *string    `gorm:"size:64;uniqueIndex" json:"-"`
	APIKeys           []APIKey   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	UsageLogs         []UsageLog `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Remaining 剩余请求数，不小于 0
func (p *Profile) Remaining() int {
	if remaining := p.RequestsLimit - p.RequestsUsed; remaining > 0 {
		return remaining
	}
	return 0
}

// CycleEnd 当前计费周期结束时间
func (p *Profile) CycleEnd() time.Time {
	return p.BillingCycleStart.AddDate(0, 0, BillingCycleDays)
}

// DaysUntilRenewal 距离下次续期的天数（向上取整）
func (p *Profile) DaysUntilRenewal(now time.Time) int {
	return DaysUntilRenewal(p.BillingCycleStart, now)
}

// DaysUntilRenewal max(0, ceil((start + 30d - now) / 1d))
func DaysUntilRenewal(start, now time.Time) int {
	left := start.AddDate(0, 0, BillingCycleDays).Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}
