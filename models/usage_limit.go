package models

import (
	"time"

	"gorm.io/gorm"
)

// DailyUsageLimit counts rewarded ads watched for photo analysis. One row
// per user per calendar day.
type DailyUsageLimit struct {
	gorm.Model
	UserID                  uint      `gorm:"index:idx_daily_usage,unique;not null"`
	Date                    time.Time `gorm:"type:date;index:idx_daily_usage,unique;not null"`
	PhotoAnalysisAdsWatched int       `gorm:"default:0"`
}

// WeeklyUsageLimit counts rewarded ads watched for diet plan generation.
// One row per user per week; WeekStartDate is always a Monday.
type WeeklyUsageLimit struct {
	gorm.Model
	UserID             uint      `gorm:"index:idx_weekly_usage,unique;not null"`
	WeekStartDate      time.Time `gorm:"type:date;index:idx_weekly_usage,unique;not null"`
	DietPlanAdsWatched int       `gorm:"default:0"`
}

// AdWatchLog is an audit row for every ad attempt, completed or not.
// Cancelled ads are recorded but never grant a reward.
type AdWatchLog struct {
	gorm.Model
	UserID          uint   `gorm:"index;not null"`
	FeatureType     string `gorm:"size:32;not null"`
	Completed       bool
	AdNetwork       string `gorm:"size:32"`
	DurationSeconds int
	ErrorMessage    string `gorm:"type:text"`
}
