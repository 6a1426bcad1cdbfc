package services

import (
	"errors"
	"fmt"
	"time"

	"kolayfit/models"

	"gorm.io/gorm"
)

type FeatureType string

const (
	FeaturePhotoAnalysis FeatureType = "photo_analysis"
	FeatureDietPlan      FeatureType = "diet_plan"
)

// Free-tier allotments: rewarded ads per window.
const (
	photoAnalysisDailyLimit = 3
	dietPlanWeeklyLimit     = 1
)

// QuotaState is the gate's decision for one feature use. Transient — it is
// recomputed on every attempt and never persisted.
type QuotaState struct {
	CanUse       bool   `json:"canUse"`
	RequiresAd   bool   `json:"requiresAd"`
	IsPremium    bool   `json:"isPremium"`
	LimitReached bool   `json:"limitReached"`
	CurrentCount int    `json:"currentCount"`
	MaxLimit     int    `json:"maxLimit"`
	Message      string `json:"message"`
}

type RecordAdResult struct {
	Success       bool   `json:"success"`
	RewardGranted bool   `json:"rewardGranted"`
	NewCount      int    `json:"newCount"`
	MaxLimit      int    `json:"maxLimit"`
	Message       string `json:"message"`
}

type AdLimitService struct {
	db *gorm.DB
}

func NewAdLimitService(db *gorm.DB) *AdLimitService {
	return &AdLimitService{db: db}
}

// WeekStart returns the Monday of t's week, truncated to the day. The
// weekly diet-plan quota resets on this boundary.
func WeekStart(t time.Time) time.Time {
	day := Day(t)
	weekday := int(day.Weekday())
	if weekday == 0 { // Sunday belongs to the week that started 6 days ago
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// decideQuota is the pure decision: premium bypasses everything, otherwise
// the window counter against the feature's limit determines whether an ad
// unlock is still available.
func decideQuota(isPremium bool, feature FeatureType, currentCount int) *QuotaState {
	if isPremium {
		return &QuotaState{
			CanUse:    true,
			IsPremium: true,
			MaxLimit:  -1, // unlimited
			Message:   "Premium user - unlimited access",
		}
	}

	switch feature {
	case FeaturePhotoAnalysis:
		if currentCount >= photoAnalysisDailyLimit {
			return &QuotaState{
				LimitReached: true,
				CurrentCount: currentCount,
				MaxLimit:     photoAnalysisDailyLimit,
				Message:      "Günlük analiz limitiniz doldu. Yarın tekrar deneyin veya Premium'a geçin.",
			}
		}
		return &QuotaState{
			CanUse:       true,
			RequiresAd:   true,
			CurrentCount: currentCount,
			MaxLimit:     photoAnalysisDailyLimit,
			Message: fmt.Sprintf("Analiz yapmak için reklam izleyin. Bugün %d analiz hakkınız kaldı.",
				photoAnalysisDailyLimit-currentCount),
		}
	case FeatureDietPlan:
		if currentCount >= dietPlanWeeklyLimit {
			return &QuotaState{
				LimitReached: true,
				CurrentCount: currentCount,
				MaxLimit:     dietPlanWeeklyLimit,
				Message:      "Haftalık diyet planı limitiniz doldu. Pazartesi tekrar deneyin veya Premium'a geçin.",
			}
		}
		return &QuotaState{
			CanUse:       true,
			RequiresAd:   true,
			CurrentCount: currentCount,
			MaxLimit:     dietPlanWeeklyLimit,
			Message:      "Diyet planı oluşturmak için reklam izleyin.",
		}
	}
	return &QuotaState{Message: fmt.Sprintf("Unknown feature type: %s", feature)}
}

// CheckAdLimit computes the quota decision for one feature use.
func (s *AdLimitService) CheckAdLimit(user *models.User, feature FeatureType) (*QuotaState, error) {
	if feature != FeaturePhotoAnalysis && feature != FeatureDietPlan {
		return nil, fmt.Errorf("unknown feature type: %s", feature)
	}
	if user.IsPremium() {
		return decideQuota(true, feature, 0), nil
	}

	count, err := s.windowCount(user.ID, feature, time.Now())
	if err != nil {
		return nil, err
	}
	return decideQuota(false, feature, count), nil
}

func (s *AdLimitService) windowCount(userID uint, feature FeatureType, now time.Time) (int, error) {
	switch feature {
	case FeaturePhotoAnalysis:
		var row models.DailyUsageLimit
		err := s.db.Where("user_id = ? AND date = ?", userID, Day(now)).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return row.PhotoAnalysisAdsWatched, nil
	default:
		var row models.WeeklyUsageLimit
		err := s.db.Where("user_id = ? AND week_start_date = ?", userID, WeekStart(now)).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return row.DietPlanAdsWatched, nil
	}
}

// RecordAdWatch logs the ad attempt and, only when the ad was completed,
// increments the window counter. A cancelled ad consumes nothing.
func (s *AdLimitService) RecordAdWatch(userID uint, feature FeatureType, completed bool, adNetwork string, durationSeconds int, errorMessage string) (*RecordAdResult, error) {
	if feature != FeaturePhotoAnalysis && feature != FeatureDietPlan {
		return nil, fmt.Errorf("unknown feature type: %s", feature)
	}

	watch := models.AdWatchLog{
		UserID:          userID,
		FeatureType:     string(feature),
		Completed:       completed,
		AdNetwork:       adNetwork,
		DurationSeconds: durationSeconds,
		ErrorMessage:    errorMessage,
	}
	if err := s.db.Create(&watch).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	maxLimit := photoAnalysisDailyLimit
	if feature == FeatureDietPlan {
		maxLimit = dietPlanWeeklyLimit
	}

	if !completed {
		count, err := s.windowCount(userID, feature, now)
		if err != nil {
			return nil, err
		}
		return &RecordAdResult{
			Success:  true,
			NewCount: count,
			MaxLimit: maxLimit,
			Message:  "Reklam tamamlanmadı, hak kullanılmadı.",
		}, nil
	}

	newCount, err := s.incrementWindow(userID, feature, now)
	if err != nil {
		return nil, err
	}
	return &RecordAdResult{
		Success:       true,
		RewardGranted: true,
		NewCount:      newCount,
		MaxLimit:      maxLimit,
		Message:       "Reklam ödülü verildi.",
	}, nil
}

func (s *AdLimitService) incrementWindow(userID uint, feature FeatureType, now time.Time) (int, error) {
	switch feature {
	case FeaturePhotoAnalysis:
		row := models.DailyUsageLimit{UserID: userID, Date: Day(now)}
		if err := s.db.Where("user_id = ? AND date = ?", userID, Day(now)).FirstOrCreate(&row).Error; err != nil {
			return 0, err
		}
		row.PhotoAnalysisAdsWatched++
		if err := s.db.Save(&row).Error; err != nil {
			return 0, err
		}
		return row.PhotoAnalysisAdsWatched, nil
	default:
		row := models.WeeklyUsageLimit{UserID: userID, WeekStartDate: WeekStart(now)}
		if err := s.db.Where("user_id = ? AND week_start_date = ?", userID, WeekStart(now)).FirstOrCreate(&row).Error; err != nil {
			return 0, err
		}
		row.DietPlanAdsWatched++
		if err := s.db.Save(&row).Error; err != nil {
			return 0, err
		}
		return row.DietPlanAdsWatched, nil
	}
}
