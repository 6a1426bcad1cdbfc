package services

import (
	"strings"
	"testing"
	"time"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"monday maps to itself",
			time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC),
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			"wednesday maps back to monday",
			time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			"saturday maps back to monday",
			time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC),
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday belongs to the week that started six days earlier",
			time.Date(2026, 8, 30, 0, 0, 1, 0, time.UTC),
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			"next monday starts a fresh window",
			time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecideQuotaPremiumBypass(t *testing.T) {
	for _, feature := range []FeatureType{FeaturePhotoAnalysis, FeatureDietPlan} {
		q := decideQuota(true, feature, 999)
		if !q.CanUse || !q.IsPremium || q.RequiresAd || q.LimitReached {
			t.Errorf("%s: premium quota = %+v", feature, q)
		}
		if q.MaxLimit != -1 {
			t.Errorf("%s: MaxLimit = %d, want -1 (unlimited)", feature, q.MaxLimit)
		}
	}
}

func TestDecideQuotaPhotoAnalysis(t *testing.T) {
	tests := []struct {
		count        int
		canUse       bool
		requiresAd   bool
		limitReached bool
	}{
		{0, true, true, false},
		{2, true, true, false},
		{3, false, false, true},
		{7, false, false, true},
	}
	for _, tt := range tests {
		q := decideQuota(false, FeaturePhotoAnalysis, tt.count)
		if q.CanUse != tt.canUse || q.RequiresAd != tt.requiresAd || q.LimitReached != tt.limitReached {
			t.Errorf("count %d: got %+v", tt.count, q)
		}
		if q.MaxLimit != 3 {
			t.Errorf("count %d: MaxLimit = %d, want 3", tt.count, q.MaxLimit)
		}
	}
}

func TestDecideQuotaDietPlan(t *testing.T) {
	q := decideQuota(false, FeatureDietPlan, 0)
	if !q.CanUse || !q.RequiresAd || q.LimitReached {
		t.Errorf("count 0: got %+v", q)
	}
	if q.MaxLimit != 1 {
		t.Errorf("MaxLimit = %d, want 1", q.MaxLimit)
	}

	q = decideQuota(false, FeatureDietPlan, 1)
	if q.CanUse || !q.LimitReached {
		t.Errorf("count 1: got %+v", q)
	}
	if !strings.Contains(q.Message, "Pazartesi") {
		t.Errorf("limit message should name the reset day: %q", q.Message)
	}
}

func TestDecideQuotaRemainingCountInMessage(t *testing.T) {
	q := decideQuota(false, FeaturePhotoAnalysis, 1)
	if !strings.Contains(q.Message, "2") {
		t.Errorf("message should carry the remaining count: %q", q.Message)
	}
}
