package services

import (
	"sync"

	"kolayfit/config"
)

// Verification sessions and pending ad-gated plan requests must survive
// across requests, so these two services are process-wide singletons. The
// stateless services are constructed per request by their controllers.
var (
	once         sync.Once
	verification *VerificationService
	dietPlans    *DietPlanService
)

func initShared() {
	ai := NewOpenAIService()
	verification = NewVerificationService(ai, NewBarcodeService(), NewMealLogService(config.DB))
	dietPlans = NewDietPlanService(config.DB, NewAdLimitService(config.DB), ai)
}

func Verification() *VerificationService {
	once.Do(initShared)
	return verification
}

func DietPlans() *DietPlanService {
	once.Do(initShared)
	return dietPlans
}
