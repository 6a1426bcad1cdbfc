package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"kolayfit/config"
	"kolayfit/middlewares"
	"kolayfit/models"
	"kolayfit/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func GetActiveDietPlan(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	plan, err := services.DietPlans().GetActivePlan(user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"plan": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plan":              plan,
		"default_day_index": services.DefaultDayIndex(time.Now()),
	})
}

func generate(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	profile, err := profileSvc().GetProfile(user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "complete your diet profile first"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	outcome, err := services.DietPlans().GeneratePlan(user, profile)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func GenerateDietPlan(c *gin.Context) {
	generate(c)
}

// RegenerateDietPlan replaces the whole plan. Destructive, so the client
// must send confirmed:true after its "are you sure" dialog; it consumes
// quota exactly like the initial generation.
func RegenerateDietPlan(c *gin.Context) {
	var body struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !body.Confirmed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "regeneration must be confirmed"})
		return
	}
	generate(c)
}

// PlanAdCompleted is the rewarded-ad callback: record the watch, then
// replay the pending generation request.
func PlanAdCompleted(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var body struct {
		AdNetwork       string `json:"ad_network"`
		DurationSeconds int    `json:"ad_duration_seconds"`
	}
	_ = c.ShouldBindJSON(&body)

	gate := services.NewAdLimitService(config.DB)
	if _, err := gate.RecordAdWatch(user.ID, services.FeatureDietPlan, true, body.AdNetwork, body.DurationSeconds, ""); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	plan, err := services.DietPlans().OnAdCompleted(user.ID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// PlanAdCancelled discards the pending request. No quota is consumed and
// nothing is generated.
func PlanAdCancelled(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	gate := services.NewAdLimitService(config.DB)
	if _, err := gate.RecordAdWatch(user.ID, services.FeatureDietPlan, false, "", 0, "cancelled by user"); err != nil {
		log.Printf("failed to record cancelled ad watch for user %d: %v", user.ID, err)
	}

	services.DietPlans().CancelPending(user.ID)
	c.Status(http.StatusNoContent)
}

func ReplaceDietMeal(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var body struct {
		PlanID      string          `json:"plan_id" binding:"required"`
		DayIndex    int             `json:"day_index" binding:"required"`
		CurrentMeal models.DietMeal `json:"current_meal" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	planID, err := uuid.Parse(body.PlanID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan_id"})
		return
	}

	profile, err := profileSvc().GetProfile(user.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "complete your diet profile first"})
		return
	}

	day, err := services.DietPlans().ReplaceMealInPlan(user.ID, planID, body.DayIndex, body.CurrentMeal, profile)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updatedDay": day})
}
