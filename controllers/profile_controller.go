package controllers

import (
	"errors"
	"net/http"

	"kolayfit/config"
	"kolayfit/middlewares"
	"kolayfit/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func profileSvc() *services.ProfileService {
	meals := services.NewMealLogService(config.DB)
	goals := services.NewGoalService(config.DB, meals)
	return services.NewProfileService(config.DB, goals)
}

func GetDietProfile(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	profile, err := profileSvc().GetProfile(user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"profile": nil, "has_seen_onboarding": false})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func UpdateDietProfile(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var input services.DietProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := profileSvc().UpsertProfile(user.ID, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func CompleteOnboarding(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var input services.DietProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := profileSvc().CompleteOnboarding(user.ID, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func GetAssessment(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	assessment, err := profileSvc().Assessment(user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no diet profile yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, assessment)
}
