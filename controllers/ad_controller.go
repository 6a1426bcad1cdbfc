package controllers

import (
	"net/http"

	"kolayfit/config"
	"kolayfit/middlewares"
	"kolayfit/services"

	"github.com/gin-gonic/gin"
)

// CheckAdLimit reports the quota decision for one feature without consuming
// anything. The client calls this before showing the rewarded-ad prompt.
func CheckAdLimit(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	feature := services.FeatureType(c.Query("feature"))
	if feature == "" {
		feature = services.FeaturePhotoAnalysis
	}

	quota, err := services.NewAdLimitService(config.DB).CheckAdLimit(user, feature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quota)
}

// RecordAdWatch logs an ad attempt. Only a completed watch increments the
// window counter; cancellations are audited but cost nothing.
func RecordAdWatch(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var body struct {
		Feature         string `json:"feature" binding:"required"`
		Completed       bool   `json:"completed"`
		AdNetwork       string `json:"ad_network"`
		DurationSeconds int    `json:"ad_duration_seconds"`
		ErrorMessage    string `json:"error_message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := services.NewAdLimitService(config.DB).RecordAdWatch(
		user.ID, services.FeatureType(body.Feature),
		body.Completed, body.AdNetwork, body.DurationSeconds, body.ErrorMessage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
