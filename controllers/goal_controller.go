package controllers

import (
	"net/http"
	"time"

	"kolayfit/config"
	"kolayfit/middlewares"
	"kolayfit/services"

	"github.com/gin-gonic/gin"
)

func goalSvc() *services.GoalService {
	return services.NewGoalService(config.DB, services.NewMealLogService(config.DB))
}

func GetGoals(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	goal, progress, err := goalSvc().GetGoalsAndProgress(user.ID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goal, "progress": progress})
}

func GetGoalsByDate(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'date' query param"})
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format. Use YYYY-MM-DD"})
		return
	}

	goal, progress, err := goalSvc().GetGoalsAndProgress(user.ID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": dateStr, "goals": goal, "progress": progress})
}

// RecalculateGoals re-derives the targets from the stored profile on demand
// ("yeniden hesapla" in the app).
func RecalculateGoals(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	goal, err := goalSvc().RecomputeGoals(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goal})
}
