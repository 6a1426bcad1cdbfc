package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"kolayfit/config"
	"kolayfit/middlewares"
	"kolayfit/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func mealLogSvc() *services.MealLogService {
	return services.NewMealLogService(config.DB)
}

func parseDateParam(c *gin.Context) (time.Time, bool) {
	dateStr := c.Query("date")
	if dateStr == "" {
		return time.Now(), true
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format. Use YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

func ListMealLogs(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	logs, err := mealLogSvc().ListMealLogsByDate(user.ID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, logs)
}

func GetDailyTotals(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	totals, err := mealLogSvc().DailyTotals(user.ID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, totals)
}

// DeleteMealLog removes one log. The response carries the recomputed daily
// totals so clients never subtract locally.
func DeleteMealLog(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal log id"})
		return
	}

	svc := mealLogSvc()
	log, err := svc.GetMealLog(user.ID, uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "meal log not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := svc.DeleteMealLog(user.ID, uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	totals, err := svc.DailyTotals(user.ID, log.Date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id, "daily_totals": totals})
}
