package controllers

import (
	"net/http"
	"strconv"

	"kolayfit/middlewares"
	"kolayfit/models"
	"kolayfit/services"

	"github.com/gin-gonic/gin"
)

// StartAnalysis opens a verification session for a captured photo or an
// upcoming name lookup.
func StartAnalysis(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var body struct {
		MealType    string `json:"meal_type" binding:"required"`
		ImageBase64 string `json:"image_base64"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mealType, ok := models.ParseMealType(body.MealType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal_type"})
		return
	}

	sess := services.Verification().Start(user.ID, mealType, body.ImageBase64)
	c.JSON(http.StatusCreated, sess)
}

func GetAnalysis(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	sess, err := services.Verification().Get(user.ID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// AnalyzeImage submits the session's photo to the recognizer. Long call:
// the image path allows up to 90 seconds.
func AnalyzeImage(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var body struct {
		AnalysisType string            `json:"analysis_type"` // quick | detailed
		Details      map[string]string `json:"details"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.AnalysisType == "" {
		body.AnalysisType = "quick"
	}

	sess, err := services.Verification().AnalyzeImage(user.ID, c.Param("id"), body.AnalysisType, body.Details)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func AnalyzeByName(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var body struct {
		FoodName string `json:"food_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := services.Verification().AnalyzeByName(user.ID, c.Param("id"), body.FoodName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// AnalyzeByBarcode resolves a scanned product barcode into the session.
func AnalyzeByBarcode(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var body struct {
		Barcode string `json:"barcode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := services.Verification().AnalyzeByBarcode(user.ID, c.Param("id"), body.Barcode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func EditAnalysisItem(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item index"})
		return
	}
	var item models.FoodItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := services.Verification().EditItem(user.ID, c.Param("id"), index, item)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func RemoveAnalysisItem(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item index"})
		return
	}

	sess, err := services.Verification().RemoveItem(user.ID, c.Param("id"), index)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func ConfirmAnalysis(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	sess, err := services.Verification().Confirm(user.ID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func SaveAnalysis(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	sess, err := services.Verification().Save(user.ID, c.Param("id"))
	if err != nil {
		// Session stays confirmed; the client may retry the save as-is.
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "session": sess})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func RetryAnalysis(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	sess, err := services.Verification().Retry(user.ID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func AbandonAnalysis(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	services.Verification().Abandon(user.ID, c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ManualMealEntry skips recognition entirely: the user typed the items, so
// the session is created already confirmed and saved in one step.
func ManualMealEntry(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var body struct {
		MealType string            `json:"meal_type" binding:"required"`
		Items    []models.FoodItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mealType, ok := models.ParseMealType(body.MealType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal_type"})
		return
	}

	sess, err := services.Verification().ManualEntry(user.ID, mealType, body.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := services.Verification().Save(user.ID, sess.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "session": sess})
		return
	}
	c.JSON(http.StatusCreated, saved)
}
