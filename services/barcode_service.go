package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kolayfit/models"
)

// BarcodeService resolves packaged-food barcodes against the Open Food
// Facts product database. Public API, no auth, read-only.
type BarcodeService struct {
	baseURL string
	client  *http.Client
}

func NewBarcodeService() *BarcodeService {
	return &BarcodeService{
		baseURL: "https://world.openfoodfacts.org",
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type offNutriments struct {
	EnergyKcal100g float64 `json:"energy-kcal_100g"`
	Proteins100g   float64 `json:"proteins_100g"`
	Carbs100g      float64 `json:"carbohydrates_100g"`
	Fat100g        float64 `json:"fat_100g"`
	Fiber100g      float64 `json:"fiber_100g"`
	Sugars100g     float64 `json:"sugars_100g"`
	Sodium100g     float64 `json:"sodium_100g"` // grams
}

type offProduct struct {
	ProductName     string        `json:"product_name"`
	ProductNameTr   string        `json:"product_name_tr"`
	Brands          string        `json:"brands"`
	ServingQuantity float64       `json:"serving_quantity"` // grams
	ServingSize     string        `json:"serving_size"`
	Nutriments      offNutriments `json:"nutriments"`
}

type offResponse struct {
	Status  int        `json:"status"` // 1 = found
	Product offProduct `json:"product"`
}

// LookupBarcode fetches one product. An unknown barcode is not an error:
// it returns a result with zero detected foods, which the verification
// workflow reports as its normal not-recognized failure.
func (s *BarcodeService) LookupBarcode(barcode string) (*models.AnalysisResult, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("barcode is empty")
	}

	resp, err := s.client.Get(fmt.Sprintf("%s/api/v2/product/%s.json", s.baseURL, url.PathEscape(barcode)))
	if err != nil {
		return nil, fmt.Errorf("failed to call product database: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read product response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return &models.AnalysisResult{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product database error %d: %s", resp.StatusCode, string(body))
	}

	var or offResponse
	if err := json.Unmarshal(body, &or); err != nil {
		return nil, fmt.Errorf("failed to parse product JSON: %w", err)
	}
	if or.Status != 1 {
		return &models.AnalysisResult{}, nil
	}
	return productToResult(&or.Product), nil
}

func scaleTotals(n models.NutritionTotals, f float64) models.NutritionTotals {
	return models.NutritionTotals{
		Calories: n.Calories * f, Protein: n.Protein * f, Carbs: n.Carbs * f,
		Fat: n.Fat * f, Fiber: n.Fiber * f, Sugar: n.Sugar * f, Sodium: n.Sodium * f,
	}
}

// productToResult maps a product record onto the analysis shape the
// verification workflow consumes. The database reports sodium in grams;
// meal logs store milligrams. Confidence is 1: label data is exact, not an
// estimate.
func productToResult(p *offProduct) *models.AnalysisResult {
	name := p.ProductNameTr
	if name == "" {
		name = p.ProductName
	}
	if name == "" {
		name = "Bilinmeyen Ürün"
	}
	if p.Brands != "" {
		name = name + " (" + p.Brands + ")"
	}

	per100 := models.NutritionTotals{
		Calories: p.Nutriments.EnergyKcal100g,
		Protein:  p.Nutriments.Proteins100g,
		Carbs:    p.Nutriments.Carbs100g,
		Fat:      p.Nutriments.Fat100g,
		Fiber:    p.Nutriments.Fiber100g,
		Sugar:    p.Nutriments.Sugars100g,
		Sodium:   p.Nutriments.Sodium100g * 1000,
	}

	amount := "100 g"
	total := per100
	if p.ServingQuantity > 0 {
		total = scaleTotals(per100, p.ServingQuantity/100)
		amount = p.ServingSize
		if amount == "" {
			amount = fmt.Sprintf("%g g", p.ServingQuantity)
		}
	}

	result := &models.AnalysisResult{
		DetectedFoods: []models.FoodItem{{
			Name:             name,
			EstimatedAmount:  amount,
			NutritionPer100g: per100,
			TotalNutrition:   total,
		}},
		Confidence: 1,
	}
	sanitizeResult(result)
	return result
}
