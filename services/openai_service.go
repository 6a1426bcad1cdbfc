package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"kolayfit/models"
)

// OpenAIService wraps every remote AI call the app makes: food recognition
// from a photo, nutrition analysis from a typed name, 7-day diet plan
// generation and single-meal replacement. All of them are plain JSON over
// HTTPS with bearer auth; none are retried automatically.
type OpenAIService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	// Image analysis gets its own client: vision calls on large photos
	// routinely take over a minute.
	visionClient *http.Client
}

const imageAnalysisTimeout = 90 * time.Second

func NewOpenAIService() *OpenAIService {
	return &OpenAIService{
		apiKey:       os.Getenv("OPENAI_API_KEY"),
		baseURL:      "https://api.openai.com/v1/chat/completions",
		client:       &http.Client{Timeout: 30 * time.Second},
		visionClient: &http.Client{Timeout: imageAnalysisTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string, or content parts for vision
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat any           `json:"response_format,omitempty"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *OpenAIService) chat(client *http.Client, req chatRequest) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat payload: %w", err)
	}

	httpReq, err := http.NewRequest("POST", s.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read OpenAI response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai API error %d: %s", resp.StatusCode, string(body))
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("failed to parse OpenAI JSON: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("openai response has no choices")
	}
	return cr.Choices[0].Message.Content, nil
}

// ExtractJSON strips markdown fences and any surrounding prose from a model
// reply, leaving the outermost JSON object. Models occasionally wrap their
// output despite response_format=json_object.
func ExtractJSON(content string) string {
	c := strings.TrimSpace(content)
	if strings.HasPrefix(c, "```") {
		c = strings.TrimPrefix(c, "```json")
		c = strings.TrimPrefix(c, "```")
		c = strings.TrimSuffix(strings.TrimSpace(c), "```")
	}
	start := strings.Index(c, "{")
	end := strings.LastIndex(c, "}")
	if start != -1 && end > start {
		c = c[start : end+1]
	}
	return strings.TrimSpace(c)
}

const imageAnalysisPrompt = `Sen bir beslenme uzmanısın. Fotoğraftaki yemekleri tanı ve besin değerlerini tahmin et.

Sadece JSON döndür:
{
  "detectedFoods": [
    {
      "name": "Yemek adı",
      "estimatedAmount": "Miktar ve birim (örn: 1 porsiyon, 100g, 1 adet)",
      "nutritionPer100g": {"calories":0,"protein":0,"carbs":0,"fat":0,"fiber":0,"sugar":0,"sodium":0},
      "totalNutrition": {"calories":0,"protein":0,"carbs":0,"fat":0,"fiber":0,"sugar":0,"sodium":0}
    }
  ],
  "confidence": 0_ile_1_arası_sayı,
  "suggestions": "Kullanıcıya kısa öneri"
}

Türk mutfağı yemeklerini önceliklendir. Hiçbir yemeği tanıyamıyorsan boş detectedFoods dizisi döndür.`

// AnalyzeFoodImage sends a photo (data URI or URL) to the vision model.
// analysisType is "quick" or "detailed"; details carries the extra form
// answers of the detailed path and is folded into the prompt.
func (s *OpenAIService) AnalyzeFoodImage(image string, mealType models.MealType, analysisType string, details map[string]string) (*models.AnalysisResult, error) {
	userText := fmt.Sprintf("Öğün: %s. Analiz tipi: %s.", mealType.Label(), analysisType)
	for k, v := range details {
		if v != "" {
			userText += fmt.Sprintf(" %s: %s.", k, v)
		}
	}

	content := []any{
		map[string]any{"type": "text", "text": userText},
		map[string]any{"type": "image_url", "image_url": map[string]any{"url": image}},
	}

	reply, err := s.chat(s.visionClient, chatRequest{
		Model: "gpt-4o",
		Messages: []chatMessage{
			{Role: "system", Content: imageAnalysisPrompt},
			{Role: "user", Content: content},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse analysis JSON: %w", err)
	}
	sanitizeResult(&result)
	return &result, nil
}

const nameAnalysisPrompt = `Sen Türk mutfağı ve beslenme uzmanısın. Verilen yemek adından besin değeri analizi yap. Standart ev porsiyonlarını kullan.

Sadece JSON döndür:
{
  "recognizedName": "Tanınan tam yemek adı",
  "foods": [
    {"name":"Yemek adı","amount":150,"unit":"gram","calories":0,"protein":0,"carbs":0,"fat":0,"fiber":0,"sugar":0,"sodium":0}
  ],
  "confidence": 0_ile_100_arası_güven_skoru,
  "suggestions": ["Benzer yemek önerisi"],
  "notes": "Porsiyon notu"
}`

type nameAnalysisResponse struct {
	RecognizedName string `json:"recognizedName"`
	Foods          []struct {
		Name     string  `json:"name"`
		Amount   float64 `json:"amount"`
		Unit     string  `json:"unit"`
		Calories float64 `json:"calories"`
		Protein  float64 `json:"protein"`
		Carbs    float64 `json:"carbs"`
		Fat      float64 `json:"fat"`
		Fiber    float64 `json:"fiber"`
		Sugar    float64 `json:"sugar"`
		Sodium   float64 `json:"sodium"`
	} `json:"foods"`
	Confidence  float64  `json:"confidence"` // 0–100 on this endpoint
	Suggestions []string `json:"suggestions"`
	Notes       string   `json:"notes"`
}

// AnalyzeFoodByName resolves a typed food name to nutrition values. Note the
// confidence scale: this endpoint reports 0–100, not 0–1; the verification
// workflow normalizes it before any threshold comparison.
func (s *OpenAIService) AnalyzeFoodByName(foodName string, mealType models.MealType) (*models.AnalysisResult, error) {
	userText := fmt.Sprintf("Yemek adı: %q\nÖğün: %s", foodName, mealType.Label())

	reply, err := s.chat(s.client, chatRequest{
		Model: "gpt-4o-mini",
		Messages: []chatMessage{
			{Role: "system", Content: nameAnalysisPrompt},
			{Role: "user", Content: userText},
		},
		Temperature: 0.3,
		MaxTokens:   1500,
	})
	if err != nil {
		return nil, err
	}

	var nr nameAnalysisResponse
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &nr); err != nil {
		return nil, fmt.Errorf("failed to parse analysis JSON: %w", err)
	}

	result := &models.AnalysisResult{
		Confidence:  nr.Confidence,
		Suggestions: strings.Join(nr.Suggestions, " "),
	}
	for _, f := range nr.Foods {
		item := models.FoodItem{
			Name:            f.Name,
			EstimatedAmount: fmt.Sprintf("%g %s", f.Amount, f.Unit),
			TotalNutrition: models.NutritionTotals{
				Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs,
				Fat: f.Fat, Fiber: f.Fiber, Sugar: f.Sugar, Sodium: f.Sodium,
			},
		}
		// Per-100g values can only be derived for weight/volume units.
		if f.Amount > 0 && (f.Unit == "gram" || f.Unit == "ml") {
			scale := 100 / f.Amount
			item.NutritionPer100g = models.NutritionTotals{
				Calories: f.Calories * scale, Protein: f.Protein * scale,
				Carbs: f.Carbs * scale, Fat: f.Fat * scale,
				Fiber: f.Fiber * scale, Sugar: f.Sugar * scale,
				Sodium: f.Sodium * scale,
			}
		}
		result.DetectedFoods = append(result.DetectedFoods, item)
	}
	sanitizeResult(result)
	return result, nil
}

// sanitizeResult fills the defaults the mobile clients rely on: a non-empty
// estimated amount and no negative nutrient values.
func sanitizeResult(r *models.AnalysisResult) {
	for i := range r.DetectedFoods {
		f := &r.DetectedFoods[i]
		if f.EstimatedAmount == "" {
			f.EstimatedAmount = "1 porsiyon"
		}
		clampNonNegative(&f.NutritionPer100g)
		clampNonNegative(&f.TotalNutrition)
	}
}

func clampNonNegative(n *models.NutritionTotals) {
	for _, v := range []*float64{&n.Calories, &n.Protein, &n.Carbs, &n.Fat, &n.Fiber, &n.Sugar, &n.Sodium} {
		if *v < 0 {
			*v = 0
		}
	}
}

const dietPlanPrompt = `Sen Türk kullanıcılar için çalışan profesyonel bir beslenme uzmanısın. Kullanıcının diyet profiline göre 7 günlük dengeli bir beslenme planı oluştur.

KURALLAR:
1. Belirtilen alerjenlere KESİNLİKLE uy, alerjen içeren hiçbir malzeme kullanma.
2. Seçilen diyet türüne %100 uyum sağla.
3. 7 gün içinde çeşitlilik sağla, aynı yemeği sık tekrar etme.
4. Türk mutfağına ve Türkiye'de bulunabilir malzemelere öncelik ver.
5. Hedef ve aktivite seviyesine göre günlük kalori aralığını belirle.
6. Sevilmeyen yiyecekleri kullanma.

Sadece JSON döndür:
{"days":[{"dayIndex":1,"dayName":"Pazartesi","totalCalories":1800,"meals":[{"mealType":"breakfast","titleTr":"...","descriptionTr":"...","calories":450,"protein":20,"carbs":60,"fat":12,"instructions":"..."}],"notes":"..."}]}

7 gün için tekrarla (dayIndex 1-7, dayName Pazartesi-Pazar); her günde breakfast, lunch, dinner ve snack olsun.`

func describeProfile(p *models.DietProfile) string {
	allergens := "Yok"
	if list := p.AllergenList(); len(list) > 0 {
		labels := make([]string, 0, len(list))
		for _, a := range list {
			labels = append(labels, a.Label())
		}
		allergens = strings.Join(labels, ", ")
	}
	orDefault := func(s, def string) string {
		if s == "" {
			return def
		}
		return s
	}
	return fmt.Sprintf(
		"Yaş: %d\nCinsiyet: %s\nBoy: %d cm\nKilo: %g kg\nHedef: %s\nAktivite Seviyesi: %s\nDiyet Türü: %s\nAlerjenler: %s\nSevilmeyen Yiyecekler: %s\nTercih Edilen Mutfaklar: %s",
		p.Age, p.Gender, p.HeightCm, p.WeightKg,
		p.Goal.Label(), p.ActivityLevel.Label(), p.DietType.Label(), allergens,
		orDefault(p.DislikedFoods, "Belirtilmedi"),
		orDefault(p.PreferredCuisines, "Belirtilmedi"),
	)
}

// GenerateDietPlan asks the model for a full 7-day plan and validates the
// returned structure before it ever reaches the database.
func (s *OpenAIService) GenerateDietPlan(profile *models.DietProfile) (*models.DietPlanData, error) {
	reply, err := s.chat(s.client, chatRequest{
		Model: "gpt-4o",
		Messages: []chatMessage{
			{Role: "system", Content: dietPlanPrompt},
			{Role: "user", Content: "Aşağıdaki profil için 7 günlük diyet planı oluştur:\n\n" + describeProfile(profile)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.7,
	})
	if err != nil {
		return nil, err
	}

	var data models.DietPlanData
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &data); err != nil {
		return nil, fmt.Errorf("invalid plan format from OpenAI: %w", err)
	}
	if len(data.Days) == 0 {
		return nil, fmt.Errorf("invalid plan structure: missing or empty days array")
	}
	return &data, nil
}

const replaceMealPrompt = `Sen Türk kullanıcılar için çalışan profesyonel bir beslenme uzmanısın. Kullanıcının beğenmediği bir öğünü alternatif bir öğünle değiştir.

KURALLAR:
1. Belirtilen alerjenlere KESİNLİKLE uy.
2. Seçilen diyet türüne %100 uyum sağla.
3. Yeni öğün, değiştirilen öğünle BENZER KALORİ VE MAKRO değerlerine sahip olmalı.
4. Türk mutfağına öncelik ver, sevilmeyen yiyecekleri kullanma.

Sadece JSON formatında tek bir meal objesi döndür:
{"mealType":"breakfast","titleTr":"...","descriptionTr":"...","calories":450,"protein":20,"carbs":60,"fat":12,"instructions":"..."}`

// ReplaceMeal asks for a single alternative meal with similar macros.
func (s *OpenAIService) ReplaceMeal(profile *models.DietProfile, current models.DietMeal) (*models.DietMeal, error) {
	userText := fmt.Sprintf(
		"Kullanıcı profili:\n%s\n\nDeğiştirilecek Öğün:\nÖğün Tipi: %s\nMevcut Yemek: %s\nHedef Kalori: %g\nHedef Protein: %gg\nHedef Karbonhidrat: %gg\nHedef Yağ: %gg\n\nBenzer değerlerde farklı bir alternatif öner.",
		describeProfile(profile),
		current.MealType, current.TitleTr,
		current.Calories, current.Protein, current.Carbs, current.Fat,
	)

	reply, err := s.chat(s.client, chatRequest{
		Model: "gpt-4o-mini",
		Messages: []chatMessage{
			{Role: "system", Content: replaceMealPrompt},
			{Role: "user", Content: userText},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.8,
	})
	if err != nil {
		return nil, err
	}

	var meal models.DietMeal
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &meal); err != nil {
		return nil, fmt.Errorf("invalid meal format from OpenAI: %w", err)
	}
	if meal.MealType == "" {
		meal.MealType = current.MealType
	}
	return &meal, nil
}
