package services

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"kolayfit/models"
)

type stubAnalyzer struct {
	result *models.AnalysisResult
	err    error
}

func (s *stubAnalyzer) AnalyzeFoodImage(image string, mealType models.MealType, analysisType string, details map[string]string) (*models.AnalysisResult, error) {
	return s.result, s.err
}

func (s *stubAnalyzer) AnalyzeFoodByName(foodName string, mealType models.MealType) (*models.AnalysisResult, error) {
	return s.result, s.err
}

type stubSaver struct {
	err   error
	saved int
}

func (s *stubSaver) SaveMealLog(userID uint, date time.Time, mealType models.MealType, items []models.FoodItem, photoData string) (*models.MealLog, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.saved++
	log := &models.MealLog{}
	log.ID = 42
	return log, nil
}

func detected(confidence float64, names ...string) *models.AnalysisResult {
	r := &models.AnalysisResult{Confidence: confidence}
	for _, n := range names {
		r.DetectedFoods = append(r.DetectedFoods, models.FoodItem{
			Name:           n,
			TotalNutrition: models.NutritionTotals{Calories: 100, Protein: 5},
		})
	}
	return r
}

type stubBarcodes struct {
	result *models.AnalysisResult
	err    error
}

func (s *stubBarcodes) LookupBarcode(barcode string) (*models.AnalysisResult, error) {
	return s.result, s.err
}

// blockingAnalyzer holds the analysis open until released, standing in for
// a slow vision call.
type blockingAnalyzer struct {
	release chan struct{}
	result  *models.AnalysisResult
}

func (b *blockingAnalyzer) AnalyzeFoodImage(image string, mealType models.MealType, analysisType string, details map[string]string) (*models.AnalysisResult, error) {
	<-b.release
	return b.result, nil
}

func (b *blockingAnalyzer) AnalyzeFoodByName(foodName string, mealType models.MealType) (*models.AnalysisResult, error) {
	<-b.release
	return b.result, nil
}

func newTestService(a *stubAnalyzer, s *stubSaver) *VerificationService {
	return NewVerificationService(a, nil, s)
}

func TestNormalizeConfidence(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.85, 0.85},
		{85, 0.85},   // percent scale from the name endpoint
		{100, 1},
		{1, 1},
		{0, 0},
		{-0.3, 0},
		{150, 1},     // 1.5 after division, clamped
	}
	for _, tt := range tests {
		if got := NormalizeConfidence(tt.in); got != tt.want {
			t.Errorf("NormalizeConfidence(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfidenceLabel(t *testing.T) {
	tests := []struct {
		c    float64
		want string
	}{
		{0.95, "Yüksek Güven"},
		{0.8, "Yüksek Güven"},
		{0.79, "Orta Güven"},
		{0.6, "Orta Güven"},
		{0.59, "Düşük Güven"},
		{0, "Düşük Güven"},
	}
	for _, tt := range tests {
		if got := ConfidenceLabel(tt.c); got != tt.want {
			t.Errorf("ConfidenceLabel(%v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestAnalyzeImageAutoAccept(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: detected(0.8, "Mercimek Çorbası")}, &stubSaver{})
	sess := v.Start(1, models.MealLunch, "data:image/jpeg;base64,xxx")

	sess, err := v.AnalyzeImage(1, sess.ID, "quick", nil)
	if err != nil {
		t.Fatalf("AnalyzeImage() error = %v", err)
	}
	if sess.State != StateAutoAccepted {
		t.Errorf("state = %q, want %q", sess.State, StateAutoAccepted)
	}
	if sess.ConfidenceLabel != "Yüksek Güven" {
		t.Errorf("label = %q, want Yüksek Güven", sess.ConfidenceLabel)
	}
	if sess.SuggestDetailed {
		t.Error("SuggestDetailed should be false at 0.8")
	}
}

func TestAnalyzeImageNeedsReviewJustBelowThreshold(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: detected(0.79999, "Pilav")}, &stubSaver{})
	sess := v.Start(1, models.MealDinner, "img")

	sess, _ = v.AnalyzeImage(1, sess.ID, "quick", nil)
	if sess.State != StateNeedsReview {
		t.Errorf("state = %q, want %q", sess.State, StateNeedsReview)
	}
}

func TestAnalyzeImageLowConfidenceSuggestsDetailed(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: detected(0.65, "Kebap")}, &stubSaver{})
	sess := v.Start(1, models.MealDinner, "img")

	sess, _ = v.AnalyzeImage(1, sess.ID, "quick", nil)
	if sess.State != StateNeedsReview {
		t.Errorf("state = %q, want %q", sess.State, StateNeedsReview)
	}
	if sess.ConfidenceLabel != "Orta Güven" {
		t.Errorf("label = %q, want Orta Güven", sess.ConfidenceLabel)
	}
	if !sess.SuggestDetailed {
		t.Error("SuggestDetailed should be set under 0.7")
	}
}

func TestAnalyzeByNamePercentScale(t *testing.T) {
	// The name endpoint reports 0–100; 85 must land in auto-accept.
	v := newTestService(&stubAnalyzer{result: detected(85, "Elma")}, &stubSaver{})
	sess := v.Start(1, models.MealSnack, "")

	sess, err := v.AnalyzeByName(1, sess.ID, "elma")
	if err != nil {
		t.Fatalf("AnalyzeByName() error = %v", err)
	}
	if sess.State != StateAutoAccepted {
		t.Errorf("state = %q, want %q", sess.State, StateAutoAccepted)
	}
	if sess.Result.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", sess.Result.Confidence)
	}
}

func TestAnalyzeImageZeroFoodsFails(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: &models.AnalysisResult{Confidence: 0.9}}, &stubSaver{})
	sess := v.Start(1, models.MealLunch, "img")

	sess, _ = v.AnalyzeImage(1, sess.ID, "quick", nil)
	if sess.State != StateFailed {
		t.Errorf("state = %q, want %q", sess.State, StateFailed)
	}
	if sess.FailureMessage == "" {
		t.Error("expected a failure message")
	}
}

func TestAnalyzeImageRemoteErrorFailsAndRetries(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("upstream timeout")}
	v := newTestService(analyzer, &stubSaver{})
	sess := v.Start(1, models.MealBreakfast, "img")

	sess, _ = v.AnalyzeImage(1, sess.ID, "quick", nil)
	if sess.State != StateFailed {
		t.Fatalf("state = %q, want %q", sess.State, StateFailed)
	}

	sess, err := v.Retry(1, sess.ID)
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if sess.State != StateCaptured {
		t.Errorf("state after retry = %q, want %q", sess.State, StateCaptured)
	}
	if sess.FailureMessage != "" || sess.Result != nil {
		t.Error("retry should clear the failed result")
	}

	// The photo survives the failure, so a second attempt needs no re-capture.
	analyzer.err = nil
	analyzer.result = detected(0.9, "Menemen")
	sess, err = v.AnalyzeImage(1, sess.ID, "quick", nil)
	if err != nil {
		t.Fatalf("second AnalyzeImage() error = %v", err)
	}
	if sess.State != StateAutoAccepted {
		t.Errorf("state = %q, want %q", sess.State, StateAutoAccepted)
	}
}

func TestEditItemFullReplacement(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: detected(0.7, "Makarna", "Salata")}, &stubSaver{})
	sess := v.Start(1, models.MealLunch, "img")
	sess, _ = v.AnalyzeImage(1, sess.ID, "quick", nil)

	corrected := models.FoodItem{
		Name:            "Tam Buğday Makarna",
		EstimatedAmount: "200 g",
		TotalNutrition:  models.NutritionTotals{Calories: 320, Protein: 12},
	}
	sess, err := v.EditItem(1, sess.ID, 0, corrected)
	if err != nil {
		t.Fatalf("EditItem() error = %v", err)
	}
	if sess.State != StateEditing {
		t.Errorf("state = %q, want %q", sess.State, StateEditing)
	}
	got := sess.Result.DetectedFoods[0]
	if got.Name != "Tam Buğday Makarna" || got.TotalNutrition.Calories != 320 {
		t.Errorf("item not replaced: %+v", got)
	}
	// Replacement, not merge: the original per-100g values are gone.
	if got.NutritionPer100g != (models.NutritionTotals{}) {
		t.Errorf("expected empty NutritionPer100g after full replacement, got %+v", got.NutritionPer100g)
	}
}

func TestEditItemIndexOutOfRange(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: detected(0.9, "Çorba")}, &stubSaver{})
	sess := v.Start(1, models.MealDinner, "img")
	sess, _ = v.AnalyzeImage(1, sess.ID, "quick", nil)

	if _, err := v.EditItem(1, sess.ID, 5, models.FoodItem{}); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if _, err := v.EditItem(1, sess.ID, -1, models.FoodItem{}); err == nil {
		t.Error("expected error for negative index")
	}
}

func TestRemoveItem(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: detected(0.9, "Köfte", "Ayran")}, &stubSaver{})
	sess := v.Start(1, models.MealLunch, "img")
	sess, _ = v.AnalyzeImage(1, sess.ID, "quick", nil)

	sess, err := v.RemoveItem(1, sess.ID, 1)
	if err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if len(sess.Result.DetectedFoods) != 1 || sess.Result.DetectedFoods[0].Name != "Köfte" {
		t.Errorf("unexpected items after removal: %+v", sess.Result.DetectedFoods)
	}
}

func TestConfirmComputesTotals(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: detected(0.9, "A", "B", "C")}, &stubSaver{})
	sess := v.Start(1, models.MealDinner, "img")
	sess, _ = v.AnalyzeImage(1, sess.ID, "quick", nil)

	sess, err := v.Confirm(1, sess.ID)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if sess.State != StateConfirmed {
		t.Errorf("state = %q, want %q", sess.State, StateConfirmed)
	}
	if sess.Totals == nil || sess.Totals.Calories != 300 || sess.Totals.Protein != 15 {
		t.Errorf("totals = %+v, want 300 kcal / 15 g protein", sess.Totals)
	}
}

func TestConfirmWithNoItemsRejected(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: detected(0.9, "Tek")}, &stubSaver{})
	sess := v.Start(1, models.MealSnack, "img")
	sess, _ = v.AnalyzeImage(1, sess.ID, "quick", nil)
	sess, _ = v.RemoveItem(1, sess.ID, 0)

	if _, err := v.Confirm(1, sess.ID); err == nil {
		t.Error("expected error confirming an empty item list")
	}
}

func TestSaveFailureKeepsSessionConfirmed(t *testing.T) {
	saver := &stubSaver{err: errors.New("db down")}
	v := newTestService(&stubAnalyzer{result: detected(0.9, "Balık")}, saver)
	sess := v.Start(1, models.MealDinner, "img")
	sess, _ = v.AnalyzeImage(1, sess.ID, "quick", nil)
	sess, _ = v.Confirm(1, sess.ID)

	sess, err := v.Save(1, sess.ID)
	if err == nil {
		t.Fatal("expected save error")
	}
	if !strings.Contains(err.Error(), "db down") {
		t.Errorf("error should wrap the cause: %v", err)
	}
	if sess.State != StateConfirmed {
		t.Errorf("state = %q, want %q after failed save", sess.State, StateConfirmed)
	}
	if len(sess.Result.DetectedFoods) != 1 {
		t.Error("items must survive a failed save")
	}

	// Second attempt succeeds without any re-entry.
	saver.err = nil
	sess, err = v.Save(1, sess.ID)
	if err != nil {
		t.Fatalf("retried Save() error = %v", err)
	}
	if sess.State != StateSaved || sess.MealLogID != 42 {
		t.Errorf("state = %q, meal log = %d; want saved/42", sess.State, sess.MealLogID)
	}
	if saver.saved != 1 {
		t.Errorf("saver called %d times with success, want 1", saver.saved)
	}
}

func TestSaveRequiresConfirmedState(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: detected(0.9, "Çay")}, &stubSaver{})
	sess := v.Start(1, models.MealSnack, "img")
	sess, _ = v.AnalyzeImage(1, sess.ID, "quick", nil)

	if _, err := v.Save(1, sess.ID); err == nil {
		t.Error("expected error saving from auto_accepted without confirm")
	}
}

func TestManualEntrySkipsConfidenceGate(t *testing.T) {
	v := newTestService(&stubAnalyzer{}, &stubSaver{})

	items := []models.FoodItem{{
		Name:           "Ev Yemeği",
		TotalNutrition: models.NutritionTotals{Calories: 450, Protein: 20},
	}}
	sess, err := v.ManualEntry(1, models.MealDinner, items)
	if err != nil {
		t.Fatalf("ManualEntry() error = %v", err)
	}
	if sess.State != StateConfirmed {
		t.Errorf("state = %q, want %q", sess.State, StateConfirmed)
	}
	if sess.Result.Confidence != 1 {
		t.Errorf("confidence = %v, want 1", sess.Result.Confidence)
	}
	if sess.Totals == nil || sess.Totals.Calories != 450 {
		t.Errorf("totals = %+v, want 450 kcal", sess.Totals)
	}

	if _, err := v.ManualEntry(1, models.MealDinner, nil); err == nil {
		t.Error("expected error for empty manual entry")
	}
}

func TestSessionIsolationBetweenUsers(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: detected(0.9, "X")}, &stubSaver{})
	sess := v.Start(1, models.MealLunch, "img")

	if _, err := v.Get(2, sess.ID); err == nil {
		t.Error("user 2 must not see user 1's session")
	}
	if _, err := v.AnalyzeImage(2, sess.ID, "quick", nil); err == nil {
		t.Error("user 2 must not drive user 1's session")
	}
}

func TestPollDuringSlowAnalysis(t *testing.T) {
	analyzer := &blockingAnalyzer{release: make(chan struct{}), result: detected(0.9, "Pide")}
	v := NewVerificationService(analyzer, nil, &stubSaver{})
	sess := v.Start(1, models.MealLunch, "img")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := v.AnalyzeImage(1, sess.ID, "quick", nil); err != nil {
			t.Errorf("AnalyzeImage() error = %v", err)
		}
	}()

	// Wait until the analysis is actually in flight.
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := v.Get(1, sess.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.State == StateAnalyzing {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("analysis never started")
		}
	}

	// Poll like a client waiting on a slow vision call. Every snapshot must
	// be safe to encode while the analysis writes its result.
	for i := 0; i < 100; i++ {
		got, err := v.Get(1, sess.ID)
		if err != nil {
			t.Fatalf("Get() during analysis error = %v", err)
		}
		if _, err := json.Marshal(got); err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
	}

	close(analyzer.release)
	<-done

	got, err := v.Get(1, sess.ID)
	if err != nil {
		t.Fatalf("Get() after analysis error = %v", err)
	}
	if got.State != StateAutoAccepted {
		t.Errorf("state = %q, want %q", got.State, StateAutoAccepted)
	}
}

func TestSnapshotIsolatedFromLiveSession(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: detected(0.9, "Köfte", "Pilav")}, &stubSaver{})
	sess := v.Start(1, models.MealLunch, "img")
	before, _ := v.AnalyzeImage(1, sess.ID, "quick", nil)

	if _, err := v.RemoveItem(1, sess.ID, 1); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if len(before.Result.DetectedFoods) != 2 {
		t.Error("earlier snapshot must not change when the session does")
	}
}

func TestAnalyzeByBarcode(t *testing.T) {
	barcodes := &stubBarcodes{result: detected(1, "Sade Yoğurt (Marka)")}
	v := NewVerificationService(&stubAnalyzer{}, barcodes, &stubSaver{})
	sess := v.Start(1, models.MealSnack, "")

	sess, err := v.AnalyzeByBarcode(1, sess.ID, "8690000000001")
	if err != nil {
		t.Fatalf("AnalyzeByBarcode() error = %v", err)
	}
	if sess.State != StateAutoAccepted {
		t.Errorf("state = %q, want %q", sess.State, StateAutoAccepted)
	}
	if sess.Result.DetectedFoods[0].Name != "Sade Yoğurt (Marka)" {
		t.Errorf("unexpected item: %+v", sess.Result.DetectedFoods[0])
	}
}

func TestAnalyzeByBarcodeUnknownProductFails(t *testing.T) {
	barcodes := &stubBarcodes{result: &models.AnalysisResult{}}
	v := NewVerificationService(&stubAnalyzer{}, barcodes, &stubSaver{})
	sess := v.Start(1, models.MealSnack, "")

	sess, _ = v.AnalyzeByBarcode(1, sess.ID, "0000000000000")
	if sess.State != StateFailed {
		t.Errorf("state = %q, want %q", sess.State, StateFailed)
	}
}

func TestAnalyzeByBarcodeWithoutLookupConfigured(t *testing.T) {
	v := newTestService(&stubAnalyzer{}, &stubSaver{})
	sess := v.Start(1, models.MealSnack, "")

	if _, err := v.AnalyzeByBarcode(1, sess.ID, "123"); err == nil {
		t.Error("expected error when no barcode lookup is wired")
	}
}

func TestSaveSuccessEvictsSession(t *testing.T) {
	v := newTestService(&stubAnalyzer{result: detected(0.9, "Çorba")}, &stubSaver{})
	sess := v.Start(1, models.MealDinner, "img")
	sess, _ = v.AnalyzeImage(1, sess.ID, "quick", nil)
	sess, _ = v.Confirm(1, sess.ID)

	saved, err := v.Save(1, sess.ID)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.State != StateSaved {
		t.Errorf("state = %q, want %q", saved.State, StateSaved)
	}
	if _, err := v.Get(1, sess.ID); err == nil {
		t.Error("saved session should be evicted from the store")
	}
}

func TestStalesSessionsPruned(t *testing.T) {
	v := newTestService(&stubAnalyzer{}, &stubSaver{})
	old := v.Start(1, models.MealLunch, "img")

	v.mu.Lock()
	v.sessions[old.ID].CreatedAt = time.Now().Add(-2 * sessionTTL)
	v.mu.Unlock()

	fresh := v.Start(1, models.MealDinner, "img")
	if _, err := v.Get(1, old.ID); err == nil {
		t.Error("expired session should be pruned when a new one starts")
	}
	if _, err := v.Get(1, fresh.ID); err != nil {
		t.Errorf("fresh session must survive the prune: %v", err)
	}
}

func TestAbandonDropsSession(t *testing.T) {
	v := newTestService(&stubAnalyzer{}, &stubSaver{})
	sess := v.Start(1, models.MealLunch, "img")

	v.Abandon(1, sess.ID)
	if _, err := v.Get(1, sess.ID); err == nil {
		t.Error("session should be gone after abandon")
	}
}
