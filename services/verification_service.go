package services

import (
	"fmt"
	"sync"
	"time"

	"kolayfit/models"

	"github.com/google/uuid"
)

// VerificationState tracks a raw analysis result on its way to becoming a
// committed meal log.
type VerificationState string

const (
	StateCaptured     VerificationState = "captured"
	StateAnalyzing    VerificationState = "analyzing"
	StateAutoAccepted VerificationState = "auto_accepted"
	StateNeedsReview  VerificationState = "needs_review"
	StateEditing      VerificationState = "editing"
	StateConfirmed    VerificationState = "confirmed"
	StateSaved        VerificationState = "saved"
	StateFailed       VerificationState = "failed"
)

// Confidence thresholds, applied to the whole AnalysisResult.
const (
	autoAcceptThreshold    = 0.8
	mediumConfidenceFloor  = 0.6
	detailedWarningCeiling = 0.7
)

// Sessions the client never finished are pruned after this long.
const sessionTTL = time.Hour

// VerificationSession is one in-flight meal verification. Sessions live in
// memory only; the AnalysisResult is transient and never persisted as-is.
type VerificationSession struct {
	ID              string                 `json:"id"`
	UserID          uint                   `json:"user_id"`
	State           VerificationState      `json:"state"`
	MealType        models.MealType        `json:"meal_type"`
	PhotoData       string                 `json:"-"` // base64 data URI, kept until save
	Result          *models.AnalysisResult `json:"result,omitempty"`
	ConfidenceLabel string                 `json:"confidence_label,omitempty"`
	// Set when confidence is under 0.7: the UI shows a banner recommending
	// the detailed analysis path.
	SuggestDetailed bool                    `json:"suggest_detailed,omitempty"`
	Totals          *models.NutritionTotals `json:"totals,omitempty"`
	MealLogID       uint                    `json:"meal_log_id,omitempty"`
	FailureMessage  string                  `json:"failure_message,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`

	saving bool
}

// snapshot copies the session deeply enough that a handler can encode it
// while the live session keeps changing under the service mutex.
func (s *VerificationSession) snapshot() *VerificationSession {
	cp := *s
	if s.Result != nil {
		r := *s.Result
		r.DetectedFoods = append([]models.FoodItem(nil), s.Result.DetectedFoods...)
		cp.Result = &r
	}
	if s.Totals != nil {
		t := *s.Totals
		cp.Totals = &t
	}
	return &cp
}

// FoodAnalyzer is the remote recognition boundary.
type FoodAnalyzer interface {
	AnalyzeFoodImage(image string, mealType models.MealType, analysisType string, details map[string]string) (*models.AnalysisResult, error)
	AnalyzeFoodByName(foodName string, mealType models.MealType) (*models.AnalysisResult, error)
}

// BarcodeLookup is the packaged-food product database boundary.
type BarcodeLookup interface {
	LookupBarcode(barcode string) (*models.AnalysisResult, error)
}

// MealLogSaver is the persistence boundary for confirmed sessions.
type MealLogSaver interface {
	SaveMealLog(userID uint, date time.Time, mealType models.MealType, items []models.FoodItem, photoData string) (*models.MealLog, error)
}

// VerificationService owns the in-memory session store. Every session read
// and mutation happens under the mutex; callers only ever see snapshots, so
// a client polling a session during a long-running analysis never races
// with the analysis writing its result.
type VerificationService struct {
	mu       sync.Mutex
	sessions map[string]*VerificationSession
	analyzer FoodAnalyzer
	barcodes BarcodeLookup
	saver    MealLogSaver
}

func NewVerificationService(analyzer FoodAnalyzer, barcodes BarcodeLookup, saver MealLogSaver) *VerificationService {
	return &VerificationService{
		sessions: make(map[string]*VerificationSession),
		analyzer: analyzer,
		barcodes: barcodes,
		saver:    saver,
	}
}

// NormalizeConfidence brings every recognizer score onto the 0..1 scale.
// The name-based endpoint reports 0–100; this is the single conversion
// point, so the thresholds below exist exactly once.
func NormalizeConfidence(c float64) float64 {
	if c > 1 {
		c = c / 100
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// ConfidenceLabel returns the user-facing Turkish confidence band.
func ConfidenceLabel(c float64) string {
	switch {
	case c >= autoAcceptThreshold:
		return "Yüksek Güven"
	case c >= mediumConfidenceFloor:
		return "Orta Güven"
	default:
		return "Düşük Güven"
	}
}

// lookup returns the live session. Caller must hold v.mu.
func (v *VerificationService) lookup(userID uint, sessionID string) (*VerificationSession, error) {
	sess, ok := v.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return nil, fmt.Errorf("verification session not found")
	}
	return sess, nil
}

// pruneLocked drops sessions past their TTL. Caller must hold v.mu. Runs
// on every session creation so abandoned sessions cannot pile up in a
// long-running process.
func (v *VerificationService) pruneLocked(now time.Time) {
	for id, sess := range v.sessions {
		if now.Sub(sess.CreatedAt) > sessionTTL {
			delete(v.sessions, id)
		}
	}
}

func (v *VerificationService) Start(userID uint, mealType models.MealType, photoData string) *VerificationSession {
	sess := &VerificationSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		State:     StateCaptured,
		MealType:  mealType,
		PhotoData: photoData,
		CreatedAt: time.Now(),
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pruneLocked(sess.CreatedAt)
	v.sessions[sess.ID] = sess
	return sess.snapshot()
}

func (v *VerificationService) Get(userID uint, sessionID string) (*VerificationSession, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	sess, err := v.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.snapshot(), nil
}

// Abandon drops a session. An in-flight analysis may still complete; its
// result is simply discarded.
func (v *VerificationService) Abandon(userID uint, sessionID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if sess, ok := v.sessions[sessionID]; ok && sess.UserID == userID {
		delete(v.sessions, sessionID)
	}
}

// beginAnalysis validates the session and flips it to analyzing, returning
// what the remote call needs. The remote call itself must run without the
// lock: vision analysis can take the full 90 seconds and polling reads must
// not block behind it.
func (v *VerificationService) beginAnalysis(userID uint, sessionID string, needsPhoto bool) (photo string, mealType models.MealType, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	sess, err := v.lookup(userID, sessionID)
	if err != nil {
		return "", "", err
	}
	if sess.State != StateCaptured {
		return "", "", fmt.Errorf("cannot analyze from state %q", sess.State)
	}
	if needsPhoto && sess.PhotoData == "" {
		return "", "", fmt.Errorf("session has no captured image")
	}
	sess.State = StateAnalyzing
	return sess.PhotoData, sess.MealType, nil
}

// finishAnalysis applies the remote outcome. If the session was abandoned
// mid-flight the result is discarded.
func (v *VerificationService) finishAnalysis(userID uint, sessionID string, result *models.AnalysisResult, callErr error) (*VerificationSession, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	sess, err := v.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	applyResult(sess, result, callErr)
	return sess.snapshot(), nil
}

// AnalyzeImage runs the captured photo through the recognizer and applies
// the confidence gate. This is the workflow's single suspension point.
func (v *VerificationService) AnalyzeImage(userID uint, sessionID, analysisType string, details map[string]string) (*VerificationSession, error) {
	photo, mealType, err := v.beginAnalysis(userID, sessionID, true)
	if err != nil {
		return nil, err
	}
	result, callErr := v.analyzer.AnalyzeFoodImage(photo, mealType, analysisType, details)
	return v.finishAnalysis(userID, sessionID, result, callErr)
}

// AnalyzeByName runs a typed food name through the recognizer. Shares the
// confidence gate with the image path; only the scale differs upstream.
func (v *VerificationService) AnalyzeByName(userID uint, sessionID, foodName string) (*VerificationSession, error) {
	_, mealType, err := v.beginAnalysis(userID, sessionID, false)
	if err != nil {
		return nil, err
	}
	result, callErr := v.analyzer.AnalyzeFoodByName(foodName, mealType)
	return v.finishAnalysis(userID, sessionID, result, callErr)
}

// AnalyzeByBarcode resolves a scanned product barcode against the product
// database. A match is exact data, not an estimate, so it auto-accepts;
// the user still adjusts the amount during review when the serving differs.
func (v *VerificationService) AnalyzeByBarcode(userID uint, sessionID, barcode string) (*VerificationSession, error) {
	if v.barcodes == nil {
		return nil, fmt.Errorf("barcode lookup is not configured")
	}
	_, _, err := v.beginAnalysis(userID, sessionID, false)
	if err != nil {
		return nil, err
	}
	result, callErr := v.barcodes.LookupBarcode(barcode)
	return v.finishAnalysis(userID, sessionID, result, callErr)
}

// applyResult classifies the outcome of an analysis call: failure, zero
// foods, auto-accept, or review. Caller must hold v.mu.
func applyResult(sess *VerificationSession, result *models.AnalysisResult, err error) {
	if err != nil {
		sess.State = StateFailed
		sess.FailureMessage = "Analiz sırasında hata oluştu. Lütfen tekrar deneyin."
		return
	}
	if result == nil || len(result.DetectedFoods) == 0 {
		sess.State = StateFailed
		sess.FailureMessage = "Hiçbir yemek tanınamadı. Tekrar deneyin veya manuel giriş yapın."
		return
	}

	result.Confidence = NormalizeConfidence(result.Confidence)
	sess.Result = result
	sess.ConfidenceLabel = ConfidenceLabel(result.Confidence)
	sess.SuggestDetailed = result.Confidence < detailedWarningCeiling
	sess.FailureMessage = ""

	if result.Confidence >= autoAcceptThreshold {
		sess.State = StateAutoAccepted
	} else {
		sess.State = StateNeedsReview
	}
}

// EditItem fully replaces one detected food with the user's correction.
// No field-level merging: whatever the client sends is the new item, and a
// corrected totalNutrition is never re-derived from nutritionPer100g.
func (v *VerificationService) EditItem(userID uint, sessionID string, index int, item models.FoodItem) (*VerificationSession, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	sess, err := v.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	switch sess.State {
	case StateAutoAccepted, StateNeedsReview, StateEditing:
	default:
		return nil, fmt.Errorf("cannot edit items in state %q", sess.State)
	}
	if sess.Result == nil || index < 0 || index >= len(sess.Result.DetectedFoods) {
		return nil, fmt.Errorf("food item index out of range")
	}

	sess.Result.DetectedFoods[index] = item
	sess.State = StateEditing
	return sess.snapshot(), nil
}

// RemoveItem drops a detected food the user rejects outright.
func (v *VerificationService) RemoveItem(userID uint, sessionID string, index int) (*VerificationSession, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	sess, err := v.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	switch sess.State {
	case StateAutoAccepted, StateNeedsReview, StateEditing:
	default:
		return nil, fmt.Errorf("cannot edit items in state %q", sess.State)
	}
	if sess.Result == nil || index < 0 || index >= len(sess.Result.DetectedFoods) {
		return nil, fmt.Errorf("food item index out of range")
	}

	foods := sess.Result.DetectedFoods
	sess.Result.DetectedFoods = append(foods[:index], foods[index+1:]...)
	sess.State = StateEditing
	return sess.snapshot(), nil
}

// Confirm freezes the current item list and computes the meal totals.
func (v *VerificationService) Confirm(userID uint, sessionID string) (*VerificationSession, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	sess, err := v.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	switch sess.State {
	case StateAutoAccepted, StateNeedsReview, StateEditing:
	default:
		return nil, fmt.Errorf("cannot confirm from state %q", sess.State)
	}
	if sess.Result == nil || len(sess.Result.DetectedFoods) == 0 {
		return nil, fmt.Errorf("nothing to confirm: no food items")
	}

	totals := Aggregate(sess.Result.DetectedFoods)
	sess.Totals = &totals
	sess.State = StateConfirmed
	return sess.snapshot(), nil
}

// Save persists the confirmed session as a meal log. On failure the session
// stays confirmed with every item intact, so the user retries without
// re-entering anything and no partial log is ever written. A saved session
// is evicted from the store.
func (v *VerificationService) Save(userID uint, sessionID string) (*VerificationSession, error) {
	v.mu.Lock()
	sess, err := v.lookup(userID, sessionID)
	if err != nil {
		v.mu.Unlock()
		return nil, err
	}
	if sess.State != StateConfirmed {
		v.mu.Unlock()
		return nil, fmt.Errorf("cannot save from state %q", sess.State)
	}
	if sess.saving {
		v.mu.Unlock()
		return nil, fmt.Errorf("save already in progress")
	}
	sess.saving = true
	items := append([]models.FoodItem(nil), sess.Result.DetectedFoods...)
	mealType, photo := sess.MealType, sess.PhotoData
	v.mu.Unlock()

	log, saveErr := v.saver.SaveMealLog(userID, time.Now(), mealType, items, photo)

	v.mu.Lock()
	defer v.mu.Unlock()
	sess.saving = false
	if saveErr != nil {
		return sess.snapshot(), fmt.Errorf("öğün kaydedilirken hata oluştu: %w", saveErr)
	}

	sess.MealLogID = log.ID
	sess.State = StateSaved
	snap := sess.snapshot()
	delete(v.sessions, sess.ID)
	return snap, nil
}

// Retry returns a failed session to captured so the user can resubmit.
func (v *VerificationService) Retry(userID uint, sessionID string) (*VerificationSession, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	sess, err := v.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State != StateFailed {
		return nil, fmt.Errorf("retry is only available after a failure")
	}

	sess.State = StateCaptured
	sess.Result = nil
	sess.Totals = nil
	sess.ConfidenceLabel = ""
	sess.SuggestDetailed = false
	sess.FailureMessage = ""
	return sess.snapshot(), nil
}

// ManualEntry is the escape hatch from a failed analysis: the user types
// the items themselves, so there is no confidence gate and the session goes
// straight to confirmed.
func (v *VerificationService) ManualEntry(userID uint, mealType models.MealType, items []models.FoodItem) (*VerificationSession, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("manual entry requires at least one food item")
	}

	totals := Aggregate(items)
	sess := &VerificationSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		State:     StateConfirmed,
		MealType:  mealType,
		Result:    &models.AnalysisResult{DetectedFoods: items, Confidence: 1},
		Totals:    &totals,
		CreatedAt: time.Now(),
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pruneLocked(sess.CreatedAt)
	v.sessions[sess.ID] = sess
	return sess.snapshot(), nil
}
