package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bird3325/hankki-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeAnalyzer struct {
	mu          sync.Mutex
	analysis    *MealAnalysis
	analyzeErr  error
	recalc      *Recalculation
	recalcErr   error
	recalcCalls int
	recalcGate  chan struct{} // when set, Recalculate blocks until closed
	gotHints    []string
	gotLoc      *Location
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ []byte, loc *Location, hints []string) (*MealAnalysis, error) {
	f.mu.Lock()
	f.gotHints = hints
	f.gotLoc = loc
	f.mu.Unlock()
	return f.analysis, f.analyzeErr
}

func (f *fakeAnalyzer) analyzedLoc() *Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gotLoc
}

func (f *fakeAnalyzer) Recalculate(_ context.Context, _ []byte, _ []string) (*Recalculation, error) {
	f.mu.Lock()
	f.recalcCalls++
	gate := f.recalcGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.recalc, f.recalcErr
}

func (f *fakeAnalyzer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recalcCalls
}

type fakeStore struct {
	mu    sync.Mutex
	meals []*models.Meal
	err   error
}

func (f *fakeStore) CreateMeal(m *models.Meal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.meals = append(f.meals, m)
	return nil
}

func goodAnalysis() *MealAnalysis {
	return &MealAnalysis{
		FoodName: "김치찌개",
		Calories: 450, Carbs: 30, Protein: 25, Fat: 20,
		IngredientDetails: []models.IngredientDetail{
			{Name: "김치"}, {Name: "돼지고기"}, {Name: "두부"},
		},
	}
}

func newTestSession(analyzer VisionAnalyzer, store MealWriter) *EntrySession {
	return NewEntrySession(1, false, DefaultSettings(), analyzer, store, nil)
}

func TestAttachImagePopulatesReviewDraft(t *testing.T) {
	fa := &fakeAnalyzer{analysis: goodAnalysis()}
	s := newTestSession(fa, &fakeStore{})

	err := s.AttachImage(context.Background(), []byte("img"), "data:image/jpeg;base64,aW1n", nil)
	require.NoError(t, err)
	assert.Equal(t, StateReview, s.State())

	draft := s.Draft()
	assert.Equal(t, "김치찌개", draft.FoodName)
	assert.Equal(t, 450.0, draft.Nutrition.Calories)
	assert.Equal(t, []string{"김치", "돼지고기", "두부"}, draft.Ingredients)
}

func TestAttachImageWaitsForBridgeLocation(t *testing.T) {
	fa := &fakeAnalyzer{analysis: goodAnalysis()}
	s := newTestSession(fa, &fakeStore{}).EnableBridge()
	s.ProvideLocation(&Location{Latitude: 37.5, Longitude: 127.0, Name: "강남"})

	err := s.AttachImage(context.Background(), []byte("img"), "data:image/jpeg;base64,aW1n", nil)
	require.NoError(t, err)

	loc := fa.analyzedLoc()
	require.NotNil(t, loc, "bridge callback reaches the vision call")
	assert.Equal(t, "강남", loc.Name)
	assert.Equal(t, "강남", s.Draft().LocationName)
}

func TestAttachImageFallbackLocationWhenBridgeSilent(t *testing.T) {
	fa := &fakeAnalyzer{analysis: goodAnalysis()}
	fallback := &fakeSource{loc: &Location{Name: "집"}}
	s := newTestSession(fa, &fakeStore{}).WithLocationSources(nil, fallback, 10*time.Millisecond)

	err := s.AttachImage(context.Background(), []byte("img"), "data:image/jpeg;base64,aW1n", nil)
	require.NoError(t, err)

	loc := fa.analyzedLoc()
	require.NotNil(t, loc)
	assert.Equal(t, "집", loc.Name)
}

func TestAttachImageExplicitLocationSkipsRace(t *testing.T) {
	fa := &fakeAnalyzer{analysis: goodAnalysis()}
	bridge := &fakeSource{loc: &Location{Name: "bridge"}}
	s := newTestSession(fa, &fakeStore{}).WithLocationSources(bridge, nil, time.Second)

	err := s.AttachImage(context.Background(), []byte("img"), "data:image/jpeg;base64,aW1n", &Location{Name: "회사"})
	require.NoError(t, err)

	loc := fa.analyzedLoc()
	require.NotNil(t, loc)
	assert.Equal(t, "회사", loc.Name, "request location bypasses the armed sources")
}

func TestAttachImageNoSourcesNoWait(t *testing.T) {
	fa := &fakeAnalyzer{analysis: goodAnalysis()}
	s := newTestSession(fa, &fakeStore{})

	start := time.Now()
	err := s.AttachImage(context.Background(), []byte("img"), "data:image/jpeg;base64,aW1n", nil)
	require.NoError(t, err)
	assert.Nil(t, fa.analyzedLoc())
	assert.Less(t, time.Since(start), time.Second, "unarmed session never waits on a bridge")
}

func TestAttachImageFailureReturnsToCapture(t *testing.T) {
	fa := &fakeAnalyzer{analyzeErr: errors.New("model unavailable")}
	s := newTestSession(fa, &fakeStore{})

	err := s.AttachImage(context.Background(), []byte("img"), "data:image/jpeg;base64,aW1n", nil)
	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Equal(t, StateCapture, s.State(), "failed analysis returns to capture")

	// The discarded image means reanalyze has nothing to work with.
	s.Manual()
	assert.ErrorIs(t, s.Reanalyze(context.Background()), ErrNoImage)
}

func TestSetIngredientsReorderDoesNotRecalculate(t *testing.T) {
	fa := &fakeAnalyzer{analysis: goodAnalysis(), recalc: &Recalculation{Calories: 500}}
	s := newTestSession(fa, &fakeStore{})
	require.NoError(t, s.AttachImage(context.Background(), []byte("img"), "data:x,y", nil))

	done := s.SetIngredients(context.Background(), []string{"두부", "김치", "돼지고기"})
	assert.Nil(t, done, "reordering is not a set change")
	assert.Equal(t, 0, fa.calls())
	assert.Equal(t, 450.0, s.Draft().Nutrition.Calories)
}

func TestSetIngredientsSetChangeRecalculates(t *testing.T) {
	fa := &fakeAnalyzer{
		analysis: goodAnalysis(),
		recalc:   &Recalculation{Calories: 380, Carbs: 28, Protein: 20, Fat: 15},
	}
	s := newTestSession(fa, &fakeStore{})
	require.NoError(t, s.AttachImage(context.Background(), []byte("img"), "data:x,y", nil))

	done := s.SetIngredients(context.Background(), []string{"김치", "두부"})
	require.NotNil(t, done)
	<-done

	assert.Equal(t, 1, fa.calls())
	draft := s.Draft()
	assert.Equal(t, 380.0, draft.Nutrition.Calories)
	assert.Equal(t, 15.0, draft.Nutrition.Fat)
	assert.False(t, s.IsRecalculating())
}

func TestManualCalorieEditWinsOverInFlightRecalculation(t *testing.T) {
	gate := make(chan struct{})
	fa := &fakeAnalyzer{
		analysis:   goodAnalysis(),
		recalc:     &Recalculation{Calories: 380, Carbs: 28, Protein: 20, Fat: 15},
		recalcGate: gate,
	}
	s := newTestSession(fa, &fakeStore{})
	require.NoError(t, s.AttachImage(context.Background(), []byte("img"), "data:x,y", nil))

	done := s.SetIngredients(context.Background(), []string{"김치", "두부"})
	require.NotNil(t, done)

	// User types a calorie value while the AI call is still running.
	s.SetCalories(777)
	close(gate)
	<-done

	draft := s.Draft()
	assert.Equal(t, 777.0, draft.Nutrition.Calories, "the later manual edit wins")
	assert.Equal(t, 28.0, draft.Nutrition.Carbs, "macros still update from the result")
}

func TestRecalculationFailureKeepsPreviousNumbers(t *testing.T) {
	fa := &fakeAnalyzer{analysis: goodAnalysis(), recalcErr: errors.New("timeout")}
	s := newTestSession(fa, &fakeStore{})
	require.NoError(t, s.AttachImage(context.Background(), []byte("img"), "data:x,y", nil))

	done := s.SetIngredients(context.Background(), []string{"김치"})
	require.NotNil(t, done)
	<-done

	assert.Equal(t, 450.0, s.Draft().Nutrition.Calories)
	assert.False(t, s.IsRecalculating())
}

func TestSupersededRecalculationIsDropped(t *testing.T) {
	gate := make(chan struct{})
	fa := &fakeAnalyzer{
		analysis:   goodAnalysis(),
		recalc:     &Recalculation{Calories: 999},
		recalcGate: gate,
	}
	s := newTestSession(fa, &fakeStore{})
	require.NoError(t, s.AttachImage(context.Background(), []byte("img"), "data:x,y", nil))

	first := s.SetIngredients(context.Background(), []string{"김치"})
	require.NotNil(t, first)

	// Second edit bumps the sequence before the first call finishes.
	fa.mu.Lock()
	fa.recalcGate = nil
	fa.recalc = &Recalculation{Calories: 380, Carbs: 28, Protein: 20, Fat: 15}
	fa.mu.Unlock()
	second := s.SetIngredients(context.Background(), []string{"김치", "밥"})
	require.NotNil(t, second)
	<-second

	close(gate)
	<-first

	assert.Equal(t, 380.0, s.Draft().Nutrition.Calories, "stale result must not clobber the newer one")
}

func TestGuestCannotSave(t *testing.T) {
	fa := &fakeAnalyzer{analysis: goodAnalysis()}
	store := &fakeStore{}
	s := NewEntrySession(1, true, DefaultSettings(), fa, store, nil)
	require.NoError(t, s.AttachImage(context.Background(), []byte("img"), "data:x,y", nil))

	_, err := s.Save(context.Background())
	assert.ErrorIs(t, err, ErrGuestReadOnly)
	assert.Empty(t, store.meals, "guest save must not reach the store")
	assert.Equal(t, StateReview, s.State())
}

func TestSaveRequiresFoodName(t *testing.T) {
	s := newTestSession(&fakeAnalyzer{}, &fakeStore{})
	s.Manual()
	_, err := s.Save(context.Background())
	assert.ErrorIs(t, err, ErrFoodNameRequired)
}

func TestSaveOutsideReviewRejected(t *testing.T) {
	s := newTestSession(&fakeAnalyzer{}, &fakeStore{})
	_, err := s.Save(context.Background())
	assert.ErrorIs(t, err, ErrNotInReview)
}

func TestSaveBabyMealCarriesLinkageAndReaction(t *testing.T) {
	fa := &fakeAnalyzer{analysis: goodAnalysis()}
	store := &fakeStore{}
	s := newTestSession(fa, store)
	require.NoError(t, s.AttachImage(context.Background(), []byte("img"), "data:x,y", nil))

	baby := &models.BabyProfile{Model: gorm.Model{ID: 10}, Name: "하은", Allergies: []string{"두부"}}
	s.SetBabyMode(baby, models.ReactionGood)
	assert.Equal(t, []string{"두부"}, s.AllergenWarnings(), "warnings are advisory")

	meal, err := s.Save(context.Background())
	require.NoError(t, err, "allergen warnings never block the save")
	assert.True(t, meal.IsBabyFood)
	require.NotNil(t, meal.BabyID)
	assert.Equal(t, uint(10), *meal.BabyID)
	assert.Equal(t, "하은", meal.BabyName)
	assert.Equal(t, models.ReactionGood, meal.BabyReaction)
	assert.Equal(t, StateSaved, s.State())
}

func TestSaveUploadsDataURLImage(t *testing.T) {
	fa := &fakeAnalyzer{analysis: goodAnalysis()}
	store := &fakeStore{}
	uploaded := ""
	upload := func(dataURL, prefix string) (string, error) {
		uploaded = prefix
		return "https://cdn.example.com/meal-images/abc.jpg", nil
	}
	s := NewEntrySession(1, false, DefaultSettings(), fa, store, upload)
	require.NoError(t, s.AttachImage(context.Background(), []byte("img"), "data:image/jpeg;base64,aW1n", nil))

	meal, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "meal-images", uploaded)
	assert.Equal(t, "https://cdn.example.com/meal-images/abc.jpg", meal.ImageURL)
}

func TestFromTemplateJumpsToReview(t *testing.T) {
	s := newTestSession(&fakeAnalyzer{}, &fakeStore{})
	s.FromTemplate(&models.MealTemplate{
		FoodName:    "닭가슴살 샐러드",
		Type:        "lunch",
		Ingredients: []string{"닭가슴살", "양상추"},
		Nutrition:   models.Nutrition{Calories: 320},
	})
	assert.Equal(t, StateReview, s.State())
	draft := s.Draft()
	assert.Equal(t, "닭가슴살 샐러드", draft.FoodName)
	assert.Equal(t, 320.0, draft.Nutrition.Calories)
}

func TestSaveUsesInjectedClock(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 30, 0, 0, time.Local)
	fa := &fakeAnalyzer{analysis: goodAnalysis()}
	store := &fakeStore{}
	s := newTestSession(fa, store).WithClock(func() time.Time { return at })
	require.NoError(t, s.AttachImage(context.Background(), []byte("img"), "data:x,y", nil))

	meal, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, at, meal.AteAt)
}

func TestEndToEndEditCaloriesThenSaveWithoutRecalc(t *testing.T) {
	fa := &fakeAnalyzer{analysis: goodAnalysis(), recalc: &Recalculation{Calories: 999}}
	store := &fakeStore{}
	s := newTestSession(fa, store)
	require.NoError(t, s.AttachImage(context.Background(), []byte("img"), "data:x,y", nil))

	s.SetCalories(600)
	s.SetFoodName("김치찌개 곱빼기")
	done := s.SetIngredients(context.Background(), []string{"김치", "돼지고기", "두부"}) // unchanged set
	assert.Nil(t, done)

	meal, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, fa.calls())
	assert.Equal(t, 600.0, meal.Nutrition.Calories)
	assert.Equal(t, "김치찌개 곱빼기", meal.FoodName)
}
