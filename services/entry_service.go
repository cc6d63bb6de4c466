package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/bird3325/hankki-sub000/models"
	"github.com/bird3325/hankki-sub000/utils"
)

// Entry session states. Side branches: a template pick skips analysis
// and jumps straight to review, and manual entry does the same with an
// empty draft. Recalculation overlays review, it is not its own state.
const (
	StateCapture   = "capture"
	StateAnalyzing = "analyzing"
	StateReview    = "review"
	StateSaved     = "saved"
)

var (
	ErrGuestReadOnly    = errors.New("체험 계정에서는 기록을 저장할 수 없어요")
	ErrFoodNameRequired = errors.New("음식 이름을 입력해 주세요")
	ErrNotInReview      = errors.New("review 단계에서만 가능한 동작입니다")
	ErrNoImage          = errors.New("분석할 사진이 없습니다")
	ErrAnalysisFailed   = errors.New("음식 분석에 실패했어요. 다시 시도해 주세요")
)

// MealWriter is the slice of the record store the workflow needs.
type MealWriter interface {
	CreateMeal(m *models.Meal) error
}

// Uploader turns a draft data-URL image into a public URL at save time.
type Uploader func(dataURL, keyPrefix string) (string, error)

// Draft holds the user-editable review fields.
type Draft struct {
	FoodName          string                    `json:"foodName"`
	Description       string                    `json:"description"`
	Type              string                    `json:"type"`
	Nutrition         models.Nutrition          `json:"nutrition"`
	Ingredients       []string                  `json:"ingredients"`
	IngredientDetails []models.IngredientDetail `json:"ingredientDetails"`
	AIDescription     string                    `json:"aiDescription"`
	AITip             string                    `json:"aiTip"`
	LocationName      string                    `json:"locationName"`

	SharingLevel       string `json:"sharingLevel"`
	ShareDiaryCalories bool   `json:"shareDiaryCalories"`
}

// EntrySession drives one capture → analyzing → review → save flow.
type EntrySession struct {
	mu    sync.Mutex
	state string

	userID uint
	guest  bool

	image        []byte
	imageDataURL string
	location     *Location

	// Location race inputs for requests that carry no location of
	// their own. locCh is fed by the host-app bridge callback; the
	// sources stay nil until armed, so sessions without a bridge never
	// wait.
	locCh       chan *Location
	locBridge   LocationSource
	locFallback LocationSource
	bridgeWait  time.Duration

	draft Draft

	// Snapshot of the ingredient set the nutrition numbers were last
	// computed for; edits are compared against it order-insensitively.
	analyzedIngredients []string

	// Recalculation bookkeeping: seq invalidates stale in-flight
	// results, caloriesTouched records a manual edit made after the
	// recalculation was kicked off — the manual edit wins.
	recalcSeq       int
	caloriesTouched bool
	isRecalculating bool

	babyMode bool
	baby     *models.BabyProfile
	reaction string

	analyzer VisionAnalyzer
	labels   *RekognitionService
	store    MealWriter
	upload   Uploader
	now      func() time.Time
}

func NewEntrySession(userID uint, guest bool, cfg models.Settings, analyzer VisionAnalyzer, store MealWriter, upload Uploader) *EntrySession {
	return &EntrySession{
		state:      StateCapture,
		userID:     userID,
		guest:      guest,
		analyzer:   analyzer,
		store:      store,
		upload:     upload,
		locCh:      make(chan *Location, 1),
		bridgeWait: BridgeTimeout,
		now:        time.Now,
		draft: Draft{
			Type:               "lunch",
			Ingredients:        []string{},
			SharingLevel:       cfg.DefaultSharing,
			ShareDiaryCalories: cfg.ShareDiaryCalories,
		},
	}
}

// WithLabelHints attaches the optional Rekognition pre-pass.
func (s *EntrySession) WithLabelHints(r *RekognitionService) *EntrySession {
	s.labels = r
	return s
}

// WithClock overrides the save timestamp source.
func (s *EntrySession) WithClock(now func() time.Time) *EntrySession {
	s.now = now
	return s
}

// EnableBridge arms the host-app location bridge: analyze requests that
// carry no location will wait for ProvideLocation, bounded by the
// bridge timeout. Only clients running in the native wrapper ask for
// this.
func (s *EntrySession) EnableBridge() *EntrySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locBridge = channelSource{ch: s.locCh}
	return s
}

// WithLocationSources overrides the race inputs and the bridge wait.
func (s *EntrySession) WithLocationSources(bridge, fallback LocationSource, wait time.Duration) *EntrySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locBridge = bridge
	s.locFallback = fallback
	if wait > 0 {
		s.bridgeWait = wait
	}
	return s
}

// ProvideLocation receives the host-app bridge callback. The first
// value wins; later callbacks are dropped.
func (s *EntrySession) ProvideLocation(l *Location) {
	if l == nil {
		return
	}
	select {
	case s.locCh <- l:
	default:
	}
}

// channelSource adapts the bridge callback channel to LocationSource.
type channelSource struct {
	ch <-chan *Location
}

func (c channelSource) Resolve(ctx context.Context) (*Location, error) {
	select {
	case l := <-c.ch:
		return l, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *EntrySession) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *EntrySession) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *EntrySession) IsRecalculating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRecalculating
}

// AttachImage moves capture → analyzing → review. When the request
// carries no location and a source is armed, the bridge gets a bounded
// head start over the fallback; an absent location is a valid outcome.
// Label hints are best-effort. On analysis failure the image is
// discarded and the session returns to capture — the user retries from
// the top, no partial-result retry.
func (s *EntrySession) AttachImage(ctx context.Context, image []byte, dataURL string, loc *Location) error {
	s.mu.Lock()
	if s.state != StateCapture && s.state != StateReview {
		s.mu.Unlock()
		return errors.New("이미 저장된 기록입니다")
	}
	s.state = StateAnalyzing
	s.image = image
	s.imageDataURL = dataURL
	bridge, fallback, wait := s.locBridge, s.locFallback, s.bridgeWait
	s.mu.Unlock()

	if loc == nil && (bridge != nil || fallback != nil) {
		loc = ResolveLocation(ctx, bridge, fallback, wait)
	}
	s.mu.Lock()
	s.location = loc
	s.mu.Unlock()

	var hints []string
	if s.labels != nil {
		if h, err := s.labels.LabelHints(ctx, image); err == nil {
			hints = h
		}
	}

	analysis, err := s.analyzer.Analyze(ctx, image, loc, hints)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil || analysis == nil {
		log.Printf("analysis failed: %v", err)
		s.state = StateCapture
		s.image = nil
		s.imageDataURL = ""
		return ErrAnalysisFailed
	}

	s.draft.FoodName = analysis.FoodName
	s.draft.Nutrition = models.Nutrition{
		Calories: analysis.Calories,
		Carbs:    analysis.Carbs,
		Protein:  analysis.Protein,
		Fat:      analysis.Fat,
	}
	s.draft.Ingredients = analysis.Ingredients()
	s.draft.IngredientDetails = analysis.IngredientDetails
	s.draft.AIDescription = analysis.Description
	s.draft.AITip = analysis.AITip
	if analysis.LocationName != "" {
		s.draft.LocationName = analysis.LocationName
	} else if loc != nil {
		s.draft.LocationName = loc.Name
	}
	s.analyzedIngredients = append([]string(nil), s.draft.Ingredients...)
	s.caloriesTouched = false
	s.state = StateReview
	return nil
}

// Reanalyze re-enters analyzing from review with the kept image.
func (s *EntrySession) Reanalyze(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReview {
		s.mu.Unlock()
		return ErrNotInReview
	}
	if s.image == nil {
		s.mu.Unlock()
		return ErrNoImage
	}
	image, dataURL, loc := s.image, s.imageDataURL, s.location
	s.state = StateCapture
	s.mu.Unlock()
	return s.AttachImage(ctx, image, dataURL, loc)
}

// FromTemplate jumps straight to review with the template's snapshot.
func (s *EntrySession) FromTemplate(t *models.MealTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.FoodName = t.FoodName
	s.draft.Description = t.Description
	s.draft.Type = t.Type
	s.draft.Nutrition = t.Nutrition
	s.draft.Ingredients = append([]string(nil), t.Ingredients...)
	s.draft.IngredientDetails = t.IngredientDetails
	s.imageDataURL = t.ImageURL
	s.analyzedIngredients = append([]string(nil), t.Ingredients...)
	s.caloriesTouched = false
	s.state = StateReview
}

// Manual skips the AI entirely and opens an empty review form.
func (s *EntrySession) Manual() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzedIngredients = nil
	s.state = StateReview
}

func (s *EntrySession) SetFoodName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.FoodName = name
}

func (s *EntrySession) SetDescription(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Description = text
}

func (s *EntrySession) SetLocationName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.LocationName = name
}

func (s *EntrySession) SetType(mealType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Type = mealType
}

func (s *EntrySession) SetSharing(level string, shareDiaryCalories bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SharingLevel = level
	s.draft.ShareDiaryCalories = shareDiaryCalories
}

// SetCalories is a manual edit; it marks the draft touched so an
// in-flight recalculation result cannot clobber it.
func (s *EntrySession) SetCalories(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Nutrition.Calories = v
	s.caloriesTouched = true
}

// SetBabyMode selects the target baby and reaction for this entry.
func (s *EntrySession) SetBabyMode(baby *models.BabyProfile, reaction string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.babyMode = baby != nil
	s.baby = baby
	s.reaction = reaction
}

// sameIngredientSet compares order-insensitively with multiplicity.
func sameIngredientSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, x := range a {
		counts[x]++
	}
	for _, x := range b {
		counts[x]--
		if counts[x] < 0 {
			return false
		}
	}
	return true
}

// SetIngredients replaces the ingredient list. If the set actually
// changed (reordering does not count) and an image is available, it
// kicks off a nutrition recalculation and returns a channel that closes
// when the recalculation settles; callers that do not care may ignore
// it. Recalculation failure keeps the stale numbers — logged, never
// surfaced as a blocking error — and a manual calorie edit made while
// the call is in flight wins over its result.
func (s *EntrySession) SetIngredients(ctx context.Context, ingredients []string) <-chan struct{} {
	s.mu.Lock()
	changed := !sameIngredientSet(ingredients, s.analyzedIngredients)
	s.draft.Ingredients = append([]string(nil), ingredients...)
	if !changed || s.image == nil || s.state != StateReview {
		s.mu.Unlock()
		return nil
	}

	s.recalcSeq++
	seq := s.recalcSeq
	s.caloriesTouched = false
	s.isRecalculating = true
	image := s.image
	snapshot := append([]string(nil), ingredients...)
	s.analyzedIngredients = snapshot
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := s.analyzer.Recalculate(ctx, image, snapshot)

		s.mu.Lock()
		defer s.mu.Unlock()
		if seq != s.recalcSeq {
			return // superseded by a newer edit
		}
		s.isRecalculating = false
		if err != nil || result == nil {
			log.Printf("recalculation failed, keeping previous nutrition: %v", err)
			return
		}
		if s.caloriesTouched {
			// User edited calories after this call started; the later
			// write wins and the recalculated value is dropped.
			s.draft.Nutrition.Carbs = result.Carbs
			s.draft.Nutrition.Protein = result.Protein
			s.draft.Nutrition.Fat = result.Fat
			return
		}
		s.draft.Nutrition = models.Nutrition{
			Calories: result.Calories,
			Carbs:    result.Carbs,
			Protein:  result.Protein,
			Fat:      result.Fat,
		}
	}()
	return done
}

// AllergenWarnings cross-checks the current ingredients against the
// selected baby's allergy list. Advisory only; save stays permitted.
func (s *EntrySession) AllergenWarnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.babyMode || s.baby == nil {
		return nil
	}
	return utils.FindAllergens(s.draft.Ingredients, s.baby.Allergies)
}

// Save validates, uploads any draft image, and writes the meal. The
// guest sentinel short-circuits before any network call.
func (s *EntrySession) Save(ctx context.Context) (*models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReview {
		return nil, ErrNotInReview
	}
	if s.guest {
		return nil, ErrGuestReadOnly
	}
	if s.draft.FoodName == "" {
		return nil, ErrFoodNameRequired
	}

	imageURL := s.imageDataURL
	if utils.IsDataURL(imageURL) && s.upload != nil {
		url, err := s.upload(imageURL, "meal-images")
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	meal := &models.Meal{
		UserID:             s.userID,
		AteAt:              s.now(),
		Type:               s.draft.Type,
		FoodName:           s.draft.FoodName,
		Description:        s.draft.Description,
		ImageURL:           imageURL,
		Ingredients:        s.draft.Ingredients,
		IngredientDetails:  s.draft.IngredientDetails,
		Nutrition:          s.draft.Nutrition,
		AIDescription:      s.draft.AIDescription,
		AITip:              s.draft.AITip,
		SharingLevel:       s.draft.SharingLevel,
		ShareDiaryCalories: s.draft.ShareDiaryCalories,
	}
	if meal.SharingLevel == "" {
		meal.SharingLevel = models.SharingPublic
	}
	if s.babyMode && s.baby != nil {
		meal.IsBabyFood = true
		id := s.baby.ID
		meal.BabyID = &id
		meal.BabyName = s.baby.Name
		meal.BabyReaction = s.reaction
	}

	if err := s.store.CreateMeal(meal); err != nil {
		return nil, err
	}
	s.state = StateSaved
	return meal, nil
}

// EntryService tracks live sessions per user.
type EntryService struct {
	mu       sync.Mutex
	sessions map[string]*EntrySession

	analyzer VisionAnalyzer
	labels   *RekognitionService
	store    MealWriter
	upload   Uploader
	settings *SettingsService
}

func NewEntryService(analyzer VisionAnalyzer, labels *RekognitionService, store MealWriter, upload Uploader, settings *SettingsService) *EntryService {
	return &EntryService{
		sessions: make(map[string]*EntrySession),
		analyzer: analyzer,
		labels:   labels,
		store:    store,
		upload:   upload,
		settings: settings,
	}
}

func (e *EntryService) Start(sessionID string, userID uint, guest bool) *EntrySession {
	cfg := e.settings.Get(userID)
	s := NewEntrySession(userID, guest, cfg, e.analyzer, e.store, e.upload).WithLabelHints(e.labels)
	e.mu.Lock()
	e.sessions[sessionID] = s
	e.mu.Unlock()
	return s
}

func (e *EntryService) Get(sessionID string) (*EntrySession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[sessionID]
	return s, ok
}

func (e *EntryService) Drop(sessionID string) {
	e.mu.Lock()
	delete(e.sessions, sessionID)
	e.mu.Unlock()
}
