package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bird3325/hankki-sub000/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// MealAnalysis is the structured result of a photo analysis.
type MealAnalysis struct {
	FoodName          string                    `json:"foodName"`
	Calories          float64                   `json:"calories"`
	Carbs             float64                   `json:"carbs"`
	Protein           float64                   `json:"protein"`
	Fat               float64                   `json:"fat"`
	Description       string                    `json:"description"`
	IngredientDetails []models.IngredientDetail `json:"ingredientDetails"`
	AITip             string                    `json:"aiTip"`
	LocationName      string                    `json:"locationName,omitempty"`
	LocationType      string                    `json:"locationType,omitempty"`
}

// Ingredients flattens the detail list to names.
func (a *MealAnalysis) Ingredients() []string {
	out := make([]string, 0, len(a.IngredientDetails))
	for _, d := range a.IngredientDetails {
		out = append(out, d.Name)
	}
	return out
}

// Recalculation is the macro-only re-estimate after an ingredient edit.
type Recalculation struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
}

// FailedAnalysis is the non-fatal sentinel for an unusable AI response:
// zeroed nutrition plus an explanatory tip, never a crash past the
// workflow boundary.
func FailedAnalysis() *MealAnalysis {
	return &MealAnalysis{
		FoodName: "분석 실패",
		AITip:    "음식을 인식하지 못했어요. 다른 각도에서 다시 찍어 보세요.",
	}
}

// VisionAnalyzer is the AI analysis dependency of the entry workflow,
// split out so tests can run against a fake.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, image []byte, loc *Location, labelHints []string) (*MealAnalysis, error)
	Recalculate(ctx context.Context, image []byte, ingredients []string) (*Recalculation, error)
}

// GeminiService implements VisionAnalyzer against the Gemini vision API.
type GeminiService struct {
	apiKey string
	model  string
}

func NewGeminiService() *GeminiService {
	return &GeminiService{
		apiKey: os.Getenv("GEMINI_API_KEY"),
		model:  "gemini-2.5-flash",
	}
}

func (g *GeminiService) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return stripJSONFence(string(text)), nil
		}
	}
	return "", fmt.Errorf("no text parts in response")
}

// Gemini wraps JSON answers in markdown fences more often than not.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

func (g *GeminiService) Analyze(ctx context.Context, image []byte, loc *Location, labelHints []string) (*MealAnalysis, error) {
	prompt := `이 사진의 음식을 분석해 주세요. 다음 JSON 객체만 반환하세요(다른 텍스트 없이):
{"foodName": string, "calories": number, "carbs": number, "protein": number, "fat": number,
 "description": string, "aiTip": string,
 "ingredientDetails": [{"name": string, "nutritionEstimate": string, "benefit": string}]`
	if loc != nil {
		prompt += `, "locationName": string, "locationType": string`
		prompt += fmt.Sprintf("}\n촬영 좌표: %.5f, %.5f — 주변의 식당/장소를 추정해 주세요.", loc.Latitude, loc.Longitude)
	} else {
		prompt += "}"
	}
	if len(labelHints) > 0 {
		prompt += "\n이미지 라벨 힌트: " + strings.Join(labelHints, ", ")
	}

	text, err := g.generate(ctx, genai.ImageData("jpeg", image), genai.Text(prompt))
	if err != nil {
		return nil, err
	}
	var out MealAnalysis
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("malformed analysis response: %v", err)
	}
	if out.FoodName == "" {
		return nil, fmt.Errorf("empty analysis response")
	}
	return &out, nil
}

func (g *GeminiService) Recalculate(ctx context.Context, image []byte, ingredients []string) (*Recalculation, error) {
	prompt := fmt.Sprintf(`사진의 음식에서 재료가 다음과 같이 수정되었습니다: %s
수정된 재료 기준으로 영양 성분을 다시 계산해 다음 JSON 객체만 반환하세요:
{"calories": number, "carbs": number, "protein": number, "fat": number}`,
		strings.Join(ingredients, ", "))

	text, err := g.generate(ctx, genai.ImageData("jpeg", image), genai.Text(prompt))
	if err != nil {
		return nil, err
	}
	var out Recalculation
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("malformed recalculation response: %v", err)
	}
	return &out, nil
}
