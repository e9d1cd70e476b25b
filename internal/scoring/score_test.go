package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prospectar/leadscan/internal/config"
	"github.com/prospectar/leadscan/internal/model"
)

func fullStack() *model.TechStack {
	return &model.TechStack{
		HasWebsite:         true,
		HasSSL:             true,
		HasChatWidget:      true,
		HasWhatsAppButton:  true,
		HasContactForm:     true,
		HasFacebook:        true,
		HasInstagram:       true,
		HasLinkedIn:        true,
		HasGoogleAnalytics: true,
		HasFacebookPixel:   true,
		HasCRMForms:        true,
		HasBlog:            true,
	}
}

func TestScore_Extremes(t *testing.T) {
	w := config.DefaultScoreWeights()

	// Everything present: zero opportunity.
	assert.Equal(t, 0, Score(fullStack(), w))
	assert.Equal(t, CategoryCold, Categorize(Score(fullStack(), w)))

	// Nothing present: maximum opportunity.
	empty := &model.TechStack{}
	assert.Equal(t, 100, Score(empty, w))
	assert.Equal(t, CategoryHot, Categorize(Score(empty, w)))
}

func TestScore_ClampWithOversizedWeights(t *testing.T) {
	// Weights summing past 100 must still land in [0,100].
	w := config.ScoreWeights{
		Website: 50, SSL: 50, Chat: 50, WhatsApp: 50, Form: 50,
		Facebook: 50, Instagram: 50, LinkedIn: 50, Analytics: 50, Pixel: 50,
	}
	assert.Equal(t, 0, Score(fullStack(), w))
	assert.Equal(t, 100, Score(&model.TechStack{}, w))
}

func TestScore_MonotonicInFeatures(t *testing.T) {
	w := config.DefaultScoreWeights()
	prev := Score(&model.TechStack{}, w)

	// Flipping features on one at a time never raises the score.
	flips := []func(*model.TechStack){
		func(s *model.TechStack) { s.HasWebsite = true },
		func(s *model.TechStack) { s.HasSSL = true },
		func(s *model.TechStack) { s.HasChatWidget = true },
		func(s *model.TechStack) { s.HasWhatsAppButton = true },
		func(s *model.TechStack) { s.HasContactForm = true },
		func(s *model.TechStack) { s.HasFacebook = true },
		func(s *model.TechStack) { s.HasInstagram = true },
		func(s *model.TechStack) { s.HasLinkedIn = true },
		func(s *model.TechStack) { s.HasGoogleAnalytics = true },
		func(s *model.TechStack) { s.HasFacebookPixel = true },
	}

	stack := &model.TechStack{}
	for _, flip := range flips {
		flip(stack)
		score := Score(stack, w)
		assert.LessOrEqual(t, score, prev)
		prev = score
	}
	assert.Equal(t, 0, prev)
}

func TestScore_InformationalFeaturesDoNotScore(t *testing.T) {
	w := config.DefaultScoreWeights()
	base := Score(&model.TechStack{}, w)
	withInfo := Score(&model.TechStack{HasCRMForms: true, HasBlog: true}, w)
	assert.Equal(t, base, withInfo)
}

func TestGapSummary_FixedChecklistSize(t *testing.T) {
	for _, stack := range []*model.TechStack{
		{},
		fullStack(),
		{HasWebsite: true, HasSSL: true},
	} {
		s := GapSummary(stack)
		assert.Equal(t, 12, s.GapCount+s.HasCount)
		assert.Len(t, s.GapTags, s.GapCount)
	}
}

func TestGapSummary_TagsOrderedAndLiteral(t *testing.T) {
	s := GapSummary(&model.TechStack{})
	assert.Equal(t, []string{
		"sin-web", "sin-ssl", "sin-chat", "sin-whatsapp", "sin-form",
		"sin-facebook", "sin-instagram", "sin-linkedin", "sin-analytics",
		"sin-pixel", "sin-crm", "sin-blog",
	}, s.GapTags)

	s = GapSummary(fullStack())
	assert.Empty(t, s.GapTags)
	assert.Equal(t, 12, s.HasCount)
}

func TestGapSummary_MixedVector(t *testing.T) {
	stack := &model.TechStack{HasWebsite: true, HasWhatsAppButton: true}
	s := GapSummary(stack)

	assert.Equal(t, 2, s.HasCount)
	assert.Equal(t, 10, s.GapCount)
	assert.Contains(t, s.GapTags, "sin-chat")
	assert.NotContains(t, s.GapTags, "sin-web")
	assert.NotContains(t, s.GapTags, "sin-whatsapp")
}

func TestCategorize_Thresholds(t *testing.T) {
	tests := []struct {
		score int
		want  Category
	}{
		{100, CategoryHot},
		{80, CategoryHot},
		{79, CategoryWarm},
		{60, CategoryWarm},
		{59, CategoryMedium},
		{40, CategoryMedium},
		{39, CategoryCool},
		{20, CategoryCool},
		{19, CategoryCold},
		{0, CategoryCold},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.score), "score %d", tt.score)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "🔥 Alta Oportunidad", Label(95))
	assert.Equal(t, "🧊 Ya tienen casi todo", Label(5))
}
