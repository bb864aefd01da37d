package engine

import (
	"context"
	"regexp"
	"strings"
)

// AIAnalysisResult is the scoring provider output contract. All risk scores
// are normalized to [0,1]; the pipeline assumes nothing about how they were
// computed.
type AIAnalysisResult struct {
	Toxicity       float64  `json:"toxicity"`
	Spam           float64  `json:"spam"`
	Harassment     float64  `json:"harassment"`
	Hate           float64  `json:"hate"`
	Violence       float64  `json:"violence"`
	Misinformation float64  `json:"misinformation"`
	Sentiment      string   `json:"sentiment"`
	Keywords       []string `json:"keywords"`
}

// RiskScore is the aggregate exposed to rule conditions as `ai_score`.
func (r *AIAnalysisResult) RiskScore() float64 {
	max := r.Toxicity
	if r.Spam > max {
		max = r.Spam
	}
	if r.Harassment > max {
		max = r.Harassment
	}
	return max
}

// ScoreProvider produces content risk scores. The built-in heuristic scorer
// satisfies it; a production deployment can swap in an external classifier.
type ScoreProvider interface {
	Score(ctx context.Context, text string) (*AIAnalysisResult, error)
}

type keywordFamily struct {
	words  []string
	weight float64
}

func (f keywordFamily) score(lower string) float64 {
	total := 0.0
	for _, w := range f.words {
		if strings.Contains(lower, w) {
			total += f.weight
		}
	}
	if total > 1 {
		return 1
	}
	return total
}

// HeuristicScorer scores text with fixed keyword families and surface
// signals. Deterministic: the same text always yields the same result.
type HeuristicScorer struct {
	toxicity       keywordFamily
	harassment     keywordFamily
	hate           keywordFamily
	violence       keywordFamily
	misinformation keywordFamily
	spamWords      keywordFamily

	urlPattern     *regexp.Regexp
	allCapsPattern *regexp.Regexp
	wordPattern    *regexp.Regexp
}

// hasRepeatedRun reports whether s contains a run of five or more identical
// runes. This replaces the backreference pattern `(.)\1{4,}`, which Go's RE2
// engine cannot express.
func hasRepeatedRun(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= 5 {
			return true
		}
	}
	return false
}

func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{
		toxicity: keywordFamily{
			words:  []string{"idiot", "stupid", "moron", "pathetic", "worthless", "loser", "trash human"},
			weight: 0.35,
		},
		harassment: keywordFamily{
			words:  []string{"kill yourself", "kys", "nobody likes you", "you should die", "watch your back"},
			weight: 0.45,
		},
		hate: keywordFamily{
			words:  []string{"subhuman", "vermin", "go back to your country", "your kind"},
			weight: 0.45,
		},
		violence: keywordFamily{
			words:  []string{"kill", "shoot", "bomb", "stab", "murder", "burn down"},
			weight: 0.3,
		},
		misinformation: keywordFamily{
			words:  []string{"fake news", "hoax", "cover-up", "miracle cure", "they don't want you to know", "do your own research"},
			weight: 0.4,
		},
		spamWords: keywordFamily{
			words:  []string{"buy now", "free money", "click here", "limited time", "subscribe", "promo code", "earn cash"},
			weight: 0.3,
		},
		urlPattern:     regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		allCapsPattern: regexp.MustCompile(`[A-Z]{5,}`),
		wordPattern:    regexp.MustCompile(`[a-zA-Z][a-zA-Z'-]{4,}`),
	}
}

func (s *HeuristicScorer) Score(ctx context.Context, text string) (*AIAnalysisResult, error) {
	lower := strings.ToLower(text)

	spam := s.spamWords.score(lower)
	if s.urlPattern.MatchString(text) {
		spam += 0.3
	}
	if hasRepeatedRun(lower) {
		spam += 0.2
	}
	if len(s.allCapsPattern.FindAllString(text, 3)) > 2 {
		spam += 0.2
	}
	if spam > 1 {
		spam = 1
	}

	result := &AIAnalysisResult{
		Toxicity:       s.toxicity.score(lower),
		Spam:           spam,
		Harassment:     s.harassment.score(lower),
		Hate:           s.hate.score(lower),
		Violence:       s.violence.score(lower),
		Misinformation: s.misinformation.score(lower),
		Keywords:       s.extractKeywords(lower),
	}
	result.Sentiment = s.sentiment(lower, result)
	return result, nil
}

func (s *HeuristicScorer) sentiment(lower string, r *AIAnalysisResult) string {
	if r.Toxicity+r.Harassment+r.Violence > 0.5 {
		return "negative"
	}
	for _, w := range []string{"thank", "great", "love", "wonderful", "helping"} {
		if strings.Contains(lower, w) {
			return "positive"
		}
	}
	return "neutral"
}

func (s *HeuristicScorer) extractKeywords(lower string) []string {
	matches := s.wordPattern.FindAllString(lower, -1)
	seen := make(map[string]bool, len(matches))
	keywords := make([]string, 0, 10)
	for _, w := range matches {
		if seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
		if len(keywords) == 10 {
			break
		}
	}
	return keywords
}
