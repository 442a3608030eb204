package review

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

// HeuristicModel identifies reviews produced by the local scorer.
const HeuristicModel = "heuristic-v1"

// difficultyCeiling caps the heuristic score per difficulty. Harder
// challenges get a lower ceiling since the scorer cannot judge whether the
// advanced requirements were actually met.
var difficultyCeiling = map[domain.Difficulty]float64{
	domain.DifficultyBeginner:     8,
	domain.DifficultyIntermediate: 7,
	domain.DifficultyAdvanced:     6,
}

var (
	keywordRegex    = regexp.MustCompile(`\b(function|const|let|var)\b`)
	commentRegex    = regexp.MustCompile(`//|/\*|#`)
	errHandleRegex  = regexp.MustCompile(`\b(try|catch|throw)\b`)
	consoleLogRegex = regexp.MustCompile(`console\.log`)
	assignRegex     = regexp.MustCompile(`[=:]`)
)

// hasRepeatedRun reports whether s contains a substring of at least four
// bytes repeated at least four times back to back. Long repeated runs
// indicate copy-paste noise or non-code input. The period is capped at 64
// bytes; longer repeating units are treated as content.
func hasRepeatedRun(s string) bool {
	const minPeriod, maxPeriod, runs = 4, 64, 4

	for period := minPeriod; period <= maxPeriod && period*runs <= len(s); period++ {
		// s has a run of `runs` repeats with this period iff s[i] == s[i+period]
		// holds at period*(runs-1) consecutive positions.
		need := period * (runs - 1)
		matched := 0
		for i := 0; i+period < len(s); i++ {
			if s[i] == s[i+period] {
				matched++
				if matched >= need {
					return true
				}
			} else {
				matched = 0
			}
		}
	}
	return false
}

// codeSignals are the structural facts the scorer derives from raw code text
type codeSignals struct {
	length        int
	lines         int
	hasKeywords   bool
	hasComments   bool
	hasErrHandle  bool
	hasConsoleLog bool
	hasBrackets   bool
	hasSemicolons bool
	hasAssignment bool
	nonLatinRatio float64
	hasRepeats    bool
	gibberish     bool
}

func analyzeCode(code string) codeSignals {
	sig := codeSignals{
		length:        len(code),
		lines:         strings.Count(code, "\n") + 1,
		hasKeywords:   keywordRegex.MatchString(code),
		hasComments:   commentRegex.MatchString(code),
		hasErrHandle:  errHandleRegex.MatchString(code),
		hasConsoleLog: consoleLogRegex.MatchString(code),
		hasBrackets:   strings.ContainsAny(code, "{}()[]"),
		hasSemicolons: strings.Contains(code, ";"),
		hasAssignment: assignRegex.MatchString(code),
		nonLatinRatio: nonLatinRatio(code),
		hasRepeats:    hasRepeatedRun(code),
	}

	noCodeShape := !sig.hasKeywords && !sig.hasBrackets && !sig.hasSemicolons
	sig.gibberish = (noCodeShape && (sig.nonLatinRatio > 0.8 || sig.hasRepeats)) ||
		(sig.length > 100 && !sig.hasKeywords && !sig.hasBrackets && !sig.hasAssignment)

	return sig
}

func nonLatinRatio(code string) float64 {
	total, nonLatin := 0, 0
	for _, r := range code {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if r > unicode.MaxASCII {
			nonLatin++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(nonLatin) / float64(total)
}

// HeuristicScorer derives a bounded review from structural code signals.
// It is a pure function of (difficulty, code): no external calls, always
// terminates, and always yields a complete review payload.
type HeuristicScorer struct{}

func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

// Score produces a full review payload for the given code. The returned
// review has no identity fields set; the caller assigns them on persist.
func (h *HeuristicScorer) Score(difficulty domain.Difficulty, code string) *domain.Review {
	sig := analyzeCode(code)
	raw := baseScore(sig)

	ceiling, ok := difficultyCeiling[difficulty]
	if !ok {
		ceiling = difficultyCeiling[domain.DifficultyBeginner]
	}
	if raw > ceiling {
		raw = ceiling
	}

	overall := int(raw) // truncate: partial credit never rounds up past the cap

	return &domain.Review{
		OverallScore: overall,
		Feedback:     buildFeedback(sig),
		CodeQuality: domain.CodeQuality{
			Readability:   subScore(raw, 1),
			Structure:     subScore(raw, 0.5),
			Efficiency:    subScore(raw, 1.5),
			BestPractices: subScore(raw, 1),
		},
		CareerTips:    careerTips(difficulty),
		NextSteps:     nextSteps(difficulty, sig),
		Resources:     resources(difficulty),
		Model:         HeuristicModel,
		FormatVersion: domain.ReviewFormatVersion,
	}
}

func baseScore(sig codeSignals) float64 {
	switch {
	case sig.gibberish:
		return 0
	case sig.length < 20:
		return 1
	case sig.length < 50 && !sig.hasKeywords:
		return 2
	}

	score := 4.0
	if sig.lines > 5 {
		score++
	}
	if sig.hasComments {
		score++
	}
	if sig.hasErrHandle {
		score++
	}
	if !sig.hasConsoleLog {
		score += 0.5
	}
	return score
}

// subScore derives a quality dimension as the overall raw score minus a
// fixed offset, rounded and floored at 1.
func subScore(raw, offset float64) int {
	s := int(math.Round(raw - offset))
	if s < 1 {
		return 1
	}
	if s > 10 {
		return 10
	}
	return s
}

func buildFeedback(sig codeSignals) domain.Feedback {
	var fb domain.Feedback

	if sig.gibberish {
		fb.Bugs = append(fb.Bugs, "Submission appears to be non-code content and could not be evaluated as a solution")
		fb.Improvements = append(fb.Improvements, "Submit actual code addressing the challenge requirements")
	}

	if sig.hasComments {
		fb.Strengths = append(fb.Strengths, "Code includes comments explaining the approach")
	}
	if sig.hasErrHandle {
		fb.Strengths = append(fb.Strengths, "Error handling is present")
	} else if !sig.gibberish && sig.length >= 50 {
		fb.Improvements = append(fb.Improvements, "Consider adding error handling for edge cases")
	}
	if sig.hasKeywords {
		fb.Strengths = append(fb.Strengths, "Uses proper variable and function declarations")
	}
	if sig.hasConsoleLog {
		fb.Improvements = append(fb.Improvements, "Remove console.log statements before submitting production code")
		fb.Suggestions = append(fb.Suggestions, "Use a debugger or a proper logging utility instead of console.log")
	}
	if !sig.gibberish && sig.length < 50 {
		fb.Improvements = append(fb.Improvements, "The solution is very short; make sure all requirements are covered")
	}
	if !sig.hasComments && !sig.gibberish {
		fb.Improvements = append(fb.Improvements, "Add comments to document non-obvious decisions")
	}
	if sig.lines > 5 && !sig.gibberish {
		fb.Strengths = append(fb.Strengths, "Solution is structured across multiple statements")
	}

	// Feedback lists are never empty: fall back to generic encouragement
	if len(fb.Strengths) == 0 {
		fb.Strengths = append(fb.Strengths, "You took on the challenge and submitted a solution")
	}
	if len(fb.Improvements) == 0 {
		fb.Improvements = append(fb.Improvements, "Keep practicing to refine your approach")
	}

	return fb
}

func careerTips(difficulty domain.Difficulty) []string {
	switch difficulty {
	case domain.DifficultyAdvanced:
		return []string{
			"Advanced problem solving like this is what distinguishes senior candidates in interviews",
			"Consider writing up your approach as a blog post or portfolio piece",
		}
	case domain.DifficultyIntermediate:
		return []string{
			"Consistent practice at this level builds the depth employers look for",
			"Pair these exercises with reading production codebases on GitHub",
		}
	default:
		return []string{
			"Building fundamentals through regular practice is the fastest path to job readiness",
			"Keep a log of what you learn from each challenge",
		}
	}
}

func nextSteps(difficulty domain.Difficulty, sig codeSignals) []string {
	steps := []string{"Compare your solution against the challenge requirements one by one"}
	if !sig.hasErrHandle {
		steps = append(steps, "Rework the solution to handle failure cases explicitly")
	}
	if difficulty != domain.DifficultyAdvanced {
		steps = append(steps, "Try the next difficulty level in this category")
	}
	return steps
}

func resources(difficulty domain.Difficulty) []domain.Resource {
	base := []domain.Resource{
		{Title: "MDN Web Docs", URL: "https://developer.mozilla.org", Type: domain.ResourceDocumentation},
		{Title: "JavaScript.info", URL: "https://javascript.info", Type: domain.ResourceTutorial},
	}
	if difficulty == domain.DifficultyAdvanced {
		base = append(base, domain.Resource{
			Title: "Designing Data-Intensive Applications (reading notes)",
			URL:   "https://dataintensive.net",
			Type:  domain.ResourceArticle,
		})
	}
	return base
}
