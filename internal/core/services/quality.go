package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Rubric thresholds. Lengths are in runes so CJK text measures the same
// as the original material it summarises.
const (
	lengthFloor       = 400  // below this: largest length deduction
	lengthTarget      = 1000 // below this: smaller length deduction
	paragraphCap      = 500  // average paragraph length readability cap
	digitRatioFloor   = 0.01 // minimum evidentiary digit density
	domainTermFloor   = 0.5  // minimum domain-term hits per 100 runes
	maxScore          = 10.0
	excellentFeedback = "excellent"
)

var (
	subHeaderPattern = regexp.MustCompile(`(?m)^#{2,4}\s`)
	citationPattern  = regexp.MustCompile(`\[\d+\]|https?://`)
)

// domainTerms are the category vocabularies counted for evidentiary
// register, both scripts.
var domainTerms = [][]string{
	// technical
	{"architecture", "throughput", "efficiency", "capacity", "deployment", "技术", "架构", "效率", "产能", "工艺"},
	// commercial
	{"market", "revenue", "margin", "growth", "share", "demand", "市场", "营收", "利润", "增长", "份额", "需求"},
	// academic
	{"analysis", "research", "study", "methodology", "evidence", "分析", "研究", "方法", "证据", "结论"},
	// regulatory
	{"policy", "regulation", "compliance", "standard", "subsidy", "政策", "法规", "合规", "标准", "补贴"},
}

// connectives are logical-connective markers counted for argumentation.
var connectives = []string{
	"therefore", "however", "because", "consequently", "furthermore",
	"in contrast", "as a result", "moreover",
	"因此", "然而", "由于", "综上", "此外", "相比之下", "从而",
}

// ScoreResult is the outcome of one rubric evaluation.
type ScoreResult struct {
	// Score is the rubric score in [0,10].
	Score float64

	// Feedback is the pipe-joined list of triggered issues, or a fixed
	// marker when nothing triggered.
	Feedback string

	// Hints are ordered remediation suggestions for the refinement step.
	Hints []string
}

// QualityScorer evaluates section text against a deterministic rubric.
// Scoring is a pure function of its inputs: identical text always
// produces identical output.
type QualityScorer struct{}

// NewQualityScorer creates a quality scorer.
func NewQualityScorer() *QualityScorer {
	return &QualityScorer{}
}

// Score applies the rubric: independent additive deductions from a
// maximum of 10, floored at 0.
func (q *QualityScorer) Score(text, topic, unitLabel string) ScoreResult {
	score := maxScore
	var issues []string
	var hints []string

	deduct := func(points float64, issue, hint string) {
		score -= points
		issues = append(issues, issue)
		hints = append(hints, hint)
	}

	runes := []rune(text)
	length := len(runes)

	// Length.
	switch {
	case length < lengthFloor:
		deduct(3.0, fmt.Sprintf("content too short (%d chars)", length),
			"expand the section with more substantive analysis of "+unitLabel)
	case length < lengthTarget:
		deduct(1.5, fmt.Sprintf("content below target length (%d chars)", length),
			"deepen the discussion with additional detail")
	}

	// Structural depth.
	switch headers := len(subHeaderPattern.FindAllString(text, -1)); headers {
	case 0:
		deduct(2.0, "no sub-headers", "structure the section with sub-headers")
	case 1:
		deduct(1.0, "only one sub-header", "split the content under at least two sub-headers")
	}

	// Paragraph density.
	if avg := averageParagraphLength(text); avg > paragraphCap {
		deduct(1.0, fmt.Sprintf("paragraphs too dense (avg %d chars)", avg),
			"break long paragraphs into shorter ones")
	}

	// Evidentiary density.
	if length > 0 {
		ratio := digitRatio(runes)
		if ratio < digitRatioFloor {
			points := 1.5 * (digitRatioFloor - ratio) / digitRatioFloor
			deduct(points, "little quantitative evidence",
				"ground claims about "+topic+" in concrete figures")
		}
	}
	if !citationPattern.MatchString(text) {
		deduct(1.0, "no citation markers", "cite evidence sources inline")
	}

	// Visual support.
	hasTable := hasMarkdownTable(text)
	hasVisual := strings.Contains(text, "![")
	switch {
	case !hasTable && !hasVisual:
		deduct(2.0, "no table or chart", "add a data table or chart supporting the argument")
	case hasTable && !hasVisual:
		deduct(1.0, "table present but no chart", "add a chart visualising the tabled data")
	}

	// Domain-term density.
	if length > 0 {
		per100 := float64(domainTermHits(text, topic)) / float64(length) * 100
		if per100 < domainTermFloor {
			deduct(1.0, "low domain-term density", "use the field's terminology more precisely")
		}
	}

	// Argumentation connectives.
	if connectiveHits(text) == 0 {
		deduct(0.5, "no logical connectives", "link claims with explicit argumentation")
	}

	if score < 0 {
		score = 0
	}

	feedback := excellentFeedback
	if len(issues) > 0 {
		feedback = strings.Join(issues, " | ")
	}

	return ScoreResult{Score: score, Feedback: feedback, Hints: hints}
}

// averageParagraphLength in runes across non-empty paragraphs.
func averageParagraphLength(text string) int {
	paragraphs := strings.Split(text, "\n\n")
	total, count := 0, 0
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		total += len([]rune(p))
		count++
	}
	if count == 0 {
		return 0
	}
	return total / count
}

// digitRatio is the share of digit runes in the text.
func digitRatio(runes []rune) float64 {
	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits) / float64(len(runes))
}

// hasMarkdownTable detects at least two rows with three or more
// delimited columns.
func hasMarkdownTable(text string) bool {
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.Count(line, "|") >= 2 {
			rows++
			if rows >= 2 {
				return true
			}
		}
	}
	return false
}

// domainTermHits counts category keyword occurrences plus topic terms.
func domainTermHits(text, topic string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, category := range domainTerms {
		for _, term := range category {
			hits += strings.Count(lower, term)
		}
	}
	for _, term := range tokenise(topic) {
		if len([]rune(term)) > 1 {
			hits += strings.Count(lower, term)
		}
	}
	return hits
}

// connectiveHits counts logical-connective occurrences.
func connectiveHits(text string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, c := range connectives {
		hits += strings.Count(lower, c)
	}
	return hits
}
