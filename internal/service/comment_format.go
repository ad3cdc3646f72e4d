package service

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"suma/internal/model"
)

// message keys of the comment catalog
const (
	msgUnavailable     = "comment.unavailable"
	msgHighOccurrence  = "comment.high_occurrence"
	msgQuizOverlap     = "comment.quiz_overlap"
	msgTextbookMatches = "comment.textbook_matches"
	msgConfidence      = "comment.confidence"
	msgSeparator       = "comment.separator"
	msgNoMatches       = "comment.no_matches"
	msgNoMatchesConf   = "comment.no_matches_confidence"
	msgFewMatches      = "comment.few_matches"
	msgFewMatchesConf  = "comment.few_matches_confidence"
	msgAnalysisFailed  = "comment.analysis_failed"
)

const defaultCommentLang = "zh-TW"

var commentMessages = map[language.Tag]map[string]string{
	language.TraditionalChinese: {
		msgUnavailable:     model.CommentUnavailableLabel,
		msgHighOccurrence:  "常出現在考試/測驗",
		msgQuizOverlap:     "測驗重疊約 %s%%",
		msgTextbookMatches: "課本對應 %s 處",
		msgConfidence:      "信心 %s%%",
		msgSeparator:       "，",
		msgNoMatches:       "測驗頻率低：目前找不到課本對應",
		msgNoMatchesConf:   "測驗頻率低：目前找不到課本對應（信心 %s%%）",
		msgFewMatches:      "測驗頻率低：僅 %s 處課本對應",
		msgFewMatchesConf:  "測驗頻率低：僅 %s 處課本對應，信心 %s%%",
		msgAnalysisFailed:  "AI 分析失敗",
	},
	language.English: {
		msgUnavailable:     "AI analysis unavailable",
		msgHighOccurrence:  "Frequently appears in exams",
		msgQuizOverlap:     "quiz overlap ≈ %s%%",
		msgTextbookMatches: "textbook matches: %s",
		msgConfidence:      "confidence: %s%%",
		msgSeparator:       ", ",
		msgNoMatches:       "Low test frequency: no textbook correspondence found",
		msgNoMatchesConf:   "Low test frequency: no textbook correspondence found (confidence %s%%)",
		msgFewMatches:      "Low test frequency: only %s textbook correspondence(s)",
		msgFewMatchesConf:  "Low test frequency: only %s textbook correspondence(s), confidence %s%%",
		msgAnalysisFailed:  "AI analysis failed",
	},
}

var commentCatalog = buildCommentCatalog()

func buildCommentCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.TraditionalChinese))
	for tag, msgs := range commentMessages {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic("comment catalog: " + err.Error())
			}
		}
	}
	return b
}

// CommentFormatter turns high-occurrence reports into short localized summaries.
// It is pure and safe for concurrent use.
type CommentFormatter struct {
	tag language.Tag
}

// NewCommentFormatter picks the English catalog for "en*" locales and
// Traditional Chinese for everything else.
func NewCommentFormatter(locale string) *CommentFormatter {
	if locale == "" {
		locale = defaultCommentLang
	}
	tag := language.TraditionalChinese
	if base, _ := language.Make(locale).Base(); base.String() == "en" {
		tag = language.English
	}
	return &CommentFormatter{tag: tag}
}

// Tag is the BCP 47 tag of the catalog in use, "zh-Hant" or "en"
func (f *CommentFormatter) Tag() string {
	return f.tag.String()
}

func (f *CommentFormatter) printer() *message.Printer {
	return message.NewPrinter(f.tag, message.Catalog(commentCatalog))
}

// Unavailable is the fixed text used when no report could be obtained
func (f *CommentFormatter) Unavailable() string {
	return f.printer().Sprintf(msgUnavailable)
}

// AnalysisFailed is the error message surfaced when the analysis call fails
func (f *CommentFormatter) AnalysisFailed() string {
	return f.printer().Sprintf(msgAnalysisFailed)
}

// Format renders report; nil yields Unavailable.
func (f *CommentFormatter) Format(report *model.AnalysisReport) string {
	p := f.printer()
	if report == nil {
		return p.Sprintf(msgUnavailable)
	}

	matches := strconv.Itoa(report.Matches())
	confidence, hasConfidence := percent(report.Confidence)
	quiz, hasQuiz := percent(report.QuizSimilarity)

	if report.IsHighOccurrence {
		segments := []string{p.Sprintf(msgHighOccurrence)}
		if hasQuiz {
			segments = append(segments, p.Sprintf(msgQuizOverlap, quiz))
		}
		segments = append(segments, p.Sprintf(msgTextbookMatches, matches))
		if hasConfidence {
			segments = append(segments, p.Sprintf(msgConfidence, confidence))
		}
		return strings.Join(segments, p.Sprintf(msgSeparator))
	}

	if report.Matches() == 0 {
		if hasConfidence {
			return p.Sprintf(msgNoMatchesConf, confidence)
		}
		return p.Sprintf(msgNoMatches)
	}

	if hasConfidence {
		return p.Sprintf(msgFewMatchesConf, matches, confidence)
	}
	return p.Sprintf(msgFewMatches, matches)
}

// percent converts a [0,1] ratio to a whole percentage, rounding half up
func percent(v *float64) (string, bool) {
	if v == nil || math.IsNaN(*v) {
		return "", false
	}
	return strconv.Itoa(int(math.Floor(*v*100 + 0.5))), true
}
