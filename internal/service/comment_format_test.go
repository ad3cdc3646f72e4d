package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"suma/internal/model"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func reportFixture(high bool, matches *int, quiz, confidence *float64) *model.AnalysisReport {
	r := &model.AnalysisReport{IsHighOccurrence: high, QuizSimilarity: quiz, Confidence: confidence}
	if matches != nil {
		r.TextbookCoverage = &model.TextbookCoverage{MatchesFound: matches}
	}
	return r
}

func TestFormatComment(t *testing.T) {
	f := NewCommentFormatter("zh-TW")

	tests := []struct {
		name   string
		report *model.AnalysisReport
		want   string
	}{
		{
			name:   "nil report",
			report: nil,
			want:   "AI 無法取得分析",
		},
		{
			name:   "high occurrence with every segment",
			report: reportFixture(true, intPtr(3), floatPtr(0.8), floatPtr(0.9)),
			want:   "常出現在考試/測驗，測驗重疊約 80%，課本對應 3 處，信心 90%",
		},
		{
			name:   "high occurrence without optional segments",
			report: reportFixture(true, nil, nil, nil),
			want:   "常出現在考試/測驗，課本對應 0 處",
		},
		{
			name:   "no textbook matches with confidence",
			report: reportFixture(false, intPtr(0), nil, floatPtr(0.5)),
			want:   "測驗頻率低：目前找不到課本對應（信心 50%）",
		},
		{
			name:   "no textbook matches",
			report: reportFixture(false, nil, floatPtr(0.2), nil),
			want:   "測驗頻率低：目前找不到課本對應",
		},
		{
			name:   "few matches with confidence",
			report: reportFixture(false, intPtr(2), nil, floatPtr(0.336)),
			want:   "測驗頻率低：僅 2 處課本對應，信心 34%",
		},
		{
			name:   "few matches",
			report: reportFixture(false, intPtr(1), nil, nil),
			want:   "測驗頻率低：僅 1 處課本對應",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(tt.report))
		})
	}
}

func TestFormatCommentIsIdempotent(t *testing.T) {
	f := NewCommentFormatter("")
	r := reportFixture(true, intPtr(3), floatPtr(0.8), floatPtr(0.9))
	assert.Equal(t, f.Format(r), f.Format(r))
}

func TestFormatCommentEnglish(t *testing.T) {
	f := NewCommentFormatter("en-US")

	got := f.Format(reportFixture(true, intPtr(3), floatPtr(0.8), floatPtr(0.9)))
	assert.Contains(t, got, "Frequently appears in exams")
	assert.Contains(t, got, "80%")
	assert.Contains(t, got, "textbook matches: 3")
	assert.Contains(t, got, "90%")

	assert.Equal(t, "AI analysis unavailable", f.Format(nil))
	assert.Equal(t,
		"Low test frequency: no textbook correspondence found (confidence 50%)",
		f.Format(reportFixture(false, intPtr(0), nil, floatPtr(0.5))),
	)
}

func TestPercentRoundsHalfUp(t *testing.T) {
	got, ok := percent(floatPtr(0.125))
	assert.True(t, ok)
	assert.Equal(t, "13", got)

	got, _ = percent(floatPtr(0.29))
	assert.Equal(t, "29", got)

	_, ok = percent(nil)
	assert.False(t, ok)
}

func TestFormatterTag(t *testing.T) {
	assert.Equal(t, "zh-Hant", NewCommentFormatter("zh-TW").Tag())
	assert.Equal(t, "zh-Hant", NewCommentFormatter("").Tag())
	assert.Equal(t, "en", NewCommentFormatter("en-US").Tag())
}
