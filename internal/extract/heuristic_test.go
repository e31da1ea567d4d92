package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/validate"
)

const samplePage = `마포구민체육센터 수영장 안내
운영시간
평일 06:00~22:00 / 주말 07:00~18:00
자유수영 이용안내
평일 6:00~8:00
토요일 10시~12시
이용요금
성인 3,000원 청소년 2,000원
수영 강습 (월)
초급반 월 수강료 55,000원
문의 02-300-1234
25m x 8레인, 주차 가능`

func TestHeuristic_SamplePage(t *testing.T) {
	raw, err := NewHeuristic().Extract(context.Background(), samplePage, "마포구민체육센터")
	require.NoError(t, err)

	assert.Equal(t, 3000, raw.Pricing[string(model.CategoryFreeSwim)])
	assert.Equal(t, 55000, raw.Pricing[string(model.CategoryMonthlyLesson)])
	assert.Equal(t, "02-300-1234", raw.Phone)
	assert.Equal(t, "25m x 8레인", raw.PoolSize)
	assert.Equal(t, 8, raw.Lanes)
	assert.Equal(t, true, raw.Parking)

	facts := validate.Validate(raw)
	require.NotNil(t, facts.FreeSwim)
	assert.Equal(t, []string{"06:00-08:00"}, facts.FreeSwim.Ranges(model.Tuesday))
	assert.Equal(t, []string{"10:00-12:00"}, facts.FreeSwim.Ranges(model.Saturday))

	require.NotNil(t, facts.OperatingHours)
	assert.Equal(t, []string{"06:00-22:00"}, facts.OperatingHours.Ranges(model.Monday))
	assert.Equal(t, []string{"07:00-18:00"}, facts.OperatingHours.Ranges(model.Sunday))
}

func TestHeuristic_TooShort(t *testing.T) {
	_, err := NewHeuristic().Extract(context.Background(), "자유수영 3,000원", "x")
	assert.ErrorIs(t, err, ErrTextTooShort)
}

func TestHeuristic_NoFacts(t *testing.T) {
	text := strings.Repeat("이 페이지에는 수영장에 대한 정보가 없습니다. ", 5)
	_, err := NewHeuristic().Extract(context.Background(), text, "x")
	assert.ErrorIs(t, err, ErrNoFacts)
}

func TestParsePrices(t *testing.T) {
	tests := []struct {
		line string
		want []int
	}{
		{"성인 3,000원", []int{3000}},
		{"월 5만원", []int{50000}},
		{"3개월 12만 5000원", []int{125000}},
		{"일반 4500원 / 어린이 2,500원", []int{4500, 2500}},
		{"1회 이용", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePrices(tt.line), tt.line)
	}
}

func TestParseTimes(t *testing.T) {
	assert.Equal(t, []string{"06:00-08:00", "13:30-15:00"}, parseTimes("6:00~8:00, 13:30 - 15:00"))
	assert.Equal(t, []string{"09:00-11:00"}, parseTimes("오전 9시~11시"))
	assert.Equal(t, []string{"19:00-21:00"}, parseTimes("오후 7시~9시"))
	assert.Equal(t, []string{"06:00-22:00"}, parseTimes("오전 6시~오후 10시"))
	assert.Equal(t, []string{"11:00-13:00"}, parseTimes("오전 11시~1시"))
	assert.Equal(t, []string{"13:00-15:30"}, parseTimes("오후 1:00~3:30"))
	assert.Empty(t, parseTimes("연중무휴"))
}

func TestScanPrice_LessonFloorAndLookahead(t *testing.T) {
	lines := splitLines("강습 안내\n교재비 5,000원\n\n월 강습료 60,000원\n")
	n, line, ok := scanPrice(lines, lessonKeywords, minLessonPrice+1)
	require.True(t, ok)
	assert.Equal(t, 60000, n)
	assert.Equal(t, "월 강습료 60,000원", line)

	far := splitLines("자유수영\n-\n-\n-\n-\n4,000원")
	_, _, ok = scanPrice(far, freeSwimKeywords, heuristicMinPrice)
	assert.False(t, ok, "price beyond the lookahead window")
}

func TestHeuristic_WeekdayScopedPrice(t *testing.T) {
	text := "강남 수영장 이용 안내입니다.\n자유수영 3,400원, 평일 06:00-08:00\n자세한 내용은 센터로 문의 바랍니다."
	raw, err := NewHeuristic().Extract(context.Background(), text, "Gangnam Pool")
	require.NoError(t, err)

	facts := validate.Validate(raw)
	n, ok := facts.Pricing.Get(model.CategoryFreeSwim, model.AudienceAdult, model.DayTypeWeekday)
	require.True(t, ok)
	assert.Equal(t, 3400, n)
	require.NotNil(t, facts.FreeSwim)
	assert.Equal(t, []string{"06:00-08:00"}, facts.FreeSwim.Ranges(model.Monday))
	assert.Empty(t, facts.FreeSwim.Ranges(model.Saturday))
}

func TestScopePrice(t *testing.T) {
	assert.Equal(t, 3000, scopePrice(3000, "성인 3,000원"))
	assert.Equal(t, map[string]any{"adult": map[string]any{"weekend": 4000}}, scopePrice(4000, "주말 4,000원"))
	assert.Equal(t, 3000, scopePrice(3000, "평일 3,000원 / 주말 4,000원"))
}

func TestScanFreeSwimTimes_Unscoped(t *testing.T) {
	got := scanFreeSwimTimes(splitLines("자유수영 시간 12:00~13:00"))
	assert.Len(t, got, 7)
	assert.Equal(t, []any{"12:00-13:00"}, got["sunday"])
}

func TestScanOperatingHours_LabelOnNextLine(t *testing.T) {
	got := scanOperatingHours("", splitLines("이용시간\n평일\n06:00~21:00\n주말\n08:00~17:00"))
	assert.Equal(t, []any{"06:00-21:00"}, got["friday"])
	assert.Equal(t, []any{"08:00-17:00"}, got["saturday"])
}
