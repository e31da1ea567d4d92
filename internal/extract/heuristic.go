package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/poolfinder/pool-cli/internal/model"
)

// Coarse band for heuristic price matches. Tighter checks run in validate.
const (
	heuristicMinPrice = 500
	heuristicMaxPrice = 500000
	minLessonPrice    = 30000
	priceLookahead    = 3
	timeLookahead     = 4
	hoursZoneLines    = 10
)

var (
	freeSwimKeywords = []string{"자유수영", "자율수영", "일일입장", "1회 이용"}
	lessonKeywords   = []string{"강습", "수강", "회비", "월 수영", "한달"}
	hoursKeywords    = []string{"운영시간", "이용시간", "영업시간", "개장시간", "개방시간", "센터운영"}
	weekdayKeywords  = []string{"평일", "월~금", "월요일~금요일", "주중"}
	weekendKeywords  = []string{"주말", "토요일", "일요일", "토,일", "토·일", "토/일"}

	// "5만 5000원" and "5만원" before "55,000원" and "55000원", leftmost wins.
	priceRe = regexp.MustCompile(`(\d+)\s*만\s*(\d{1,4})?\s*원|(\d{1,3}(?:,\d{3})+|\d{3,7})\s*원`)

	clockRangeRe = regexp.MustCompile(`(오전|오후)?\s*(\d{1,2}):(\d{2})\s*[-~]\s*(오전|오후)?\s*(\d{1,2}):(\d{2})`)
	hourRangeRe  = regexp.MustCompile(`(오전|오후)?\s*(\d{1,2})\s*시\s*[-~]\s*(오전|오후)?\s*(\d{1,2})\s*시`)

	combinedHoursRe = regexp.MustCompile(
		`(?:평일|주중|월~금)\s*(\d{1,2}:\d{2})\s*[-~]\s*(\d{1,2}:\d{2})` +
			`\s*[/,]\s*` +
			`(?:주말|토[·,/]?일)\s*(\d{1,2}:\d{2})\s*[-~]\s*(\d{1,2}:\d{2})`)

	phoneTextRe  = regexp.MustCompile(`0\d{1,2}-\d{3,4}-\d{4}`)
	lanesTextRe  = regexp.MustCompile(`(\d{1,2})\s*레인`)
	poolSizeRe   = regexp.MustCompile(`(\d{2})\s*m\s*[xX×*]\s*(\d{1,2})\s*레인`)
	parkingYesRe = regexp.MustCompile(`주차\s*(가능|있음|무료)`)
	parkingNoRe  = regexp.MustCompile(`주차\s*(불가|없음|불가능)`)
)

// Heuristic extracts facts with keyword scans and regular expressions.
type Heuristic struct{}

// NewHeuristic returns the regex strategy.
func NewHeuristic() *Heuristic { return &Heuristic{} }

// Name implements Extractor.
func (h *Heuristic) Name() string { return "heuristic" }

// Extract implements Extractor.
func (h *Heuristic) Extract(_ context.Context, text, _ string) (*model.RawFactBundle, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}
	lines := splitLines(text)
	raw := &model.RawFactBundle{}

	pricing := map[string]any{}
	if n, line, ok := scanPrice(lines, freeSwimKeywords, heuristicMinPrice); ok {
		pricing[string(model.CategoryFreeSwim)] = scopePrice(n, line)
	}
	if n, _, ok := scanPrice(lines, lessonKeywords, minLessonPrice+1); ok {
		pricing[string(model.CategoryMonthlyLesson)] = n
	}
	if len(pricing) > 0 {
		raw.Pricing = pricing
	}

	if swim := scanFreeSwimTimes(lines); len(swim) > 0 {
		raw.FreeSwim = swim
	}
	if hours := scanOperatingHours(text, lines); len(hours) > 0 {
		raw.OperatingHours = hours
	}

	if m := phoneTextRe.FindString(text); m != "" {
		raw.Phone = m
	}
	if m := poolSizeRe.FindStringSubmatch(text); m != nil {
		raw.PoolSize = fmt.Sprintf("%sm x %s레인", m[1], m[2])
		raw.Lanes = atoi(m[2])
	} else if m := lanesTextRe.FindStringSubmatch(text); m != nil {
		raw.Lanes = atoi(m[1])
	}
	switch {
	case parkingNoRe.MatchString(text):
		raw.Parking = false
	case parkingYesRe.MatchString(text):
		raw.Parking = true
	}

	if raw.IsEmpty() {
		return nil, ErrNoFacts
	}
	return raw, nil
}

func splitLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func containsAny(line string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// scanPrice returns the first plausible price found on a keyword line or
// the priceLookahead lines after it, with the line it was found on.
func scanPrice(lines, keywords []string, floor int) (int, string, bool) {
	for i, line := range lines {
		if !containsAny(line, keywords) {
			continue
		}
		for j := i; j <= i+priceLookahead && j < len(lines); j++ {
			for _, n := range parsePrices(lines[j]) {
				if n >= floor && n <= heuristicMaxPrice {
					return n, lines[j], true
				}
			}
		}
	}
	return 0, "", false
}

// scopePrice files a price under the adult weekday or weekend leaf when its
// line names exactly one of them. Otherwise the bare amount is returned.
func scopePrice(n int, line string) any {
	weekday := containsAny(line, weekdayKeywords)
	weekend := containsAny(line, weekendKeywords)
	switch {
	case weekday && !weekend:
		return map[string]any{string(model.AudienceAdult): map[string]any{string(model.DayTypeWeekday): n}}
	case weekend && !weekday:
		return map[string]any{string(model.AudienceAdult): map[string]any{string(model.DayTypeWeekend): n}}
	default:
		return n
	}
}

// parsePrices returns every won amount in line, left to right.
func parsePrices(line string) []int {
	var out []int
	for _, m := range priceRe.FindAllStringSubmatch(line, -1) {
		if m[1] != "" {
			n := atoi(m[1]) * 10000
			if m[2] != "" {
				n += atoi(m[2])
			}
			out = append(out, n)
			continue
		}
		out = append(out, atoi(strings.ReplaceAll(m[3], ",", "")))
	}
	return out
}

// parseTimes normalizes every time range in line to HH:MM-HH:MM.
func parseTimes(line string) []string {
	var out []string
	for _, m := range clockRangeRe.FindAllStringSubmatch(line, -1) {
		start, end := meridiemHours(m[1], atoi(m[2]), m[4], atoi(m[5]))
		out = append(out, fmt.Sprintf("%02d:%s-%02d:%s", start, m[3], end, m[6]))
	}
	for _, m := range hourRangeRe.FindAllStringSubmatch(line, -1) {
		start, end := meridiemHours(m[1], atoi(m[2]), m[3], atoi(m[4]))
		out = append(out, fmt.Sprintf("%02d:00-%02d:00", start, end))
	}
	return out
}

// meridiemHours converts 오전/오후 hours to 24h. An end hour without its own
// marker takes the start's, and an end that would fall before the start
// moves into the afternoon ("오전 11시~1시" is 11-13).
func meridiemHours(startMark string, start int, endMark string, end int) (int, int) {
	if endMark == "" {
		endMark = startMark
	}
	start, end = to24h(startMark, start), to24h(endMark, end)
	if startMark != "" && end < start && end+12 <= 23 {
		end += 12
	}
	return start, end
}

func to24h(mark string, h int) int {
	switch {
	case mark == "오후" && h < 12:
		return h + 12
	case mark == "오전" && h == 12:
		return 0
	}
	return h
}

func scanFreeSwimTimes(lines []string) map[string]any {
	days := map[model.Weekday][]string{}
	for i, line := range lines {
		if !containsAny(line, freeSwimKeywords) {
			continue
		}
		for j := i; j <= i+timeLookahead && j < len(lines); j++ {
			times := parseTimes(lines[j])
			if len(times) == 0 {
				continue
			}
			for _, d := range scopeDays(lines[j]) {
				days[d] = appendUnique(days[d], times...)
			}
		}
	}
	return toRawSchedule(days)
}

// scopeDays maps a line's weekday/weekend keyword to the days it covers.
// Lines with neither apply to the whole week.
func scopeDays(line string) []model.Weekday {
	switch {
	case containsAny(line, weekdayKeywords):
		return model.WorkWeek()
	case containsAny(line, weekendKeywords):
		return model.Weekend()
	default:
		return model.AllWeekdays()
	}
}

func scanOperatingHours(text string, lines []string) map[string]any {
	days := map[model.Weekday][]string{}
	set := func(target []model.Weekday, r string) {
		for _, d := range target {
			if len(days[d]) == 0 {
				days[d] = []string{r}
			}
		}
	}

	if m := combinedHoursRe.FindStringSubmatch(text); m != nil {
		set(model.WorkWeek(), normalizeClock(m[1])+"-"+normalizeClock(m[2]))
		set(model.Weekend(), normalizeClock(m[3])+"-"+normalizeClock(m[4]))
		return toRawSchedule(days)
	}

	zone := map[int]bool{}
	for i, line := range lines {
		if containsAny(line, hoursKeywords) {
			for j := i; j < i+hoursZoneLines && j < len(lines); j++ {
				zone[j] = true
			}
		}
	}

	var weekdaySet, weekendSet bool
	for i, line := range lines {
		if len(zone) > 0 && !zone[i] {
			continue
		}
		isWeekday := containsAny(line, weekdayKeywords)
		isWeekend := containsAny(line, weekendKeywords)
		if !isWeekday && !isWeekend {
			continue
		}
		times := parseTimes(line)
		if len(times) == 0 {
			// A bare label takes the first range on the next two lines.
			for j := i + 1; j < i+3 && j < len(lines); j++ {
				if times = parseTimes(lines[j]); len(times) > 0 {
					break
				}
			}
		}
		if len(times) == 0 {
			continue
		}
		switch {
		case isWeekday && !weekdaySet:
			set(model.WorkWeek(), times[0])
			weekdaySet = true
		case isWeekend && !weekendSet:
			set(model.Weekend(), times[0])
			weekendSet = true
		}
	}

	if len(days) == 0 && len(zone) > 0 {
		for i := range lines {
			if !zone[i] {
				continue
			}
			if times := parseTimes(lines[i]); len(times) > 0 {
				set(model.WorkWeek(), times[0])
				break
			}
		}
	}
	return toRawSchedule(days)
}

func normalizeClock(s string) string {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return s
	}
	return fmt.Sprintf("%02d:%s", atoi(parts[0]), parts[1])
}

func toRawSchedule(days map[model.Weekday][]string) map[string]any {
	if len(days) == 0 {
		return nil
	}
	out := make(map[string]any, len(days))
	for d, ranges := range days {
		list := make([]any, len(ranges))
		for i, r := range ranges {
			list[i] = r
		}
		out[string(d)] = list
	}
	return out
}

func appendUnique(dst []string, items ...string) []string {
	for _, it := range items {
		found := false
		for _, d := range dst {
			if d == it {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, it)
		}
	}
	return dst
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
