package domain

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Periodicity is the bucket size used by the dashboard.
type Periodicity string

const (
	Mensal        Periodicity = "mensal"
	Bimestral     Periodicity = "bimestral"
	Trimestral    Periodicity = "trimestral"
	Quadrimestral Periodicity = "quadrimestral"
	Semestral     Periodicity = "semestral"
	Anual         Periodicity = "anual"
)

var periodicityMonths = map[Periodicity]int{
	Mensal:        1,
	Bimestral:     2,
	Trimestral:    3,
	Quadrimestral: 4,
	Semestral:     6,
	Anual:         12,
}

// ParsePeriodicity validates s. Empty means mensal.
func ParsePeriodicity(s string) (Periodicity, error) {
	if s == "" {
		return Mensal, nil
	}
	p := Periodicity(s)
	if _, ok := periodicityMonths[p]; !ok {
		return "", &ErrValidation{Field: "periodicity", Message: fmt.Sprintf("Periodicidade inválida: %s", s)}
	}
	return p, nil
}

// Months is the number of calendar months in one bucket.
func (p Periodicity) Months() int {
	if n, ok := periodicityMonths[p]; ok {
		return n
	}
	return 1
}

var shortMonthsPTBR = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

var titlePTBR = cases.Title(language.BrazilianPortuguese)

// ShortMonthLabel returns the capitalised pt-BR short month name ("Jan").
func ShortMonthLabel(m time.Month) string {
	return titlePTBR.String(shortMonthsPTBR[m-1])
}

// MonthYearLabel renders a YYYY-MM key as "Mar/2024".
func MonthYearLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return ShortMonthLabel(t.Month()) + "/" + strconv.Itoa(t.Year())
}

// Period is one bucket of the dashboard year.
type Period struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Start Date   `json:"start"`
	End   Date   `json:"end"`
}

// Contains reports whether d falls inside the bucket (inclusive).
func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// BuildPeriods splits a calendar year into consecutive buckets of the
// periodicity's size. The last bucket is clamped to December.
func BuildPeriods(year int, p Periodicity) []Period {
	return buildPeriods(year, p.Months())
}

func buildPeriods(year, size int) []Period {
	size = min(max(size, 1), 12)
	periods := make([]Period, 0, (12+size-1)/size)
	for start := 0; start < 12; start += size {
		end := min(start+size-1, 11)
		startMonth := time.Month(start + 1)
		endMonth := time.Month(end + 1)

		var label string
		switch {
		case size == 12:
			label = strconv.Itoa(year)
		case start == end:
			label = ShortMonthLabel(startMonth)
		default:
			label = ShortMonthLabel(startMonth) + "-" + ShortMonthLabel(endMonth)
		}

		periods = append(periods, Period{
			Key:   fmt.Sprintf("%04d-%02d", year, int(startMonth)),
			Label: label,
			Start: NewDate(year, startMonth, 1),
			End:   NewDate(year, endMonth+1, 0),
		})
	}
	return periods
}

// CurrentPeriodIndex is the bucket holding today's month when year is the
// current year, and the last bucket for any other year.
func CurrentPeriodIndex(periods []Period, year int, p Periodicity, now time.Time) int {
	if len(periods) == 0 {
		return 0
	}
	if now.Year() != year {
		return len(periods) - 1
	}
	idx := (int(now.Month()) - 1) / p.Months()
	return min(idx, len(periods)-1)
}
