package sms

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ridgecast/forecast-sms/internal/domain"
)

// Rows are pipe-delimited instead of padded: proportional-font SMS clients
// destroy fixed-width alignment, so delimiters substitute for columns.

// ForecastRow renders one enriched sample as a data row:
// hour | temp lo/hi | precip letter+probability | amount | wind avg/gust |
// flags. The precip letter is r, s, or m by phase.
func ForecastRow(e domain.EnrichedSample, loc *time.Location) string {
	cols := []string{
		e.ValidAt.In(loc).Format("15"),
		fmt.Sprintf("%d/%d", roundInt(e.AdjustedTemp.Lo), roundInt(e.AdjustedTemp.Hi)),
		fmt.Sprintf("%s%d", precipLetter(e.PrecipType), roundInt(e.RainProbPct)),
		fmt.Sprintf("p%.1f", e.Precip.Hi),
		fmt.Sprintf("w%d/%d", roundInt(e.WindAvgKmh), roundInt(e.WindGustKmh)),
		forecastFlags(e),
	}
	return strings.Join(cols, "|")
}

// forecastFlags renders the hazard tail of a row. Danger and thunder appear
// only when flagged; freezing level and cloud base always render, cloud base
// as "c--" when the provider reported none.
func forecastFlags(e domain.EnrichedSample) string {
	var b strings.Builder
	if e.Danger > domain.DangerNone {
		fmt.Fprintf(&b, "D%d", int(e.Danger))
	}
	b.WriteString(thunderFlag(e.Thunder))
	fmt.Fprintf(&b, "f%d", e.FreezingLevel100M)
	if e.CloudBaseKnown {
		fmt.Fprintf(&b, "c%d", e.CloudBase100M)
	} else {
		b.WriteString("c--")
	}
	return b.String()
}

// SummaryRow renders one zone as a single worst-case row: member label,
// temp span, max precip probability, max gust, danger/thunder flags.
func SummaryRow(z domain.Zone) string {
	c, ok := domain.Collapse(z.Series)
	if !ok {
		return ZoneLabel(z)
	}
	cols := []string{
		ZoneLabel(z),
		fmt.Sprintf("%d/%d", roundInt(c.AdjustedTemp.Lo), roundInt(c.AdjustedTemp.Hi)),
		fmt.Sprintf("%s%d", precipLetter(c.PrecipType), roundInt(c.RainProbPct)),
		fmt.Sprintf("w%d", roundInt(c.WindGustKmh)),
	}
	if fl := summaryFlags(c); fl != "" {
		cols = append(cols, fl)
	}
	return strings.Join(cols, "|")
}

func summaryFlags(e domain.EnrichedSample) string {
	var b strings.Builder
	if e.Danger > domain.DangerNone {
		fmt.Fprintf(&b, "D%d", int(e.Danger))
	}
	b.WriteString(thunderFlag(e.Thunder))
	return b.String()
}

// ZoneLabel names a zone by its members: one code, "A+B" for pairs, and
// "FIRST-LAST" for longer runs.
func ZoneLabel(z domain.Zone) string {
	switch len(z.Codes) {
	case 0:
		return ""
	case 1:
		return z.Codes[0]
	case 2:
		return z.Codes[0] + "+" + z.Codes[1]
	default:
		return z.Codes[0] + "-" + z.Codes[len(z.Codes)-1]
	}
}

// TitleLine renders the reply's first line: location name, compact date, and
// the civil-twilight window when known. Inputs are expected in route-local
// time already.
func TitleLine(name string, date time.Time, light domain.LightHours) string {
	parts := []string{Transliterate(name), date.Format("2Jan")}
	if light.Known {
		parts = append(parts, light.Dawn.Format("1504")+"-"+light.Dusk.Format("1504"))
	}
	return strings.Join(parts, " ")
}

// UnavailableNotice is the partial-data trailer for summaries with failed
// cell fetches.
func UnavailableNotice(n int) string {
	if n == 1 {
		return "1 location unavailable"
	}
	return fmt.Sprintf("%d locations unavailable", n)
}

// WrapCodes lays out codes into space-joined lines of at most width
// rendered characters, for LIST replies.
func WrapCodes(codes []string, width int) []string {
	var lines []string
	var cur string
	for _, c := range codes {
		switch {
		case cur == "":
			cur = c
		case utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(c) <= width:
			cur += " " + c
		default:
			lines = append(lines, cur)
			cur = c
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// Fit truncates s to at most width rendered characters.
func Fit(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}

func precipLetter(t domain.PrecipType) string {
	switch t {
	case domain.PrecipSnow:
		return "s"
	case domain.PrecipMixed:
		return "m"
	default:
		return "r"
	}
}

func thunderFlag(t domain.ThunderIndicator) string {
	switch t {
	case domain.ThunderPossible:
		return "T?"
	case domain.ThunderLikely:
		return "T!"
	default:
		return ""
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
