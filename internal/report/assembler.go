package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ymlin/twscreener/internal/contracts"
	"github.com/ymlin/twscreener/pkg/logger"
)

// Ranking keys the assembler understands
const (
	RankDistanceFromHigh = "distance_from_high" // ascending: closest to the high first
	RankVolumeRatio      = "volume_ratio"       // descending: hottest volume first
)

// Report is the assembled, size-bounded notification text
type Report struct {
	GeneratedAt  time.Time
	Text         string
	TotalMatches int
	ShownMatches int
	Truncated    bool
}

// Assembler ranks matches and renders them into one bounded report
type Assembler struct {
	rankingKey string
	sizeLimit  int
	logger     *logger.Logger
}

// NewAssembler creates a report assembler
func NewAssembler(rankingKey string, sizeLimit int, log *logger.Logger) *Assembler {
	return &Assembler{
		rankingKey: rankingKey,
		sizeLimit:  sizeLimit,
		logger:     log.Component("report"),
	}
}

// Assemble ranks the matches and renders the run report. The result never
// exceeds the size limit; overflowing sections are dropped lowest-ranked
// first and replaced by a truncation notice
func (a *Assembler) Assemble(universe *contracts.Universe, matches []*contracts.Match, policyName string) *Report {
	now := time.Now()
	report := &Report{
		GeneratedAt:  now,
		TotalMatches: len(matches),
	}

	header := fmt.Sprintf("📈 **台股技術篩選** | %s | 策略 %s\n",
		now.Format("2006-01-02"), policyName)

	if universe == nil || universe.Count() == 0 {
		report.Text = header + "\n⚠️ 股票池為空，本次無法掃描"
		return report
	}
	if len(matches) == 0 {
		report.Text = header + fmt.Sprintf("\n本次掃描 %d 檔，無符合條件的股票", universe.Count())
		return report
	}

	ranked := rank(matches, a.rankingKey)

	sections := make([]string, 0, len(ranked))
	for _, m := range ranked {
		sections = append(sections, renderSection(m))
	}
	footer := fmt.Sprintf("\n共 %d 檔符合 (掃描 %d 檔)", len(ranked), universe.Count())

	shown := fitSections(header, sections, footer, a.sizeLimit)
	report.ShownMatches = shown
	report.Truncated = shown < len(sections)

	var b strings.Builder
	b.WriteString(header)
	for _, section := range sections[:shown] {
		b.WriteString(section)
	}
	if report.Truncated {
		b.WriteString(truncationNotice(len(sections) - shown))
	}
	b.WriteString(footer)
	report.Text = b.String()

	a.logger.WithFields(map[string]interface{}{
		"matches":   report.TotalMatches,
		"shown":     report.ShownMatches,
		"truncated": report.Truncated,
		"chars":     runes(report.Text),
	}).Info("Report assembled")
	return report
}

// rank orders matches by the configured key, ties broken by code ascending
func rank(matches []*contracts.Match, key string) []*contracts.Match {
	out := make([]*contracts.Match, len(matches))
	copy(out, matches)

	sort.SliceStable(out, func(i, j int) bool {
		switch key {
		case RankVolumeRatio:
			vi, vj := out[i].VolumeRatio(), out[j].VolumeRatio()
			if vi != vj {
				return vi > vj
			}
		default: // RankDistanceFromHigh
			di, dj := out[i].DistanceFromHigh(), out[j].DistanceFromHigh()
			if di != dj {
				return di < dj
			}
		}
		return out[i].Symbol.Code < out[j].Symbol.Code
	})
	return out
}

// renderSection renders one match into its fixed-shape block
func renderSection(m *contracts.Match) string {
	var b strings.Builder
	snap := m.Snapshot

	b.WriteString(fmt.Sprintf("\n**%s %s** (%s)\n", m.Symbol.Code, m.Symbol.Name, m.Symbol.Market))
	b.WriteString(fmt.Sprintf("收盤 %.2f", snap.Close))
	for _, w := range sortedWindows(snap) {
		b.WriteString(fmt.Sprintf(" | MA%d %.2f (%+.1f%%)", w, snap.MA[w].Current, snap.Bias(w)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("量比 %.1fx | 距 %d 日高點 -%.1f%%\n",
		snap.VolumeRatio(), snap.ExtremesLookback, snap.DistanceFromHigh()*100))
	b.WriteString(fmt.Sprintf("規則: %s\n", strings.Join(m.FiredRules, ", ")))
	for _, headline := range m.Headlines {
		b.WriteString(fmt.Sprintf("📰 %s\n", headline))
	}
	b.WriteString("───\n")
	return b.String()
}

// fitSections returns how many leading sections fit under the limit together
// with the header, the footer and, when anything is dropped, the notice.
// The limit is in characters, the unit the delivery channel enforces
func fitSections(header string, sections []string, footer string, limit int) int {
	total := runes(header) + runes(footer)
	for _, section := range sections {
		total += runes(section)
	}
	if total <= limit {
		return len(sections)
	}

	for shown := len(sections) - 1; shown >= 0; shown-- {
		size := runes(header) + runes(footer) + runes(truncationNotice(len(sections)-shown))
		for _, section := range sections[:shown] {
			size += runes(section)
		}
		if size <= limit {
			return shown
		}
	}
	return 0
}

func runes(s string) int { return utf8.RuneCountInString(s) }

func truncationNotice(dropped int) string {
	return fmt.Sprintf("\n⋯ 篇幅限制，已略過 %d 檔排名較後的股票\n", dropped)
}

func sortedWindows(snap *contracts.IndicatorSnapshot) []int {
	windows := make([]int, 0, len(snap.MA))
	for w := range snap.MA {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	return windows
}
