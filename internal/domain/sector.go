package domain

import "strings"

// Sector is the allocation tag assigned to an instrument.
type Sector string

const (
	SectorUSIndex       Sector = "미국지수"
	SectorKoreaIndex    Sector = "국내지수"
	SectorGold          Sector = "금"
	SectorDefenseTheme  Sector = "방산/테마"
	SectorBondMixed     Sector = "채권/혼합"
	SectorOverseasOther Sector = "해외기타"
	SectorSingleStock   Sector = "개별주"
	SectorOther         Sector = "기타"
)

var sectorColors = map[Sector]string{
	SectorUSIndex:       "#3B82F6",
	SectorKoreaIndex:    "#10B981",
	SectorGold:          "#F59E0B",
	SectorDefenseTheme:  "#EF4444",
	SectorBondMixed:     "#8B5CF6",
	SectorOverseasOther: "#06B6D4",
	SectorSingleStock:   "#F97316",
	SectorOther:         "#6B7280",
}

// Color returns the chart color of the sector. Unknown tags get the 기타 color.
func (s Sector) Color() string {
	if c, ok := sectorColors[s]; ok {
		return c
	}
	return sectorColors[SectorOther]
}

type sectorRule struct {
	sector   Sector
	keywords []string
}

// Checked in order; the first keyword hit wins.
var sectorRules = []sectorRule{
	{SectorGold, []string{"금현물", "KRX금", "GOLD"}},
	{SectorBondMixed, []string{"채권", "국채", "혼합", "금채"}},
	{SectorDefenseTheme, []string{"방산", "조선", "2차전지", "반도체", "K방산"}},
	{SectorOverseasOther, []string{"유로", "유럽", "신흥국"}},
	{SectorUSIndex, []string{"미국", "S&P", "나스닥", "NASDAQ", "QQQ", "DIA", "SPY", "다우", "1Q "}},
	{SectorKoreaIndex, []string{"코스피", "코스닥", "KOSPI", " 200", "코스피50", "코스닥150"}},
}

// ClassifySector tags a holding by case-insensitive keyword matching on its
// name. Unmatched foreign holdings count as US index exposure, unmatched
// domestic ones as single stocks.
func ClassifySector(h RawHolding) Sector {
	name := strings.ToLower(h.Name)
	for _, rule := range sectorRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, strings.ToLower(kw)) {
				return rule.sector
			}
		}
	}
	if h.Currency.IsForeign() {
		return SectorUSIndex
	}
	return SectorSingleStock
}
