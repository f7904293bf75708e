package trial

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stat(day int, views int64) *DayStat {
	return &DayStat{Day: day, Views: views, PostLink: "https://tiktok.com/v"}
}

func TestMakeReport_NoData(t *testing.T) {
	assert.Equal(t, ReportNoData, MakeReport(nil))
	assert.Equal(t, ReportNoData, MakeReport([]*DayStat{}))
}

func TestMakeReport_IsPure(t *testing.T) {
	rows := []*DayStat{stat(1, 5000), stat(2, 15000), stat(3, 1000)}
	first := MakeReport(rows)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, MakeReport(rows))
	}
}

func TestMakeReport_Bands(t *testing.T) {
	cases := []struct {
		name    string
		views   []int64
		verdict string
	}{
		{"strong well above", []int64{30000, 20000, 40000}, VerdictStrong},
		{"strong at boundary", []int64{10000, 10000, 10000}, VerdictStrong},
		{"adequate mid band", []int64{5000, 6000, 7000}, VerdictAdequate},
		{"adequate at boundary", []int64{2000, 2000, 2000}, VerdictAdequate},
		{"adequate just below strong", []int64{9999, 9999, 9999}, VerdictAdequate},
		{"weak", []int64{100, 500, 1200}, VerdictWeak},
		{"weak just below adequate", []int64{1999, 1999, 1999}, VerdictWeak},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := make([]*DayStat, len(tc.views))
			for i, v := range tc.views {
				rows[i] = stat(i+1, v)
			}
			assert.Contains(t, MakeReport(rows), tc.verdict)
		})
	}
}

func TestMakeReport_ScenarioThreeDays(t *testing.T) {
	// day 2 is the peak; mean is (5000+15000+1000)/3 = 7000 → adequate
	rows := []*DayStat{stat(1, 5000), stat(2, 15000), stat(3, 1000)}
	report := MakeReport(rows)

	assert.Contains(t, report, "Видео: 3")
	assert.Contains(t, report, "*7000*")
	assert.Contains(t, report, "Лучший день: *2*")
	assert.Contains(t, report, "просмотры: *15000*")
	assert.Contains(t, report, VerdictAdequate)
}

func TestMakeReport_BestDayTieKeepsFirst(t *testing.T) {
	rows := []*DayStat{stat(1, 3000), stat(2, 3000), stat(3, 1000)}
	report := MakeReport(rows)
	assert.Contains(t, report, "Лучший день: *1*")
}

func TestMakeReport_PartialData(t *testing.T) {
	// report over fewer than three days must still work
	rows := []*DayStat{stat(1, 12000)}
	report := MakeReport(rows)
	assert.Contains(t, report, "Видео: 1")
	assert.Contains(t, report, VerdictStrong)
	assert.False(t, strings.Contains(report, ReportNoData))
}

func TestMakeReport_MeanIsTruncatedForDisplay(t *testing.T) {
	// (1000+1001)/2 = 1000.5 → displayed as 1000
	rows := []*DayStat{stat(1, 1000), stat(2, 1001)}
	assert.Contains(t, MakeReport(rows), "Средние просмотры: *1000*")
}
