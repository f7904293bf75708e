package trial

import "fmt"

// Verdict sentences for the aggregate test report, keyed by the mean-views band.
const (
	VerdictStrong   = "Формат выглядит сильным. Имеет смысл масштабировать серией."
	VerdictAdequate = "Формат нормальный. Нужны вариации хуков и продолжение серии."
	VerdictWeak     = "Слабые сигналы. Нужны правки хуков/темпа и серия тестов."
)

// ReportNoData is returned when no day stats were submitted yet.
const ReportNoData = "Статистика не найдена. Введи данные по 1–3 дням."

// Mean-views thresholds between the verdict bands. Lower bounds are inclusive.
const (
	strongThreshold   = 10000
	adequateThreshold = 2000
)

// MakeReport reduces the day stats of one attempt, ordered by day ascending,
// into a human-readable verdict. It is pure: no I/O, same input produces the
// same string. An empty input yields ReportNoData.
func MakeReport(stats []*DayStat) string {
	if len(stats) == 0 {
		return ReportNoData
	}

	var total int64
	bestIdx := 0
	for i, s := range stats {
		total += s.Views
		// strict comparison keeps the first day on ties
		if s.Views > stats[bestIdx].Views {
			bestIdx = i
		}
	}
	mean := float64(total) / float64(len(stats))

	var verdict string
	switch {
	case mean >= strongThreshold:
		verdict = VerdictStrong
	case mean >= adequateThreshold:
		verdict = VerdictAdequate
	default:
		verdict = VerdictWeak
	}

	return fmt.Sprintf(
		"📊 *Отчёт по 3-дневному тесту*\n\n"+
			"• Видео: %d\n"+
			"• Средние просмотры: *%d*\n"+
			"• Лучший день: *%d* (просмотры: *%d*)\n\n"+
			"Вывод: %s",
		len(stats), int64(mean), stats[bestIdx].Day, stats[bestIdx].Views, verdict,
	)
}
