// Package streak вычисляет серию дней подряд, в которые ребёнок выполнял обязанности.
package streak

import "time"

// Next возвращает новую длину серии после выполнения обязанности в момент now.
// Дни считаются по календарю часового пояса now.
func Next(current int, lastActiveAt, now time.Time) int {
	today := startOfDay(now)
	last := startOfDay(lastActiveAt.In(now.Location()))

	switch {
	case last.Equal(today):
		if current < 1 {
			return 1
		}
		return current
	case last.Equal(today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}

// ResetCutoff возвращает момент, раньше которого последняя активность прерывает серию:
// начало вчерашнего дня.
func ResetCutoff(now time.Time) time.Time {
	return startOfDay(now).AddDate(0, 0, -1)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
