// Package leveling вычисляет уровень ребёнка по сумме заработанных баллов.
//
// Порог перехода с уровня n на уровень n+1 растёт на 100 баллов с каждым
// уровнем: 200 баллов для второго уровня, ещё 300 для третьего и так далее.
package leveling

// For возвращает уровень, соответствующий накопленным баллам. Минимальный уровень равен 1.
func For(totalPoints int64) int {
	if totalPoints < 0 {
		totalPoints = 0
	}

	level := 1
	var required int64
	for totalPoints >= required {
		level++
		required += int64(level) * 100
	}
	return level - 1
}

// Threshold возвращает сумму баллов, необходимую для достижения уровня.
func Threshold(level int) int64 {
	var required int64
	for l := 2; l <= level; l++ {
		required += int64(l) * 100
	}
	return required
}

// ExperienceForNextLevel возвращает число баллов между уровнем и следующим за ним.
func ExperienceForNextLevel(level int) int64 {
	return int64(level+1) * 100
}

// Progress описывает положение ребёнка на шкале уровней.
type Progress struct {
	Level       int
	NextLevelAt int64
	ToNextLevel int64
}

// ProgressFor возвращает уровень, порог следующего уровня и недостающие до него баллы.
func ProgressFor(totalPoints int64) Progress {
	lvl := For(totalPoints)
	next := Threshold(lvl + 1)

	if totalPoints < 0 {
		totalPoints = 0
	}

	return Progress{
		Level:       lvl,
		NextLevelAt: next,
		ToNextLevel: next - totalPoints,
	}
}
