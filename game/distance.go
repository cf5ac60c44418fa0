// Package game содержит чистую игровую логику: метрику расстояния между
// прогнозом и фактическим порядком финиша и правило дедлайна прогнозов.
// Функции пакета не имеют побочных эффектов и безопасны для конкурентного вызова.
package game

// Distance вычисляет нормированное расхождение между прогнозом и фактическим
// порядком очковых финишёров. 0.0 — идеальный прогноз, 1.0 — максимально
// ошибочный. Учитываются только первые len(actual) позиций прогноза.
// Пилот из actual, отсутствующий в усечённом прогнозе, штрафуется позицией
// n (на одну за концом списка).
//
// Если actual пуст (очковые финишёры ещё не записаны), счёт не определён —
// возвращается ok == false. Вызывающий обязан трактовать это как «нет счёта»,
// а не как ноль.
func Distance(predicted, actual []string) (dist float64, ok bool) {
	n := len(actual)
	if n == 0 {
		return 0, false
	}

	if len(predicted) > n {
		predicted = predicted[:n]
	}

	if n == 1 {
		if len(predicted) > 0 && predicted[0] == actual[0] {
			return 0, true
		}
		return 1, true
	}

	total := 0
	for i, name := range actual {
		j := n
		for k, p := range predicted {
			if p == name {
				j = k
				break
			}
		}
		total += abs(i - j)
	}

	return float64(total) / float64(maxDisplacement(n)), true
}

// maxDisplacement — точная верхняя граница суммарного смещения для списка
// длины n: sum_{k=0}^{n-1} max(k, n-1-k). Наивная оценка n(n+1)/2 завышает
// нормировку на больших n и не используется.
func maxDisplacement(n int) int {
	sum := 0
	for k := 0; k < n; k++ {
		if m := n - 1 - k; m > k {
			sum += m
		} else {
			sum += k
		}
	}
	return sum
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
