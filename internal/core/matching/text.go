package matching

import (
	"strings"

	"golang.org/x/text/cases"
)

// fold приводит строку к виду для сравнения без учета регистра.
// cases.Caser хранит состояние, поэтому на каждый вызов создается новый.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// containsFold - offered содержит wanted как подстроку без учета регистра.
func containsFold(offered, wanted string) bool {
	w := fold(wanted)
	if w == "" {
		return false
	}
	return strings.Contains(fold(offered), w)
}

// overlapRatio - доля пожеланий клиента, которые встречаются в предложении.
// Пустые строки в пожеланиях не считаются. ok=false, если пожеланий нет.
func overlapRatio(preferred, offered []string) (ratio float64, ok bool) {
	var wanted, matched int
	for _, pref := range preferred {
		if strings.TrimSpace(pref) == "" {
			continue
		}
		wanted++
		for _, o := range offered {
			if containsFold(o, pref) {
				matched++
				break
			}
		}
	}
	if wanted == 0 {
		return 0, false
	}
	return float64(matched) / float64(wanted), true
}
