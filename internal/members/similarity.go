package members

import (
	"strings"
	"unicode"
)

// Similarity: коэффициент Дайса по биграммам символов, 0..1.
// Пробельные символы выкидываются, регистр учитывается; одинаковые строки дают 1,
// строка короче двух символов: 0.
func Similarity(a, b string) float64 {
	ra, rb := stripSpaces(a), stripSpaces(b)
	if string(ra) == string(rb) {
		return 1
	}
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[[2]rune]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[[2]rune{ra[i], ra[i+1]}]++
	}

	common := 0
	for i := 0; i < len(rb)-1; i++ {
		bg := [2]rune{rb[i], rb[i+1]}
		if bigrams[bg] > 0 {
			bigrams[bg]--
			common++
		}
	}
	return 2 * float64(common) / float64(len(ra)+len(rb)-2)
}

func stripSpaces(s string) []rune {
	return []rune(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}
