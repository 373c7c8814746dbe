package core

import (
	"strings"
)

// Soundex retorna el codi soundex americà (lletra + 3 dígits) del nom, o "" si no té lletres.
func Soundex(name string) string {
	key := strings.ToUpper(NormalizeNameKey(name))
	var letters []byte
	for i := 0; i < len(key); i++ {
		if c := key[i]; c >= 'A' && c <= 'Z' {
			letters = append(letters, c)
		}
	}
	if len(letters) == 0 {
		return ""
	}
	code := []byte{letters[0]}
	last := soundexDigit(letters[0])
	for _, c := range letters[1:] {
		d := soundexDigit(c)
		switch {
		case c == 'H' || c == 'W':
			continue
		case d == 0:
			last = 0
			continue
		case d != last:
			code = append(code, '0'+d)
			if len(code) == 4 {
				return string(code)
			}
		}
		last = d
	}
	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}

func soundexDigit(c byte) byte {
	switch c {
	case 'B', 'F', 'P', 'V':
		return 1
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return 2
	case 'D', 'T':
		return 3
	case 'L':
		return 4
	case 'M', 'N':
		return 5
	case 'R':
		return 6
	}
	return 0
}

// SimilarityPercent és la similitud de text (0-100) entre a i b: el doble dels
// caràcters comuns (subcadenes comunes més llargues, recursivament) sobre la
// suma de longituds.
func SimilarityPercent(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 0
	}
	return float64(commonChars(ra, rb)) * 2 * 100 / float64(len(ra)+len(rb))
}

func commonChars(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	posA, posB, max := 0, 0, 0
	for i := range a {
		for j := range b {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > max {
				posA, posB, max = i, j, k
			}
		}
	}
	if max == 0 {
		return 0
	}
	return max + commonChars(a[:posA], b[:posB]) + commonChars(a[posA+max:], b[posB+max:])
}
