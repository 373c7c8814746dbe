package core

import (
	"math"
	"sort"
	"strings"

	"github.com/marcmoiagese/HeritagePress/db"
)

// DuplicateCandidate és una parella de persones que podrien ser la mateixa.
type DuplicateCandidate struct {
	PersonA string `json:"person_a"`
	PersonB string `json:"person_b"`
	NameA   string `json:"name_a"`
	NameB   string `json:"name_b"`
	Score   int    `json:"score"`
}

// DuplicateScore compara dues persones (0-100): similitud del nom, coincidència
// exacta de la data de naixement i similitud del lloc de naixement, fent la
// mitjana només de les comprovacions amb dades a totes dues bandes.
func DuplicateScore(a, b *db.Person) int {
	var total float64
	checks := 0

	nameA := NormalizeNameKey(a.FirstName + " " + a.LastName)
	nameB := NormalizeNameKey(b.FirstName + " " + b.LastName)
	if nameA != "" && nameB != "" {
		total += SimilarityPercent(nameA, nameB)
		checks++
	}
	if a.BirthDate != "" && b.BirthDate != "" {
		if strings.EqualFold(a.BirthDate, b.BirthDate) {
			total += 100
		}
		checks++
	}
	placeA, placeB := NormalizeNameKey(a.BirthPlace), NormalizeNameKey(b.BirthPlace)
	if placeA != "" && placeB != "" {
		total += SimilarityPercent(placeA, placeB)
		checks++
	}
	if checks == 0 {
		return 0
	}
	return int(math.Round(total / float64(checks)))
}

// FindDuplicates agrupa les persones pel soundex del cognom i només compara
// dins de cada grup. Retorna les parelles amb puntuació >= llindar, de més a
// menys probables.
func (a *App) FindDuplicates(actor Actor, tree string) ([]DuplicateCandidate, error) {
	persons, err := a.ListPersons(tree)
	if err != nil {
		return nil, err
	}
	buckets := make(map[string][]*db.Person)
	for i := range persons {
		p := &persons[i]
		key := p.Soundex
		if key == "" {
			key = Soundex(p.LastName)
		}
		buckets[key] = append(buckets[key], p)
	}

	var res []DuplicateCandidate
	for _, group := range buckets {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				score := DuplicateScore(group[i], group[j])
				if score < a.Threshold {
					continue
				}
				res = append(res, DuplicateCandidate{
					PersonA: group[i].PersonID,
					PersonB: group[j].PersonID,
					NameA:   PersonLabel(group[i], actor),
					NameB:   PersonLabel(group[j], actor),
					Score:   score,
				})
			}
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Score != res[j].Score {
			return res[i].Score > res[j].Score
		}
		if res[i].PersonA != res[j].PersonA {
			return res[i].PersonA < res[j].PersonA
		}
		return res[i].PersonB < res[j].PersonB
	})
	Debugf("duplicats %s: %d persones, %d grups, %d candidats", tree, len(persons), len(buckets), len(res))
	return res, nil
}
