package core

import (
	"sort"
	"strconv"
)

type FamilyStats struct {
	Total        int `json:"total"`
	Complete     int `json:"complete"`
	SingleParent int `json:"single_parent"`
	WithChildren int `json:"with_children"`
	Living       int `json:"living"`
	Private      int `json:"private"`
}

// Count és un parell clau/recompte ordenable.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type MarriageDistribution struct {
	ByDecade []Count `json:"by_decade"`
	ByMonth  []Count `json:"by_month"`
}

// DuplicateFamily és una família de treeA i una de treeB que comparteixen marit o muller.
type DuplicateFamily struct {
	FamilyA string `json:"family_a"`
	FamilyB string `json:"family_b"`
	Shared  string `json:"shared"`
	Role    string `json:"role"`
}

func (a *App) FamilyStats(tree string) (*FamilyStats, error) {
	families, err := a.ListFamilies(tree)
	if err != nil {
		return nil, err
	}
	links, err := a.DB.ListChildLinks(tree)
	if err != nil {
		return nil, storageErr("llistant fills", "arbre", tree, err)
	}
	withKids := map[string]bool{}
	for _, l := range links {
		withKids[l.FamilyID] = true
	}
	st := &FamilyStats{Total: len(families)}
	for _, f := range families {
		switch {
		case f.Husband != "" && f.Wife != "":
			st.Complete++
		case f.Husband != "" || f.Wife != "":
			st.SingleParent++
		}
		if withKids[f.FamilyID] {
			st.WithChildren++
		}
		if f.Living {
			st.Living++
		}
		if f.Private {
			st.Private++
		}
	}
	return st, nil
}

func sortedCounts(m map[string]int) []Count {
	res := make([]Count, 0, len(m))
	for k, v := range m {
		res = append(res, Count{Key: k, Count: v})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Key < res[j].Key })
	return res
}

// MarriageDistribution reparteix els casaments amb data ordenable per dècada i per mes.
func (a *App) MarriageDistribution(tree string) (*MarriageDistribution, error) {
	families, err := a.ListFamilies(tree)
	if err != nil {
		return nil, err
	}
	decades, months := map[string]int{}, map[string]int{}
	for _, f := range families {
		year, month, _, ok := splitSortable(f.MarrDateTr)
		if !ok {
			continue
		}
		decades[strconv.Itoa(year/10*10)+"s"]++
		if month > 0 {
			months[twoDigits(month)]++
		}
	}
	return &MarriageDistribution{ByDecade: sortedCounts(decades), ByMonth: sortedCounts(months)}, nil
}

// CommonMarriageDates retorna les dates exactes de casament més repetides.
func (a *App) CommonMarriageDates(tree string, limit int) ([]Count, error) {
	families, err := a.ListFamilies(tree)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, f := range families {
		_, month, day, ok := splitSortable(f.MarrDateTr)
		if !ok || month == 0 || day == 0 {
			continue
		}
		counts[f.MarrDateTr]++
	}
	res := sortedCounts(counts)
	sort.SliceStable(res, func(i, j int) bool { return res[i].Count > res[j].Count })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// CrossTreeDuplicates troba famílies de dos arbres amb el mateix ID de marit o muller.
func (a *App) CrossTreeDuplicates(treeA, treeB string) ([]DuplicateFamily, error) {
	famA, err := a.ListFamilies(treeA)
	if err != nil {
		return nil, err
	}
	famB, err := a.ListFamilies(treeB)
	if err != nil {
		return nil, err
	}
	byHusband, byWife := map[string][]string{}, map[string][]string{}
	for _, f := range famB {
		if f.Husband != "" {
			byHusband[f.Husband] = append(byHusband[f.Husband], f.FamilyID)
		}
		if f.Wife != "" {
			byWife[f.Wife] = append(byWife[f.Wife], f.FamilyID)
		}
	}
	res := []DuplicateFamily{}
	for _, f := range famA {
		for _, other := range byHusband[f.Husband] {
			res = append(res, DuplicateFamily{FamilyA: f.FamilyID, FamilyB: other, Shared: f.Husband, Role: "husband"})
		}
		for _, other := range byWife[f.Wife] {
			res = append(res, DuplicateFamily{FamilyA: f.FamilyID, FamilyB: other, Shared: f.Wife, Role: "wife"})
		}
	}
	return res, nil
}

// splitSortable separa YYYY-MM-DD; el sentinella i les dates buides no compten.
func splitSortable(s string) (year, month, day int, ok bool) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return 0, 0, 0, false
	}
	var err error
	if year, err = strconv.Atoi(s[:4]); err != nil || year == 0 {
		return 0, 0, 0, false
	}
	if month, err = strconv.Atoi(s[5:7]); err != nil {
		return 0, 0, 0, false
	}
	if day, err = strconv.Atoi(s[8:]); err != nil {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
