// Package dates normalitza dates genealògiques (exactes, parcials i amb
// qualificadors GEDCOM) en una forma de visualització i una forma ordenable.
//
// La forma ordenable té el format YYYY-MM-DD amb 00 per al mes o el dia
// desconeguts, i el sentinella 0000-00-00 quan no s'ha pogut interpretar la data.
// Normalize no falla mai: una data mal formada conserva el text original.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cacack/gedcom-go/gedcom"
)

// SortableUnknown és el valor ordenable d'una data no interpretable.
const SortableUnknown = "0000-00-00"

// Avisos que pot portar un Result.
const (
	WarnImpossible = "data de calendari impossible"
	WarnFuture     = "data futura"
)

type MonthFormat string

const (
	MonthAbbr    MonthFormat = "abbr"
	MonthFull    MonthFormat = "full"
	MonthNumeric MonthFormat = "numeric"
)

type FuturePolicy string

const (
	FutureWarn   FuturePolicy = "warn"
	FutureAccept FuturePolicy = "accept"
)

// Result és el resultat de normalitzar una data.
type Result struct {
	Raw       string   `json:"raw"`
	Display   string   `json:"display"`
	Sortable  string   `json:"sortable"`
	Qualifier string   `json:"qualifier,omitempty"`
	Valid     bool     `json:"valid"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Empty indica que no hi havia cap data.
func (r Result) Empty() bool {
	return strings.TrimSpace(r.Raw) == ""
}

type Normalizer struct {
	Strict bool
	Future FuturePolicy
	Months MonthFormat
	Now    func() time.Time
}

// New crea un normalitzador; valors buits o desconeguts prenen els defectes.
func New(strict bool, future, months string) *Normalizer {
	n := &Normalizer{Strict: strict, Future: FutureWarn, Months: MonthAbbr, Now: time.Now}
	switch FuturePolicy(strings.ToLower(future)) {
	case FutureAccept:
		n.Future = FutureAccept
	}
	switch MonthFormat(strings.ToLower(months)) {
	case MonthFull:
		n.Months = MonthFull
	case MonthNumeric:
		n.Months = MonthNumeric
	}
	return n
}

var monthAbbr = []string{"", "JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

var monthFull = []string{"", "January", "February", "March", "April", "May", "June", "July",
	"August", "September", "October", "November", "December"}

// noms llargs i variants que gedcom no accepta
var monthAliases = map[string]string{
	"JANUARY": "JAN", "FEBRUARY": "FEB", "MARCH": "MAR", "APRIL": "APR",
	"JUNE": "JUN", "JULY": "JUL", "AUGUST": "AUG", "SEPTEMBER": "SEP", "SEPT": "SEP",
	"OCTOBER": "OCT", "NOVEMBER": "NOV", "DECEMBER": "DEC",
}

var qualifierAliases = map[string]string{
	"ABT": "ABT", "ABOUT": "ABT", "CIRCA": "ABT", "CA": "ABT", "C.": "ABT",
	"BEF": "BEF", "BEFORE": "BEF",
	"AFT": "AFT", "AFTER": "AFT",
	"EST": "EST", "CALC": "CALC", "CAL": "CALC", "INT": "INT",
}

var isoDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

type part struct {
	year, month, day int
	bc               bool
	impossible       bool
}

// Normalize interpreta raw. Mai retorna error: les dates no interpretables
// conserven el text i reben el sentinella ordenable.
func (n *Normalizer) Normalize(raw string) Result {
	res := Result{Raw: raw}
	clean := strings.Join(strings.Fields(raw), " ")
	if clean == "" {
		res.Valid = true
		return res
	}
	res.Display = clean
	res.Sortable = SortableUnknown

	tokens := strings.Fields(strings.ToUpper(clean))
	var first, second *part
	var ok bool

	switch tokens[0] {
	case "BET", "BETWEEN":
		idx := indexOf(tokens, "AND")
		if idx < 2 || idx == len(tokens)-1 {
			return res
		}
		first, ok = parsePart(tokens[1:idx])
		if !ok {
			return res
		}
		second, ok = parsePart(tokens[idx+1:])
		if !ok {
			return res
		}
		res.Qualifier = "BET"
	case "FROM":
		idx := indexOf(tokens, "TO")
		end := len(tokens)
		if idx > 0 {
			end = idx
		}
		if end < 2 {
			return res
		}
		first, ok = parsePart(tokens[1:end])
		if !ok {
			return res
		}
		if idx > 0 {
			if idx == len(tokens)-1 {
				return res
			}
			second, ok = parsePart(tokens[idx+1:])
			if !ok {
				return res
			}
		}
		res.Qualifier = "FROM"
	default:
		rest := tokens
		if q, found := qualifierAliases[tokens[0]]; found {
			if len(tokens) < 2 {
				return res
			}
			res.Qualifier = q
			rest = tokens[1:]
		}
		first, ok = parsePart(rest)
		if !ok {
			return res
		}
	}

	if first.impossible || (second != nil && second.impossible) {
		res.Warnings = append(res.Warnings, WarnImpossible)
		if n.Strict {
			return res
		}
	}

	res.Valid = true
	res.Display = n.display(res.Qualifier, first, second)
	if !first.bc {
		res.Sortable = fmt.Sprintf("%04d-%02d-%02d", first.year, first.month, first.day)
	}

	if n.Future != FutureAccept && n.isFuture(first) {
		res.Warnings = append(res.Warnings, WarnFuture)
	}
	return res
}

// Impossible indica que la data no existeix al calendari (p.ex. 31 FEB).
func (r Result) Impossible() bool {
	for _, w := range r.Warnings {
		if w == WarnImpossible {
			return true
		}
	}
	return false
}

// NormalizeSortable és una drecera per als camps *_tr.
func (n *Normalizer) NormalizeSortable(raw string) (string, string) {
	r := n.Normalize(raw)
	return r.Display, r.Sortable
}

func (n *Normalizer) display(qualifier string, first, second *part) string {
	switch qualifier {
	case "BET":
		return "BET " + n.format(first) + " AND " + n.format(second)
	case "FROM":
		if second != nil {
			return "FROM " + n.format(first) + " TO " + n.format(second)
		}
		return "FROM " + n.format(first)
	case "":
		return n.format(first)
	default:
		return qualifier + " " + n.format(first)
	}
}

func (n *Normalizer) format(p *part) string {
	var s string
	switch n.Months {
	case MonthNumeric:
		switch {
		case p.month == 0:
			s = fmt.Sprintf("%04d", p.year)
		case p.day == 0:
			s = fmt.Sprintf("%02d/%04d", p.month, p.year)
		default:
			s = fmt.Sprintf("%02d/%02d/%04d", p.day, p.month, p.year)
		}
	default:
		names := monthAbbr
		if n.Months == MonthFull {
			names = monthFull
		}
		switch {
		case p.month == 0:
			s = strconv.Itoa(p.year)
		case p.day == 0:
			s = names[p.month] + " " + strconv.Itoa(p.year)
		default:
			s = strconv.Itoa(p.day) + " " + names[p.month] + " " + strconv.Itoa(p.year)
		}
	}
	if p.bc {
		s += " B.C."
	}
	return s
}

func (n *Normalizer) isFuture(p *part) bool {
	if p.bc {
		return false
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	t := now()
	switch {
	case p.year != t.Year():
		return p.year > t.Year()
	case p.month == 0:
		return false
	case p.month != int(t.Month()):
		return p.month > int(t.Month())
	case p.day == 0:
		return false
	default:
		return p.day > t.Day()
	}
}

func parsePart(tokens []string) (*part, bool) {
	if len(tokens) == 0 {
		return nil, false
	}
	if len(tokens) == 1 {
		if m := isoDate.FindStringSubmatch(tokens[0]); m != nil {
			y, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			if mo < 1 || mo > 12 || d < 1 {
				return nil, false
			}
			p := &part{year: y, month: mo, day: d}
			p.impossible = !calendarOK(y, mo, d)
			return p, true
		}
	}
	norm := make([]string, len(tokens))
	for i, t := range tokens {
		if alias, ok := monthAliases[t]; ok {
			t = alias
		}
		norm[i] = t
	}

	d, err := gedcom.ParseDate(strings.Join(norm, " "))
	if err != nil || d.IsPhrase || d.Year == 0 {
		return nil, false
	}
	p := &part{year: int(d.Year), month: int(d.Month), day: int(d.Day), bc: d.IsBC}
	if p.month < 0 || p.month > 12 || p.day < 0 || p.day > 31 || (p.day > 0 && p.month == 0) {
		return nil, false
	}
	if p.day > 0 {
		p.impossible = !calendarOK(p.year, p.month, p.day)
	}
	return p, true
}

func calendarOK(y, m, d int) bool {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return t.Year() == y && int(t.Month()) == m && t.Day() == d
}

func indexOf(tokens []string, want string) int {
	for i, t := range tokens {
		if t == want {
			return i
		}
	}
	return -1
}
