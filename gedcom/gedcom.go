// Package gedcom renders a resolved family graph as a GEDCOM 5.5.1 document.
package gedcom

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kindredgraph/kindred/people"
)

// noteWidth is the line width for obituary text continuation lines.
const noteWidth = 80

// Render writes the persons as INDI records followed by FAM records. Family
// units are grouped by (father, mother) pair; spouse links with no shared
// children get their own childless FAM record.
func Render(w io.Writer, persons []*people.Person, now time.Time) error {
	bw := &errWriter{w: w}

	bw.printf("0 HEAD\n")
	bw.printf("1 SOUR Kindred\n")
	bw.printf("2 VERS 1.0\n")
	bw.printf("1 DATE %s\n", strings.ToUpper(now.Format("02 Jan 2006")))
	bw.printf("1 GEDC\n")
	bw.printf("2 VERS 5.5.1\n")
	bw.printf("2 FORM LINEAGE-LINKED\n")
	bw.printf("1 CHAR UTF-8\n")
	bw.printf("1 SUBM @SUBM1@\n")
	bw.printf("0 @SUBM1@ SUBM\n")
	bw.printf("1 NAME Kindred\n\n")

	byID := make(map[string]*people.Person, len(persons))
	for _, p := range persons {
		byID[p.ID] = p
	}

	for _, p := range persons {
		renderIndividual(bw, p, byID)
	}
	renderFamilies(bw, persons, byID)

	bw.printf("0 TRLR\n")
	return bw.err
}

func renderIndividual(bw *errWriter, p *people.Person, byID map[string]*people.Person) {
	bw.printf("0 @%s@ INDI\n", p.ID)
	bw.printf("1 NAME %s /%s/\n", p.FirstName, p.LastName)
	if p.Nickname != "" {
		bw.printf("2 NICK %s\n", p.Nickname)
	}
	if p.MaidenName != "" {
		bw.printf("2 _MAIDEN %s\n", p.MaidenName)
	}
	if p.BirthDate != "" {
		bw.printf("1 BIRT\n2 DATE %s\n", p.BirthDate)
	}
	if p.DeathDate != "" {
		bw.printf("1 DEAT\n2 DATE %s\n", p.DeathDate)
	}
	bw.printf("1 SEX %s\n", inferSex(p, byID))
	if p.URL != "" {
		bw.printf("1 NOTE %s\n", p.URL)
	}
	if p.ObituaryText != "" {
		bw.printf("1 NOTE\n")
		text := strings.ReplaceAll(p.ObituaryText, "\n", " ")
		for start := 0; start < len(text); start += noteWidth {
			end := start + noteWidth
			if end > len(text) {
				end = len(text)
			}
			bw.printf("2 CONT %s\n", text[start:end])
		}
	}
	bw.printf("\n")
}

// inferSex derives sex from the parent slot the person occupies on any
// child: a father slot means M, a mother slot means F, otherwise unknown.
func inferSex(p *people.Person, byID map[string]*people.Person) string {
	for _, other := range byID {
		if other.FatherID == p.ID {
			return "M"
		}
		if other.MotherID == p.ID {
			return "F"
		}
	}
	return "U"
}

// famKey identifies a family unit by its parent pair.
type famKey struct{ father, mother string }

func renderFamilies(bw *errWriter, persons []*people.Person, byID map[string]*people.Person) {
	children := make(map[famKey][]string)
	var order []famKey
	addFam := func(k famKey) {
		if _, ok := children[k]; !ok {
			order = append(order, k)
			children[k] = nil
		}
	}

	for _, p := range persons {
		if p.FatherID != "" || p.MotherID != "" {
			k := famKey{father: p.FatherID, mother: p.MotherID}
			addFam(k)
			children[k] = append(children[k], p.ID)
		}
	}

	// Childless spouse pairs still form a family record. Deduplicate the
	// symmetric link by only treating the lower id as the husband side.
	for _, p := range persons {
		if p.SpouseID == "" || p.ID > p.SpouseID {
			continue
		}
		k := famKey{father: p.ID, mother: p.SpouseID}
		alt := famKey{father: p.SpouseID, mother: p.ID}
		if _, ok := children[k]; ok {
			continue
		}
		if _, ok := children[alt]; ok {
			continue
		}
		addFam(k)
	}

	fam := 0
	for _, k := range order {
		fam++
		bw.printf("0 @F%d@ FAM\n", fam)
		if k.father != "" {
			bw.printf("1 %s @%s@\n", spouseTag(k.father, byID, "HUSB"), k.father)
		}
		if k.mother != "" {
			bw.printf("1 %s @%s@\n", spouseTag(k.mother, byID, "WIFE"), k.mother)
		}
		for _, c := range children[k] {
			bw.printf("1 CHIL @%s@\n", c)
		}
		bw.printf("\n")
	}
}

// spouseTag picks HUSB or WIFE from inferred sex, falling back to the slot
// the id was grouped under.
func spouseTag(id string, byID map[string]*people.Person, fallback string) string {
	p, ok := byID[id]
	if !ok {
		return fallback
	}
	switch inferSex(p, byID) {
	case "M":
		return "HUSB"
	case "F":
		return "WIFE"
	}
	return fallback
}

// errWriter folds write errors into one sticky error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
