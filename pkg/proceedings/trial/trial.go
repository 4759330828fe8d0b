// Package trial turns one session-paper trial record into a relational
// model: people, offences, verdicts and punishments keyed by element ID,
// joined into charges. The source markup is frequently malformed, so
// extraction is best-effort: recoverable damage is corrected and
// flagged, ambiguous damage discards the charge or the record, and
// structural damage surfaces as an error that aborts the whole file.
package trial

import (
	"time"

	"github.com/oldbailey/proceedings/pkg/proceedings/occupation"
)

// Person is a defendant or victim named in the record.
type Person struct {
	ID     string
	Name   string
	Gender string // normalized, empty when the record gives none
	Age    *int   // nil when absent or unparsable
	Occ    occupation.Resolved
}

// Offence is one offence description, with the victims it was
// committed against. Victims are shared references into the record's
// victim map, not owned copies.
type Offence struct {
	ID          string
	Category    string
	Subcategory string
	Description string
	Victims     []*Person
}

// Verdict is one verdict description. Category is an open string
// domain: guilty, notGuilty, miscVerdict and others all occur.
type Verdict struct {
	ID          string
	Category    string
	Subcategory string
}

// Punishment is one punishment description with the people it was
// applied to.
type Punishment struct {
	ID          string
	Category    string
	Subcategory string
	Description string
	Defendants  []*Person
}

// Charge is the reconciled fact that some defendants committed some
// offences under exactly one verdict. Charges carry no ID of their own;
// identity is positional within the record.
type Charge struct {
	Defendants []*Person
	Offences   []*Offence
	Verdict    *Verdict
}

// TrialData is the aggregate root for one record. It is built in a
// single pass and immutable afterwards; a record is either fully valid
// or absent entirely.
type TrialData struct {
	Date      time.Time
	ID        string
	Corrected bool

	Defendants  map[string]*Person
	Victims     map[string]*Person
	Offences    map[string]*Offence
	Verdicts    map[string]*Verdict
	Punishments map[string]*Punishment
	Charges     []Charge
}

func (p *Person) equal(o *Person) bool {
	if p.ID != o.ID || p.Name != o.Name || p.Gender != o.Gender {
		return false
	}
	if (p.Age == nil) != (o.Age == nil) {
		return false
	}
	if p.Age != nil && *p.Age != *o.Age {
		return false
	}
	return p.Occ == o.Occ
}

func (f *Offence) equal(o *Offence) bool {
	return f.ID == o.ID && f.Category == o.Category &&
		f.Subcategory == o.Subcategory && f.Description == o.Description &&
		samePeople(f.Victims, o.Victims)
}

func (v *Verdict) equal(o *Verdict) bool {
	return *v == *o
}

func (p *Punishment) equal(o *Punishment) bool {
	return p.ID == o.ID && p.Category == o.Category &&
		p.Subcategory == o.Subcategory && p.Description == o.Description &&
		samePeople(p.Defendants, o.Defendants)
}

func samePeople(a, b []*Person) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}
