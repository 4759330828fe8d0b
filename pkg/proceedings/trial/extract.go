package trial

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/oldbailey/proceedings/pkg/proceedings/internalerr"
	"github.com/oldbailey/proceedings/pkg/proceedings/markup"
	"github.com/oldbailey/proceedings/pkg/proceedings/occupation"
	"github.com/oldbailey/proceedings/pkg/proceedings/text"
)

// interpValue finds the value of the interp element classifying element
// id within the record, e.g. the gender of a person or the category of
// an offence. Returns false when the record carries none.
func interpValue(record *markup.Node, id, kind string) (string, bool) {
	n := record.FindFirst("interp", map[string]string{"inst": id, "type": kind})
	if n == nil {
		return "", false
	}
	return n.Attr("value")
}

func requireAttr(n *markup.Node, name, what string) (string, error) {
	v, ok := n.Attr(name)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s has no %s", internalerr.ErrMissingAttr, what, name)
	}
	return v, nil
}

// joinGroups collects every join element of the given result kind and
// splits its targets attribute into an ID group.
func joinGroups(record *markup.Node, result string) [][]string {
	var groups [][]string
	for _, j := range record.Find("join", map[string]string{"result": result}) {
		if targets, ok := j.Attr("targets"); ok {
			groups = append(groups, strings.Fields(targets))
		}
	}
	return groups
}

// extractPersons scans defendant and victim name elements. The same ID
// seen twice with identical fields is an idempotent re-scan; seen twice
// with different fields it poisons the whole record
// (internalerr.ErrConflictingEntity).
func extractPersons(record *markup.Node, trialID string, occ occupation.Table, log *zap.Logger) (persons, defendants, victims map[string]*Person, err error) {
	persons = map[string]*Person{}
	defendants = map[string]*Person{}
	victims = map[string]*Person{}

	for _, role := range []struct {
		kind string
		out  map[string]*Person
	}{
		{"defendantName", defendants},
		{"victimName", victims},
	} {
		for _, p := range record.Find("persname", map[string]string{"type": role.kind}) {
			id, aerr := requireAttr(p, "id", "persName")
			if aerr != nil {
				return nil, nil, nil, aerr
			}

			person := &Person{
				ID:   id,
				Name: text.NormalizeTitle(p.Text()),
			}
			if g, ok := interpValue(record, id, "gender"); ok {
				person.Gender = text.NormalizeTitle(g)
			}
			if a, ok := interpValue(record, id, "age"); ok {
				n, perr := strconv.Atoi(text.Normalize(a))
				if perr != nil || n < 0 {
					log.Warn("person has a non-numeric age",
						zap.String("trial", trialID),
						zap.String("person", id),
						zap.String("age", a))
				} else {
					person.Age = &n
				}
			}
			if o, ok := interpValue(record, id, "occupation"); ok {
				person.Occ = occ.Classify(o)
			}

			if prev, ok := persons[id]; ok && !prev.equal(person) {
				return nil, nil, nil, fmt.Errorf("%w: person %s", internalerr.ErrConflictingEntity, id)
			}
			persons[id] = person
			role.out[id] = persons[id]
		}
	}
	return persons, defendants, victims, nil
}

// extractOffences scans offence descriptions and resolves their victims
// through the offenceVictim join lists, filtered to victim-role IDs.
func extractOffences(record *markup.Node, victims map[string]*Person) (map[string]*Offence, error) {
	joins := joinGroups(record, "offenceVictim")
	offences := map[string]*Offence{}

	for _, o := range record.Find("rs", map[string]string{"type": "offenceDescription"}) {
		id, err := requireAttr(o, "id", "offence")
		if err != nil {
			return nil, err
		}
		category, ok := interpValue(record, id, "offenceCategory")
		if !ok {
			return nil, fmt.Errorf("%w: offence %s has no category", internalerr.ErrMissingAttr, id)
		}
		subcategory, _ := interpValue(record, id, "offenceSubcategory")

		offence := &Offence{
			ID:          id,
			Category:    category,
			Subcategory: subcategory,
			Description: text.NormalizeTitle(o.Text()),
			Victims:     joinedPeople(joins, id, victims),
		}
		if prev, ok := offences[id]; ok && !prev.equal(offence) {
			return nil, fmt.Errorf("%w: offence %s", internalerr.ErrConflictingEntity, id)
		}
		offences[id] = offence
	}
	return offences, nil
}

func extractVerdicts(record *markup.Node) (map[string]*Verdict, error) {
	verdicts := map[string]*Verdict{}
	for _, v := range record.Find("rs", map[string]string{"type": "verdictDescription"}) {
		id, err := requireAttr(v, "id", "verdict")
		if err != nil {
			return nil, err
		}
		category, ok := interpValue(record, id, "verdictCategory")
		if !ok {
			return nil, fmt.Errorf("%w: verdict %s has no category", internalerr.ErrMissingAttr, id)
		}
		subcategory, _ := interpValue(record, id, "verdictSubcategory")

		verdict := &Verdict{ID: id, Category: category, Subcategory: subcategory}
		if prev, ok := verdicts[id]; ok && !prev.equal(verdict) {
			return nil, fmt.Errorf("%w: verdict %s", internalerr.ErrConflictingEntity, id)
		}
		verdicts[id] = verdict
	}
	return verdicts, nil
}

// extractPunishments resolves punished people through the
// defendantPunishment join lists. Any known person counts, matching the
// join's payload rather than the defendant role alone.
func extractPunishments(record *markup.Node, persons map[string]*Person) (map[string]*Punishment, error) {
	joins := joinGroups(record, "defendantPunishment")
	punishments := map[string]*Punishment{}

	for _, p := range record.Find("rs", map[string]string{"type": "punishmentDescription"}) {
		id, err := requireAttr(p, "id", "punishment")
		if err != nil {
			return nil, err
		}
		category, ok := interpValue(record, id, "punishmentCategory")
		if !ok {
			return nil, fmt.Errorf("%w: punishment %s has no category", internalerr.ErrMissingAttr, id)
		}
		subcategory, _ := interpValue(record, id, "punishmentSubcategory")

		punishment := &Punishment{
			ID:          id,
			Category:    category,
			Subcategory: subcategory,
			Description: text.NormalizeTitle(p.Text()),
			Defendants:  joinedPeople(joins, id, persons),
		}
		if prev, ok := punishments[id]; ok && !prev.equal(punishment) {
			return nil, fmt.Errorf("%w: punishment %s", internalerr.ErrConflictingEntity, id)
		}
		punishments[id] = punishment
	}
	return punishments, nil
}

// joinedPeople resolves the join lists for one entity: every group that
// names the entity's own ID contributes each of its other IDs that is a
// known person, in group order. A person named by several groups counts
// once. A group contributing nobody is valid.
func joinedPeople(groups [][]string, id string, known map[string]*Person) []*Person {
	var out []*Person
	seen := map[string]bool{}
	for _, group := range groups {
		if !contains(group, id) {
			continue
		}
		for _, other := range group {
			if p, ok := known[other]; ok && !seen[other] {
				seen[other] = true
				out = append(out, p)
			}
		}
	}
	return out
}

func contains(group []string, id string) bool {
	for _, g := range group {
		if g == id {
			return true
		}
	}
	return false
}
