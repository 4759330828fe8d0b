package trial

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/oldbailey/proceedings/pkg/proceedings/internalerr"
)

// outcome is the decision for one reference kind within a charge join
// group, given how many IDs resolved directly and how many entities of
// that kind the whole record defines.
type outcome int

const (
	// useResolved keeps the directly resolved references.
	useResolved outcome = iota
	// substituteSingleton repairs a zero-resolution reference with the
	// record's only entity of that kind and flags the record corrected.
	substituteSingleton
	// dropCharge abandons this charge; the record survives if any other
	// charge reconciles.
	dropCharge
)

// decide is the reconciliation decision table. Zero direct resolutions
// are repairable only when exactly one candidate exists record-wide.
func decide(resolved, global int) outcome {
	switch {
	case resolved > 0:
		return useResolved
	case global == 1:
		return substituteSingleton
	default:
		return dropCharge
	}
}

// pick returns the values of known whose keys appear in group, in group
// order.
func pick[E any](group []string, known map[string]E) []E {
	var out []E
	for _, id := range group {
		if e, ok := known[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func only[E any](known map[string]E) E {
	for _, e := range known {
		return e
	}
	var zero E
	return zero
}

// reconcileCharges turns the criminalCharge join groups into Charges
// against the extracted entity maps. Per group each of the three
// reference kinds goes through the decision table; a charge is emitted
// only when all three succeed.
//
// Two contract violations are fatal to the record: a group naming more
// than one verdict, and group IDs that resolved to no kind at all
// without a substitution to account for them. Either means the
// extractor and the join disagree about what the record contains.
func reconcileCharges(trialID string, groups [][]string,
	defendants map[string]*Person, offences map[string]*Offence, verdicts map[string]*Verdict,
	log *zap.Logger) ([]Charge, bool, error) {

	var charges []Charge
	corrected := false

groupLoop:
	for _, group := range groups {
		chargeVerdicts := pick(group, verdicts)
		chargeDefendants := pick(group, defendants)
		chargeOffences := pick(group, offences)
		resolved := len(chargeVerdicts) + len(chargeDefendants) + len(chargeOffences)
		substituted := 0

		switch decide(len(chargeVerdicts), len(verdicts)) {
		case substituteSingleton:
			chargeVerdicts = []*Verdict{only(verdicts)}
			corrected = true
			substituted++
			log.Info("charge missing verdict, substituting the only one",
				zap.String("trial", trialID), zap.Strings("group", group))
		case dropCharge:
			log.Warn("charge has no valid verdict, dropping",
				zap.String("trial", trialID), zap.Strings("group", group))
			continue groupLoop
		}
		if len(chargeVerdicts) != 1 {
			return nil, false, fmt.Errorf("%w: trial %s group %v names %d verdicts",
				internalerr.ErrChargeContract, trialID, group, len(chargeVerdicts))
		}

		switch decide(len(chargeDefendants), len(defendants)) {
		case substituteSingleton:
			chargeDefendants = []*Person{only(defendants)}
			corrected = true
			substituted++
			log.Info("charge missing defendant, substituting the only one",
				zap.String("trial", trialID), zap.Strings("group", group))
		case dropCharge:
			log.Warn("charge has no valid defendant, dropping",
				zap.String("trial", trialID), zap.Strings("group", group))
			continue groupLoop
		}

		switch decide(len(chargeOffences), len(offences)) {
		case substituteSingleton:
			chargeOffences = []*Offence{only(offences)}
			corrected = true
			substituted++
			log.Info("charge missing offence, substituting the only one",
				zap.String("trial", trialID), zap.Strings("group", group))
		case dropCharge:
			log.Warn("charge has no valid offence, dropping",
				zap.String("trial", trialID), zap.Strings("group", group))
			continue groupLoop
		}

		// Every group ID must have resolved to one of the three kinds;
		// each substitution accounts for at most one dangling ID (the
		// reference the join named but the record never defined).
		if unknown := len(group) - resolved; unknown > substituted {
			return nil, false, fmt.Errorf("%w: trial %s group %v has %d unclassified IDs",
				internalerr.ErrChargeContract, trialID, group, unknown)
		}

		charges = append(charges, Charge{
			Defendants: chargeDefendants,
			Offences:   chargeOffences,
			Verdict:    chargeVerdicts[0],
		})
	}
	return charges, corrected, nil
}
