package trial

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oldbailey/proceedings/pkg/proceedings/internalerr"
	"github.com/oldbailey/proceedings/pkg/proceedings/markup"
	"github.com/oldbailey/proceedings/pkg/proceedings/occupation"
)

// dateLayout is the literal YYYYMMDD form of the record-level date.
const dateLayout = "20060102"

// Parse extracts one trial record into a TrialData.
//
// A (nil, nil) return means the record was discarded on purpose: a
// duplicate ID with conflicting fields, or no charge that survived
// reconciliation. Both are logged and leave the containing file's other
// records untouched. A non-nil error is a structural failure; callers
// treat it as fatal for the whole file.
func Parse(record *markup.Node, occ occupation.Table, log *zap.Logger) (*TrialData, error) {
	if log == nil {
		log = zap.NewNop()
	}

	trialID, err := requireAttr(record, "id", "trial record")
	if err != nil {
		return nil, err
	}

	dateNode := record.FindShallow("interp", map[string]string{"type": "date"})
	if len(dateNode) == 0 {
		return nil, fmt.Errorf("%w: trial %s has no date", internalerr.ErrMissingAttr, trialID)
	}
	dateVal, err := requireAttr(dateNode[0], "value", "trial date")
	if err != nil {
		return nil, err
	}
	date, err := time.Parse(dateLayout, dateVal)
	if err != nil {
		return nil, fmt.Errorf("trial %s has malformed date %q: %w", trialID, dateVal, err)
	}

	persons, defendants, victims, err := extractPersons(record, trialID, occ, log)
	if err != nil {
		return discardOnConflict(trialID, err, log)
	}
	offences, err := extractOffences(record, victims)
	if err != nil {
		return discardOnConflict(trialID, err, log)
	}
	verdicts, err := extractVerdicts(record)
	if err != nil {
		return discardOnConflict(trialID, err, log)
	}
	punishments, err := extractPunishments(record, persons)
	if err != nil {
		return discardOnConflict(trialID, err, log)
	}

	charges, corrected, err := reconcileCharges(trialID,
		joinGroups(record, "criminalCharge"), defendants, offences, verdicts, log)
	if err != nil {
		return nil, err
	}
	if len(charges) == 0 {
		log.Warn("trial has no valid charges, skipping record",
			zap.String("trial", trialID))
		return nil, nil
	}

	return &TrialData{
		Date:      date,
		ID:        trialID,
		Corrected: corrected,

		Defendants:  defendants,
		Victims:     victims,
		Offences:    offences,
		Verdicts:    verdicts,
		Punishments: punishments,
		Charges:     charges,
	}, nil
}

// discardOnConflict downgrades a conflicting-duplicate extraction
// failure to a skipped record; anything else stays fatal.
func discardOnConflict(trialID string, err error, log *zap.Logger) (*TrialData, error) {
	if errors.Is(err, internalerr.ErrConflictingEntity) {
		log.Warn("conflicting duplicate entity, skipping record",
			zap.String("trial", trialID), zap.Error(err))
		return nil, nil
	}
	return nil, err
}
