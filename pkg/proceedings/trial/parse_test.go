package trial

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/oldbailey/proceedings/pkg/proceedings/markup"
	"github.com/oldbailey/proceedings/pkg/proceedings/occupation"
)

// record wraps body in a minimal trial record.
func record(body string) string {
	return `<div1 type="trialAccount" id="t18450505-1">` +
		`<interp inst="t18450505-1" type="date" value="18450505"></interp>` +
		body + `</div1>`
}

const defendant = `<p><persName id="def1" type="defendantName">JOHN SMITH` +
	`<interp inst="def1" type="gender" value="male"></interp>` +
	`<interp inst="def1" type="age" value="24"></interp>` +
	`</persName></p>`

const victim = `<p><persName id="vic1" type="victimName">MARY JONES</persName></p>`

const offence = `<rs id="off1" type="offenceDescription">` +
	`<interp inst="off1" type="offenceCategory" value="theft"></interp>` +
	`<interp inst="off1" type="offenceSubcategory" value="grandLarceny"></interp>` +
	`stealing a watch</rs>` +
	`<join result="offenceVictim" targets="off1 vic1"></join>`

const guiltyVerdict = `<rs id="ver1" type="verdictDescription">` +
	`<interp inst="ver1" type="verdictCategory" value="guilty"></interp></rs>`

const secondVerdict = `<rs id="ver2" type="verdictDescription">` +
	`<interp inst="ver2" type="verdictCategory" value="notGuilty"></interp></rs>`

func parseRecord(t *testing.T, doc string) (*TrialData, error) {
	t.Helper()
	root, err := markup.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("markup parse failed: %v", err)
	}
	records := root.Find("div1", map[string]string{"type": "trialAccount"})
	if len(records) != 1 {
		t.Fatalf("expected 1 trial record in fixture, got %d", len(records))
	}
	return Parse(records[0], occupation.Table{}, zap.NewNop())
}

func TestFullyLinkedCharge(t *testing.T) {
	doc := record(defendant + victim + offence + guiltyVerdict +
		`<join result="criminalCharge" targets="def1 off1 ver1"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if td == nil {
		t.Fatal("expected a record, got nil")
	}
	if td.Corrected {
		t.Error("fully linked record should not be corrected")
	}
	if td.ID != "t18450505-1" {
		t.Errorf("trial id = %q", td.ID)
	}
	if got := td.Date.Format("20060102"); got != "18450505" {
		t.Errorf("date = %s, want 18450505", got)
	}
	if len(td.Charges) != 1 {
		t.Fatalf("expected 1 charge, got %d", len(td.Charges))
	}
	ch := td.Charges[0]
	if len(ch.Defendants) != 1 || ch.Defendants[0].ID != "def1" {
		t.Errorf("charge defendants = %+v", ch.Defendants)
	}
	if len(ch.Offences) != 1 || ch.Offences[0].ID != "off1" {
		t.Errorf("charge offences = %+v", ch.Offences)
	}
	if ch.Verdict == nil || ch.Verdict.Category != "guilty" {
		t.Errorf("charge verdict = %+v", ch.Verdict)
	}
}

func TestOmittedVerdictCorrectedWhenUnambiguous(t *testing.T) {
	doc := record(defendant + victim + offence + guiltyVerdict +
		`<join result="criminalCharge" targets="def1 off1"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if td == nil {
		t.Fatal("record with a repairable charge should survive")
	}
	if !td.Corrected {
		t.Error("substituted verdict must set the corrected flag")
	}
	if len(td.Charges) != 1 || td.Charges[0].Verdict.ID != "ver1" {
		t.Fatalf("charge should reference ver1, got %+v", td.Charges)
	}
}

func TestDanglingVerdictIDCorrected(t *testing.T) {
	// The join names a verdict the record never defines; with a single
	// verdict overall the reference is repaired.
	doc := record(defendant + victim + offence + guiltyVerdict +
		`<join result="criminalCharge" targets="def1 off1 verX"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if td == nil || !td.Corrected {
		t.Fatalf("dangling verdict reference should be corrected, got %+v", td)
	}
	if len(td.Charges) != 1 || td.Charges[0].Verdict.ID != "ver1" {
		t.Fatalf("charge should reference ver1, got %+v", td.Charges)
	}
}

func TestOmittedVerdictAmbiguousDropsRecord(t *testing.T) {
	doc := record(defendant + victim + offence + guiltyVerdict + secondVerdict +
		`<join result="criminalCharge" targets="def1 off1"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil {
		t.Fatalf("ambiguous correction must not be fatal, got %v", err)
	}
	if td != nil {
		t.Fatalf("record whose only charge dropped should be nil, got %+v", td)
	}
}

func TestDroppedChargeKeepsRemaining(t *testing.T) {
	doc := record(defendant + victim + offence + guiltyVerdict + secondVerdict +
		`<join result="criminalCharge" targets="def1 off1"></join>`+
		`<join result="criminalCharge" targets="def1 off1 ver2"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if td == nil {
		t.Fatal("record with one surviving charge should not be nil")
	}
	if len(td.Charges) != 1 || td.Charges[0].Verdict.ID != "ver2" {
		t.Fatalf("surviving charge should reference ver2, got %+v", td.Charges)
	}
	if td.Corrected {
		t.Error("a dropped charge is not a correction")
	}
}

func TestTwoVerdictsInOneGroupIsFatal(t *testing.T) {
	doc := record(defendant + victim + offence + guiltyVerdict + secondVerdict +
		`<join result="criminalCharge" targets="def1 off1 ver1 ver2"></join>`)
	_, err := parseRecord(t, doc)
	if err == nil {
		t.Fatal("two resolved verdicts in a group must be fatal")
	}
}

func TestUnclassifiedIDIsFatal(t *testing.T) {
	doc := record(defendant + victim + offence + guiltyVerdict +
		`<join result="criminalCharge" targets="def1 off1 ver1 ghost1"></join>`)
	_, err := parseRecord(t, doc)
	if err == nil {
		t.Fatal("an unclassified join ID must be fatal")
	}
}

func TestDuplicateIdenticalPersonAccepted(t *testing.T) {
	doc := record(defendant + defendant + victim + offence + guiltyVerdict +
		`<join result="criminalCharge" targets="def1 off1 ver1"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil {
		t.Fatalf("identical re-scan must be accepted: %v", err)
	}
	if td == nil {
		t.Fatal("identical duplicate should not discard the record")
	}
}

func TestDuplicateConflictingPersonDiscardsRecord(t *testing.T) {
	conflicting := `<p><persName id="def1" type="defendantName">JAMES BROWN</persName></p>`
	doc := record(defendant + conflicting + victim + offence + guiltyVerdict +
		`<join result="criminalCharge" targets="def1 off1 ver1"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil {
		t.Fatalf("conflicting duplicate should discard the record, not fail the file: %v", err)
	}
	if td != nil {
		t.Fatalf("record with conflicting duplicate should be nil, got %+v", td)
	}
}

func TestNoChargesYieldsNilRecord(t *testing.T) {
	doc := record(defendant + victim + offence + guiltyVerdict)
	td, err := parseRecord(t, doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if td != nil {
		t.Fatalf("record without charges should be nil, got %+v", td)
	}
}

func TestOffenceVictimRoundTrip(t *testing.T) {
	doc := record(defendant + victim + offence + guiltyVerdict +
		`<join result="criminalCharge" targets="def1 off1 ver1"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil || td == nil {
		t.Fatalf("parse failed: td=%v err=%v", td, err)
	}
	off := td.Offences["off1"]
	if off == nil {
		t.Fatal("off1 missing")
	}
	if len(off.Victims) != 1 || off.Victims[0].ID != "vic1" {
		t.Fatalf("off1 victims = %+v, want exactly vic1", off.Victims)
	}
	if off.Victims[0] != td.Victims["vic1"] {
		t.Error("offence victims must reference the record's victim map entries")
	}
	if off.Category != "theft" || off.Subcategory != "grandLarceny" {
		t.Errorf("offence classification = %s/%s", off.Category, off.Subcategory)
	}
}

func TestRepeatedVictimJoinCountsOnce(t *testing.T) {
	// Damaged records sometimes carry the same offenceVictim join
	// twice; the victim must still appear once.
	doc := record(defendant + victim + offence +
		`<join result="offenceVictim" targets="off1 vic1"></join>` +
		guiltyVerdict +
		`<join result="criminalCharge" targets="def1 off1 ver1"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil || td == nil {
		t.Fatalf("parse failed: td=%v err=%v", td, err)
	}
	off := td.Offences["off1"]
	if len(off.Victims) != 1 || off.Victims[0].ID != "vic1" {
		t.Fatalf("victims = %+v, want vic1 exactly once", off.Victims)
	}
}

func TestDefendantJoinNotCountedAsVictim(t *testing.T) {
	// The offenceVictim join also names the defendant; only the
	// victim-role person may end up in the victims list.
	mixedJoin := `<rs id="off1" type="offenceDescription">` +
		`<interp inst="off1" type="offenceCategory" value="theft"></interp>` +
		`stealing a watch</rs>` +
		`<join result="offenceVictim" targets="off1 def1 vic1"></join>`
	doc := record(defendant + victim + mixedJoin + guiltyVerdict +
		`<join result="criminalCharge" targets="def1 off1 ver1"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil || td == nil {
		t.Fatalf("parse failed: td=%v err=%v", td, err)
	}
	off := td.Offences["off1"]
	if len(off.Victims) != 1 || off.Victims[0].ID != "vic1" {
		t.Fatalf("victims = %+v, want vic1 only", off.Victims)
	}
}

func TestUnparsableAgeBecomesAbsent(t *testing.T) {
	aged := `<p><persName id="def1" type="defendantName">JOHN SMITH` +
		`<interp inst="def1" type="age" value="about forty"></interp>` +
		`</persName></p>`
	doc := record(aged + victim + offence + guiltyVerdict +
		`<join result="criminalCharge" targets="def1 off1 ver1"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil || td == nil {
		t.Fatalf("unparsable age must not fail extraction: td=%v err=%v", td, err)
	}
	if td.Defendants["def1"].Age != nil {
		t.Errorf("age should be absent, got %d", *td.Defendants["def1"].Age)
	}
}

func TestPersonFieldsNormalized(t *testing.T) {
	doc := record(defendant + victim + offence + guiltyVerdict +
		`<join result="criminalCharge" targets="def1 off1 ver1"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil || td == nil {
		t.Fatalf("parse failed: td=%v err=%v", td, err)
	}
	d := td.Defendants["def1"]
	if d.Name != "John Smith" {
		t.Errorf("name = %q, want John Smith", d.Name)
	}
	if d.Gender != "Male" {
		t.Errorf("gender = %q, want Male", d.Gender)
	}
	if d.Age == nil || *d.Age != 24 {
		t.Errorf("age = %v, want 24", d.Age)
	}
}

func TestMissingDateIsFatal(t *testing.T) {
	doc := `<div1 type="trialAccount" id="t18450505-1">` + defendant + `</div1>`
	root, err := markup.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("markup parse failed: %v", err)
	}
	rec := root.Find("div1", nil)[0]
	if _, err := Parse(rec, occupation.Table{}, zap.NewNop()); err == nil {
		t.Fatal("missing date must be a structural failure")
	}
}

func TestPunishmentDefendants(t *testing.T) {
	punishment := `<rs id="pun1" type="punishmentDescription">` +
		`<interp inst="pun1" type="punishmentCategory" value="imprison"></interp>` +
		`Confined Six Months</rs>` +
		`<join result="defendantPunishment" targets="def1 pun1"></join>`
	doc := record(defendant + victim + offence + guiltyVerdict + punishment +
		`<join result="criminalCharge" targets="def1 off1 ver1"></join>`)
	td, err := parseRecord(t, doc)
	if err != nil || td == nil {
		t.Fatalf("parse failed: td=%v err=%v", td, err)
	}
	pun := td.Punishments["pun1"]
	if pun == nil {
		t.Fatal("pun1 missing")
	}
	if len(pun.Defendants) != 1 || pun.Defendants[0].ID != "def1" {
		t.Fatalf("punishment defendants = %+v, want def1", pun.Defendants)
	}
	if pun.Description != "Confined Six Months" {
		t.Errorf("description = %q", pun.Description)
	}
}
