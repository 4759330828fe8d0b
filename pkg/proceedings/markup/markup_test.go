package markup

import (
	"strings"
	"testing"
)

const sample = `
<div1 type="trialAccount" id="t18450505-1">
  <interp inst="t18450505-1" type="date" value="18450505"></interp>
  <p>
    <persName id="d1" type="defendantName">JOHN
       SMITH
      <interp inst="d1" type="gender" value="male"></interp>
    </persName>
  </p>
  <rs id="o1" type="offenceDescription">
    <interp inst="o1" type="offenceCategory" value="theft"></interp>
    stealing a watch
  </rs>
</div1>`

func parseSample(t *testing.T) *Node {
	t.Helper()
	root, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return root
}

func TestFindByTagAndAttr(t *testing.T) {
	root := parseSample(t)

	trials := root.Find("div1", map[string]string{"type": "trialAccount"})
	if len(trials) != 1 {
		t.Fatalf("expected 1 trial node, got %d", len(trials))
	}

	persons := trials[0].Find("persname", map[string]string{"type": "defendantName"})
	if len(persons) != 1 {
		t.Fatalf("expected 1 defendant, got %d", len(persons))
	}
	if id, ok := persons[0].Attr("id"); !ok || id != "d1" {
		t.Errorf("defendant id = %q (present=%v), want d1", id, ok)
	}
}

func TestFindScopedByInst(t *testing.T) {
	root := parseSample(t)
	trial := root.Find("div1", nil)[0]

	interps := trial.Find("interp", map[string]string{"inst": "o1", "type": "offenceCategory"})
	if len(interps) != 1 {
		t.Fatalf("expected 1 offence category interp, got %d", len(interps))
	}
	if v, _ := interps[0].Attr("value"); v != "theft" {
		t.Errorf("offence category = %q, want theft", v)
	}
}

func TestFindFirstMissing(t *testing.T) {
	root := parseSample(t)
	if n := root.FindFirst("join", nil); n != nil {
		t.Errorf("expected nil for absent tag, got %v", n.Tag())
	}
}

func TestFindShallow(t *testing.T) {
	root := parseSample(t)
	trial := root.Find("div1", nil)[0]

	// The date interp is a direct child; the gender interp is nested
	// inside a persName and must not show up in a shallow search.
	direct := trial.FindShallow("interp", map[string]string{"type": "date"})
	if len(direct) != 1 {
		t.Fatalf("expected 1 shallow date interp, got %d", len(direct))
	}
	if v, _ := direct[0].Attr("value"); v != "18450505" {
		t.Errorf("date value = %q, want 18450505", v)
	}
	if got := trial.FindShallow("interp", map[string]string{"type": "gender"}); len(got) != 0 {
		t.Errorf("gender interp should not be a direct child, got %d", len(got))
	}
}

func TestText(t *testing.T) {
	root := parseSample(t)
	person := root.FindFirst("persname", nil)
	if person == nil {
		t.Fatal("persName not found")
	}
	joined := strings.Join(strings.Fields(person.Text()), " ")
	if joined != "JOHN SMITH" {
		t.Errorf("person text = %q, want JOHN SMITH", joined)
	}
}

func TestAttrCaseInsensitiveName(t *testing.T) {
	root := parseSample(t)
	trial := root.Find("div1", nil)[0]
	if id, ok := trial.Attr("ID"); !ok || id != "t18450505-1" {
		t.Errorf("Attr(ID) = %q (present=%v), want t18450505-1", id, ok)
	}
}
