package occupation

import (
	"strings"
	"testing"
)

const sampleTable = `Occupation,class,skilled
Costermonger,w,y
Clerk,m,n
Labourer,w,
1234,w,y
---,,y
`

func loadSample(t *testing.T) Table {
	t.Helper()
	table, err := ReadCSV(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	return table
}

func TestLoadRejectsNonAlphabeticRows(t *testing.T) {
	table := loadSample(t)
	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table))
	}
	for _, bad := range []string{"1234", "---"} {
		if _, ok := table[bad]; ok {
			t.Errorf("row %q should have been rejected", bad)
		}
	}
}

func TestClassCodes(t *testing.T) {
	table := loadSample(t)

	cost := table["Costermonger"]
	if cost == nil {
		t.Fatal("Costermonger missing from table")
	}
	if cost.WorkingClass == nil || !*cost.WorkingClass {
		t.Error("Costermonger should be working class")
	}
	if cost.Skilled == nil || !*cost.Skilled {
		t.Error("Costermonger should be skilled")
	}

	clerk := table["Clerk"]
	if clerk.WorkingClass == nil || *clerk.WorkingClass {
		t.Error("Clerk class code m should read as not working class")
	}
	if clerk.Skilled == nil || *clerk.Skilled {
		t.Error("Clerk skill code n should read as unskilled")
	}

	lab := table["Labourer"]
	if lab.Skilled != nil {
		t.Error("empty skill code should stay unknown")
	}
}

func TestClassifyHit(t *testing.T) {
	table := loadSample(t)
	got := table.Classify("costermonger")
	if got.Occupation == nil {
		t.Fatal("expected table hit for costermonger")
	}
	if got.Occupation.Name != "Costermonger" {
		t.Errorf("resolved name = %q, want Costermonger", got.Occupation.Name)
	}
}

func TestClassifyMissKeepsNormalizedString(t *testing.T) {
	table := loadSample(t)
	got := table.Classify("mud  lark")
	if got.Occupation != nil {
		t.Fatal("unexpected table hit")
	}
	if got.Raw != "Mud Lark" {
		t.Errorf("raw fallback = %q, want Mud Lark", got.Raw)
	}
}

func TestClassifyEmpty(t *testing.T) {
	table := loadSample(t)
	if got := table.Classify("   "); !got.Empty() {
		t.Errorf("empty input should resolve to nothing, got %+v", got)
	}
}

func TestMissingOccupationColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("name,class\nfoo,w\n"))
	if err == nil {
		t.Fatal("expected error for table without Occupation column")
	}
}
