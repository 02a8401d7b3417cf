package reader

import "testing"

func TestReadCSV(t *testing.T) {
	content := "Department,Category,Budget,Actual\n" +
		"Marketing,Ads,100000,115000\n" +
		"IT,Cloud,50000\n" // ragged row
	path := writeDoc(t, "budget.csv", content)

	grid, err := ReadCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(grid.Rows) != 3 {
		t.Fatalf("rows = %v", grid.Rows)
	}
	if grid.Rows[1][3] != "115000" {
		t.Errorf("row = %v", grid.Rows[1])
	}
	if len(grid.Rows[2]) != 4 || grid.Rows[2][3] != "" {
		t.Errorf("ragged row not padded: %v", grid.Rows[2])
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	if _, err := ReadCSV("/nope/missing.csv"); err == nil {
		t.Error("missing file should fail")
	}
}
