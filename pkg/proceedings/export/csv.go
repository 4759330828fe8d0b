package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/oldbailey/proceedings/pkg/proceedings/stats"
)

// WriteOccupationCSV writes an Occupation,Occurrences tally in
// most-common order. Empty names and the "No Occupation" placeholder
// are dropped.
func WriteOccupationCSV(w io.Writer, counts map[string]int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Occupation", "Occurrences"}); err != nil {
		return err
	}
	for _, row := range stats.MostCommonStrings(counts) {
		if row.Name == "" || row.Name == "No Occupation" {
			continue
		}
		if err := cw.Write([]string{row.Name, strconv.Itoa(row.N)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
