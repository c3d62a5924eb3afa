package prefetch

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes rows in the CSV format spec.md §4.3 specifies:
// (ref_id, num_intersections, containment_query_ref, containment_ref_query,
// jaccard), header included, in the order given (callers pass the
// already-sorted output of Engine.Run).
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"ref_id", "num_intersections", "containment_query_ref", "containment_ref_query", "jaccard"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.RefID),
			strconv.Itoa(r.NumIntersections),
			strconv.FormatFloat(r.ContainmentQueryRef, 'g', -1, 64),
			strconv.FormatFloat(r.ContainmentRefQuery, 'g', -1, 64),
			strconv.FormatFloat(r.Jaccard, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return cw.Error()
}
