package gather

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes results in selection order per the CSV format spec.md
// §4.4 specifies: (ref_id, num_overlap, num_overlap_orig, name, md5,
// f_unique_to_query), header included.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"ref_id", "num_overlap", "num_overlap_orig", "name", "md5", "f_unique_to_query"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			strconv.Itoa(r.RefID),
			strconv.Itoa(r.NumOverlap),
			strconv.Itoa(r.NumOverlapOrig),
			r.Name,
			r.MD5,
			strconv.FormatFloat(r.FracUniqueQuery, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return cw.Error()
}
