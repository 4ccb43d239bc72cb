package tabular

import (
	"strconv"

	"designspace/domain/run"
)

// PointsTable renders plot points with one column per latent dimension.
func PointsTable(points []run.PlotPoint) ([]string, [][]string) {
	dims := 0
	for _, p := range points {
		if len(p.Coords) > dims {
			dims = len(p.Coords)
		}
	}

	headers := []string{"Label", "Type", "Paradigm", "From", "To", "Alpha"}
	for d := 0; d < dims; d++ {
		headers = append(headers, "PC"+strconv.Itoa(d+1))
	}

	rows := make([][]string, len(points))
	for i, p := range points {
		row := []string{p.Label, string(p.Type), string(p.Paradigm), string(p.From), string(p.To), ""}
		if p.Type == run.Interpolated {
			row[5] = formatFloat(p.Alpha)
		}
		for d := 0; d < dims; d++ {
			if d < len(p.Coords) {
				row = append(row, formatFloat(p.Coords[d]))
			} else {
				row = append(row, "")
			}
		}
		rows[i] = row
	}
	return headers, rows
}

// ReconstructionsTable renders reconstructed rows over the given columns.
func ReconstructionsTable(recs []run.Reconstruction, columns []string) ([]string, [][]string) {
	headers := append([]string{"Label", "From", "To", "Alpha", "Repaired"}, columns...)
	rows := make([][]string, len(recs))
	for i, rec := range recs {
		row := []string{
			rec.Label,
			string(rec.From),
			string(rec.To),
			formatFloat(rec.Alpha),
			strconv.FormatBool(rec.Repaired),
		}
		rows[i] = append(row, rec.Row.Strings(columns)...)
	}
	return headers, rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// LoadingsTable renders feature loadings in the given feature order.
func LoadingsTable(loadings map[string][]float64, features []string) ([]string, [][]string) {
	dims := 0
	for _, l := range loadings {
		if len(l) > dims {
			dims = len(l)
		}
	}
	headers := []string{"Feature"}
	for d := 0; d < dims; d++ {
		headers = append(headers, "PC"+strconv.Itoa(d+1))
	}

	rows := make([][]string, 0, len(features))
	for _, f := range features {
		l, ok := loadings[f]
		if !ok {
			continue
		}
		row := []string{f}
		for _, v := range l {
			row = append(row, formatFloat(v))
		}
		rows = append(rows, row)
	}
	return headers, rows
}
