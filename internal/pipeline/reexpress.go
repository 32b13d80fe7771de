package pipeline

import (
	"strconv"

	"passclean/pkg/records"
)

// Reexpress maps a cleaned table back onto the raw input schema so it can be
// cleaned again. Values are rendered as text, the way the CSV parser would
// hand them over. PassengerId, Name and Ticket are synthesized from the row
// position, and Cabin is a placeholder when has_cabin is 1 and nil otherwise.
func Reexpress(cleaned records.Table) records.Table {
	out := records.Table{
		Columns: append([]string(nil), RequiredColumns...),
		Rows:    make([]records.Record, len(cleaned.Rows)),
	}
	back := make(map[string]string, len(Renames))
	for raw, clean := range Renames {
		back[clean] = raw
	}

	for i, r := range cleaned.Rows {
		id := strconv.Itoa(i + 1)
		row := records.Record{
			ColPassengerID: id,
			ColName:        "Passenger " + id,
			ColTicket:      "T" + id,
			ColCabin:       nil,
		}
		for _, c := range OutputColumns {
			if c == OutHasCabin {
				if records.FormatValue(r[c]) == "1" {
					row[ColCabin] = "C" + id
				}
				continue
			}
			if v := r[c]; v != nil {
				row[back[c]] = records.FormatValue(v)
			} else {
				row[back[c]] = nil
			}
		}
		out.Rows[i] = row
	}
	return out
}
