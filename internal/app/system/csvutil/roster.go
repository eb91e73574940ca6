// internal/app/system/csvutil/roster.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"github.com/dalemusser/labportal/internal/app/system/normalize"
)

// Skip reasons reported for rejected roster rows. Rows are checked in
// this order and the first failing check names the reason.
const (
	ReasonMalformed          = "malformed"
	ReasonMissingField       = "missingField"
	ReasonInvalidSubSubgroup = "invalidSubSubgroup"
	ReasonDuplicate          = "duplicate"
)

// Roster upload limits.
const (
	MaxUploadSize = 5 << 20
	MaxRows       = 20000
)

// Required roster columns, matched case-insensitively.
const (
	ColRollNo      = "Roll No"
	ColName        = "Name"
	ColSubSubgroup = "Sub-subgroup"
)

// ErrTooManyRows is returned when a file has more data rows than allowed.
var ErrTooManyRows = apierr.Validation("CSV file has too many rows (max %d)", MaxRows)

// RosterRow is a data row that passed every check.
type RosterRow struct {
	Line        int
	RollNo      string // upper-cased
	Name        string // trimmed, otherwise as imported
	SubSubgroup string // upper-cased
}

// SkippedRow is a data row that was rejected. Row is the trimmed fields
// joined with commas.
type SkippedRow struct {
	Line   int    `json:"line"`
	Row    string `json:"row"`
	Reason string `json:"reason"`
}

// RosterResult splits a file into accepted and skipped rows, both in file
// order.
type RosterResult struct {
	Rows    []RosterRow
	Skipped []SkippedRow
}

// RosterOptions controls ParseRoster.
type RosterOptions struct {
	// ValidSubSubgroups is the set of acceptable sub-subgroups, keyed by
	// the upper-cased identifier.
	ValidSubSubgroups map[string]bool

	// Existing, if set, is called once with every candidate roll number
	// and returns the ones already stored.
	Existing func(rollNos []string) (map[string]bool, error)

	// MaxRows caps the number of data rows. Zero means MaxRows.
	MaxRows int
}

type rawRow struct {
	line   int
	fields []string
	err    bool
}

// ParseRoster reads a roster with a "Roll No,Name,Sub-subgroup" header
// (any order, extra columns ignored). A missing required column fails the
// whole file; bad data rows are skipped individually.
func ParseRoster(r io.Reader, opts RosterOptions) (*RosterResult, error) {
	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = MaxRows
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apierr.Validation("CSV file is empty")
	}
	if err != nil {
		return nil, apierr.Validation("CSV header could not be read: %v", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var raw []rawRow
	for {
		rec, rerr := reader.Read()
		if rerr == io.EOF {
			break
		}
		line, _ := reader.FieldPos(0)
		if rerr != nil {
			var pe *csv.ParseError
			if errors.As(rerr, &pe) {
				line = pe.StartLine
			}
			raw = append(raw, rawRow{line: line, fields: rec, err: true})
		} else {
			for i := range rec {
				rec[i] = strings.TrimSpace(rec[i])
			}
			if isBlank(rec) {
				continue
			}
			raw = append(raw, rawRow{line: line, fields: rec})
		}
		if len(raw) > maxRows {
			return nil, ErrTooManyRows
		}
	}

	existing := map[string]bool{}
	if opts.Existing != nil {
		candidates := make([]string, 0, len(raw))
		for _, rr := range raw {
			if !rr.err && len(rr.fields) == len(header) {
				if id := normalize.Upper(rr.fields[cols.rollNo]); id != "" {
					candidates = append(candidates, id)
				}
			}
		}
		if len(candidates) > 0 {
			if existing, err = opts.Existing(candidates); err != nil {
				return nil, err
			}
		}
	}

	res := &RosterResult{}
	seen := map[string]bool{}
	skip := func(rr rawRow, reason string) {
		res.Skipped = append(res.Skipped, SkippedRow{
			Line:   rr.line,
			Row:    strings.Join(rr.fields, ","),
			Reason: reason,
		})
	}

	for _, rr := range raw {
		if rr.err || len(rr.fields) != len(header) {
			skip(rr, ReasonMalformed)
			continue
		}
		row := RosterRow{
			Line:        rr.line,
			RollNo:      normalize.Upper(rr.fields[cols.rollNo]),
			Name:        normalize.Name(rr.fields[cols.name]),
			SubSubgroup: normalize.Upper(rr.fields[cols.subSubgroup]),
		}
		if row.RollNo == "" || row.Name == "" || row.SubSubgroup == "" {
			skip(rr, ReasonMissingField)
			continue
		}
		if !opts.ValidSubSubgroups[row.SubSubgroup] {
			skip(rr, ReasonInvalidSubSubgroup)
			continue
		}
		if existing[row.RollNo] || seen[row.RollNo] {
			skip(rr, ReasonDuplicate)
			continue
		}
		seen[row.RollNo] = true
		res.Rows = append(res.Rows, row)
	}

	return res, nil
}

type columns struct {
	rollNo, name, subSubgroup int
}

func locateColumns(header []string) (columns, error) {
	c := columns{rollNo: -1, name: -1, subSubgroup: -1}
	for i, h := range header {
		switch {
		case strings.EqualFold(strings.TrimSpace(h), ColRollNo):
			if c.rollNo < 0 {
				c.rollNo = i
			}
		case strings.EqualFold(strings.TrimSpace(h), ColName):
			if c.name < 0 {
				c.name = i
			}
		case strings.EqualFold(strings.TrimSpace(h), ColSubSubgroup):
			if c.subSubgroup < 0 {
				c.subSubgroup = i
			}
		}
	}

	var missing []string
	if c.rollNo < 0 {
		missing = append(missing, ColRollNo)
	}
	if c.name < 0 {
		missing = append(missing, ColName)
	}
	if c.subSubgroup < 0 {
		missing = append(missing, ColSubSubgroup)
	}
	if len(missing) > 0 {
		return c, apierr.Validation("CSV header is missing required column(s): %s", strings.Join(missing, ", "))
	}
	return c, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if f != "" {
			return false
		}
	}
	return true
}
