package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// Fixed column widths for spreadsheet output. Everything not listed gets
// the default width.
const defaultColumnWidth = 13

var columnWidths = map[string]float64{
	"category_path": 30,
	"email":         30,
	"username":      16,
}

// XLSSerializer renders a record set as an XLSX workbook: one sheet for
// courses or combined users, or one sheet per requested role.
type XLSSerializer struct{}

func NewXLSSerializer() *XLSSerializer {
	return &XLSSerializer{}
}

func (s *XLSSerializer) RenderCourses(plan FieldPlan, records []*Record) (Document, error) {
	f := excelize.NewFile()
	sheet := string(DataCourses)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	if err := writeHeader(f, sheet, plan); err != nil {
		return nil, err
	}
	for i, record := range records {
		if err := writeCells(f, sheet, i+2, cellsFor(plan, record)); err != nil {
			return nil, err
		}
	}
	if err := setColumnWidths(f, sheet, plan); err != nil {
		return nil, err
	}

	return &xlsDocument{f: f, kind: DataCourses, created: time.Now()}, nil
}

func (s *XLSSerializer) RenderUsers(base FieldPlan, records []*Record, roles []string, separate bool) (Document, error) {
	f := excelize.NewFile()

	if !separate {
		if err := writeUserSheet(f, f.GetSheetName(0), string(DataUsers), base, records, "", false); err != nil {
			return nil, err
		}
		return &xlsDocument{f: f, kind: DataUsers, created: time.Now()}, nil
	}

	for i, role := range roles {
		rename := ""
		if i == 0 {
			rename = f.GetSheetName(0)
		}
		if err := writeUserSheet(f, rename, role, base, records, role, true); err != nil {
			return nil, err
		}
	}
	return &xlsDocument{f: f, kind: DataUsers, created: time.Now()}, nil
}

// writeUserSheet fills one worksheet with user rows. When role is set, only
// that role's pair subset is rendered and the pair columns are sized to
// that subset.
func writeUserSheet(f *excelize.File, rename, sheet string, base FieldPlan, records []*Record, role string, restrict bool) error {
	if rename != "" {
		if err := f.SetSheetName(rename, sheet); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	maxPairs := MaxRolePairs(records)
	if restrict {
		maxPairs = maxPairsForRole(records, role)
	}
	plan := base.WithRolePairs(maxPairs)

	if err := writeHeader(f, sheet, plan); err != nil {
		return err
	}

	row := 2
	for _, record := range records {
		pairs := record.Roles
		if restrict {
			pairs = record.pairsForRole(role)
		}
		if len(pairs) == 0 {
			continue
		}
		// Trailing unused pair cells stay unwritten, which reads as blank.
		if err := writeCells(f, sheet, row, userCells(base, record, pairs)); err != nil {
			return err
		}
		row++
	}

	return setColumnWidths(f, sheet, plan)
}

func writeHeader(f *excelize.File, sheet string, plan FieldPlan) error {
	return writeCells(f, sheet, 1, plan)
}

func writeCells(f *excelize.File, sheet string, row int, cells []string) error {
	for i, cell := range cells {
		name, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name, cell); err != nil {
			return err
		}
	}
	return nil
}

// setColumnWidths applies the default width to the whole plan then the
// wider fixed widths for the known-wide fields.
func setColumnWidths(f *excelize.File, sheet string, plan FieldPlan) error {
	if len(plan) == 0 {
		return nil
	}

	last, err := excelize.ColumnNumberToName(len(plan))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, defaultColumnWidth); err != nil {
		return err
	}

	for i, field := range plan {
		width, ok := columnWidths[field]
		if !ok {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

type xlsDocument struct {
	f       *excelize.File
	kind    DataKind
	created time.Time
}

func (d *xlsDocument) Filename() string {
	return downloadFilename(d.kind, "xlsx", d.created)
}

func (d *xlsDocument) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (d *xlsDocument) WriteTo(w io.Writer) (int64, error) {
	n, err := d.f.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("write workbook: %w", err)
	}
	return n, nil
}
