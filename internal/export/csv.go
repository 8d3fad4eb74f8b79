package export

import (
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVSerializer renders a record set as delimited text. Every data row is
// padded with empty cells to the full column plan width so the output is
// rectangular regardless of how many role pairs each record carries.
type CSVSerializer struct {
	delimiter Delimiter
	encoding  Encoding
}

func NewCSVSerializer(delimiter Delimiter, encoding Encoding) *CSVSerializer {
	return &CSVSerializer{delimiter: delimiter, encoding: encoding}
}

// RenderCourses writes the header row then one row per course record, one
// cell per plan column.
func (s *CSVSerializer) RenderCourses(plan FieldPlan, records []*Record) (Document, error) {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, plan)
	for _, record := range records {
		rows = append(rows, cellsFor(plan, record))
	}
	return s.document(DataCourses, rows), nil
}

// RenderUsers writes user rows in join-discovery order, skipping records
// with no role pairs. With separate sections enabled, every requested role
// gets its own header block holding only that role's pair subset.
func (s *CSVSerializer) RenderUsers(base FieldPlan, records []*Record, roles []string, separate bool) (Document, error) {
	if !separate {
		return s.document(DataUsers, userRows(base, records)), nil
	}

	var rows [][]string
	for i, role := range roles {
		if i > 0 {
			rows = append(rows, []string{})
		}
		rows = append(rows, []string{role})
		rows = append(rows, roleSectionRows(base, records, role)...)
	}
	return s.document(DataUsers, rows), nil
}

// userRows renders the combined header plus data rows, blank-padded to the
// full plan width.
func userRows(base FieldPlan, records []*Record) [][]string {
	plan := base.WithRolePairs(MaxRolePairs(records))
	rows := [][]string{plan}
	for _, record := range records {
		if len(record.Roles) == 0 {
			continue
		}
		rows = append(rows, padded(userCells(base, record, record.Roles), len(plan)))
	}
	return rows
}

func roleSectionRows(base FieldPlan, records []*Record, role string) [][]string {
	plan := base.WithRolePairs(maxPairsForRole(records, role))
	rows := [][]string{plan}
	for _, record := range records {
		pairs := record.pairsForRole(role)
		if len(pairs) == 0 {
			continue
		}
		rows = append(rows, padded(userCells(base, record, pairs), len(plan)))
	}
	return rows
}

func cellsFor(plan FieldPlan, record *Record) []string {
	cells := make([]string, len(plan))
	for i, field := range plan {
		cells[i] = record.Get(field)
	}
	return cells
}

func userCells(base FieldPlan, record *Record, pairs []RolePair) []string {
	cells := make([]string, 0, len(base)+2*len(pairs))
	for _, field := range base {
		cells = append(cells, record.Get(field))
	}
	for _, pair := range pairs {
		cells = append(cells, pair.Course, pair.Role)
	}
	return cells
}

func padded(cells []string, width int) []string {
	for len(cells) < width {
		cells = append(cells, "")
	}
	return cells
}

func (s *CSVSerializer) document(kind DataKind, rows [][]string) *csvDocument {
	return &csvDocument{
		kind:      kind,
		rows:      rows,
		delimiter: s.delimiter.Rune(),
		encoding:  s.encoding,
		created:   time.Now(),
	}
}

type csvDocument struct {
	kind      DataKind
	rows      [][]string
	delimiter rune
	encoding  Encoding
	created   time.Time
}

func (d *csvDocument) Filename() string {
	return downloadFilename(d.kind, "csv", d.created)
}

func (d *csvDocument) ContentType() string {
	return "text/csv; charset=" + string(d.encoding)
}

func (d *csvDocument) WriteTo(w io.Writer) (int64, error) {
	counter := &countingWriter{w: w}

	var out io.Writer = counter
	var closer io.Closer
	if enc := d.encoding.newEncoder(); enc != nil {
		tw := transform.NewWriter(counter, enc)
		out = tw
		closer = tw
	}

	var sb strings.Builder
	for _, row := range d.rows {
		sb.Reset()
		for i, cell := range row {
			if i > 0 {
				sb.WriteRune(d.delimiter)
			}
			sb.WriteString(d.quoted(cell))
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(out, sb.String()); err != nil {
			return counter.n, err
		}
	}

	if closer != nil {
		if err := closer.Close(); err != nil {
			return counter.n, err
		}
	}
	return counter.n, nil
}

// quoted wraps a cell in double quotes when it contains the delimiter, a
// quote, a line break or whitespace, doubling any embedded quotes.
func (d *csvDocument) quoted(cell string) string {
	if !strings.ContainsAny(cell, string(d.delimiter)+"\"\n\r ") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

func (e Encoding) newEncoder() transform.Transformer {
	switch e {
	case EncodingISO88591:
		return charmap.ISO8859_1.NewEncoder()
	case EncodingWindows1252:
		return charmap.Windows1252.NewEncoder()
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	default:
		// utf-8 passes through untouched
		return nil
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
