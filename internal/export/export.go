// Package export builds flat-file exports of LMS courses and users. One
// Processor instance serves one export request end to end: it resolves
// roles, denormalizes role assignments into per-user records, computes the
// output column plan and renders a downloadable document.
package export

import (
	"context"
	"strings"

	"github.com/edutools/lms-export/internal"
	courseDatamodel "github.com/edutools/lms-export/internal/core/datamodel/course"
	userDatamodel "github.com/edutools/lms-export/internal/core/datamodel/user"
)

// DataKind selects which entity an export run emits.
type DataKind string

const (
	DataCourses DataKind = "courses"
	DataUsers   DataKind = "users"
)

func ParseDataKind(s string) (DataKind, error) {
	switch DataKind(strings.ToLower(strings.TrimSpace(s))) {
	case DataCourses:
		return DataCourses, nil
	case DataUsers:
		return DataUsers, nil
	}
	return "", internal.ErrInvalidData
}

// Format selects the output file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatXLS Format = "xls"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLS:
		return FormatXLS, nil
	}
	return "", internal.ErrInvalidFormat
}

// Delimiter names the cell separator for delimited-text output.
type Delimiter string

const (
	DelimiterComma     Delimiter = "comma"
	DelimiterSemicolon Delimiter = "semicolon"
	DelimiterColon     Delimiter = "colon"
	DelimiterTab       Delimiter = "tab"
)

func ParseDelimiter(s string) (Delimiter, error) {
	switch Delimiter(strings.ToLower(strings.TrimSpace(s))) {
	case DelimiterComma:
		return DelimiterComma, nil
	case DelimiterSemicolon:
		return DelimiterSemicolon, nil
	case DelimiterColon:
		return DelimiterColon, nil
	case DelimiterTab:
		return DelimiterTab, nil
	}
	return "", internal.ErrInvalidDelimiter
}

func (d Delimiter) Rune() rune {
	switch d {
	case DelimiterSemicolon:
		return ';'
	case DelimiterColon:
		return ':'
	case DelimiterTab:
		return '\t'
	default:
		return ','
	}
}

// Encoding names the text encoding for delimited-text output.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingISO88591    Encoding = "iso-8859-1"
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingUTF16LE     Encoding = "utf-16le"
)

func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(s))) {
	case EncodingUTF8:
		return EncodingUTF8, nil
	case EncodingISO88591:
		return EncodingISO88591, nil
	case EncodingWindows1252:
		return EncodingWindows1252, nil
	case EncodingUTF16LE:
		return EncodingUTF16LE, nil
	}
	return "", internal.ErrInvalidEncoding
}

// RolesAll requests every assignable role.
const RolesAll = "all"

// reservedRoles are system roles that never appear in user exports, even
// when all roles are requested.
var reservedRoles = map[string]bool{
	"guest":     true,
	"frontpage": true,
	"admin":     true,
}

// Default output fields per data kind, used by callers when no field list
// is supplied.
var (
	DefaultCourseFields = []string{"shortname", "fullname", "category_path"}
	DefaultUserFields   = []string{"username", "firstname", "lastname", "email", "auth"}
)

// DefaultFields returns a copy of the default field list for kind.
func DefaultFields(kind DataKind) []string {
	var src []string
	if kind == DataUsers {
		src = DefaultUserFields
	} else {
		src = DefaultCourseFields
	}
	fields := make([]string, len(src))
	copy(fields, src)
	return fields
}

// DefaultRootCourse is the conventional shortname of the site placeholder
// course.
const DefaultRootCourse = "moodle"

// Override is one configured field replacement, applied unconditionally to
// every exported record. Order matters: override fields missing from the
// base field list are appended to the column plan in configuration order.
type Override struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type Overrides []Override

func (o Overrides) Get(field string) (string, bool) {
	for _, ov := range o {
		if ov.Field == field {
			return ov.Value, true
		}
	}
	return "", false
}

// Options is the full configuration of one export run.
type Options struct {
	Data               DataKind
	Format             Format
	Delimiter          Delimiter
	Encoding           Encoding
	Fields             []string
	Roles              string
	Overrides          Overrides
	UseOverrides       bool
	SortByCategoryPath bool
	SeparateSheets     bool
	RootCourse         string
}

// Validate checks every enumeration and precondition before any host data
// is touched.
func (o Options) Validate() error {
	if _, err := ParseDataKind(string(o.Data)); err != nil {
		return err
	}
	if _, err := ParseFormat(string(o.Format)); err != nil {
		return err
	}
	if o.Format == FormatCSV {
		if _, err := ParseDelimiter(string(o.Delimiter)); err != nil {
			return err
		}
		if _, err := ParseEncoding(string(o.Encoding)); err != nil {
			return err
		}
	}
	if len(o.Fields) == 0 {
		return internal.ErrEmptyFields
	}
	if o.Data == DataUsers && strings.TrimSpace(o.Roles) == "" {
		return internal.ErrEmptyRoles
	}
	if o.UseOverrides && len(o.Overrides) == 0 {
		return internal.ErrEmptyOverrides
	}
	return nil
}

func (o Options) rootCourse() string {
	if o.RootCourse == "" {
		return DefaultRootCourse
	}
	return o.RootCourse
}

// Store is the read-only view of the host platform's data the export
// processor consumes.
type Store interface {
	Courses(ctx context.Context) ([]courseDatamodel.Course, error)
	Category(ctx context.Context, id int64) (*courseDatamodel.Category, error)
	AllRoles(ctx context.Context) ([]userDatamodel.Role, error)
	UsersWithRole(ctx context.Context, roleID, courseID int64) ([]userDatamodel.User, error)
}

// RolePair records one enrollment fact: user holds Role in Course. Pairs
// accumulate in join-discovery order and become the course{n}/role{n}
// column values.
type RolePair struct {
	Role   string
	Course string
}

// Record is one exportable row: an insertion-ordered field map plus, for
// user records, the accumulated role pairs. Field order is preserved so
// serialization stays deterministic for runtime-configured field sets.
type Record struct {
	fields []string
	values map[string]string

	Roles []RolePair
}

func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Set stores value under field, appending the field to the order on first
// use.
func (r *Record) Set(field, value string) {
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = value
}

func (r *Record) Get(field string) string {
	return r.values[field]
}

func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Fields returns the field names in insertion order.
func (r *Record) Fields() []string {
	fields := make([]string, len(r.fields))
	copy(fields, r.fields)
	return fields
}

// pairsForRole returns the subset of the record's pairs held under role,
// in accumulation order. Used by the separate-sheets output mode.
func (r *Record) pairsForRole(role string) []RolePair {
	var pairs []RolePair
	for _, p := range r.Roles {
		if p.Role == role {
			pairs = append(pairs, p)
		}
	}
	return pairs
}
