package export

import (
	"strings"

	"github.com/edutools/lms-export/internal"
)

// OverrideDTO is one field override in a request payload. Overrides arrive
// as an array so their configured order survives JSON decoding.
type OverrideDTO struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ExportRequestDTO is the request payload of the web form surface. The CLI
// builds the same Options directly from flags.
type ExportRequestDTO struct {
	Data               string        `json:"data"`
	Format             string        `json:"format"`
	Delimiter          string        `json:"delimiter"`
	Encoding           string        `json:"encoding"`
	Roles              string        `json:"roles"`
	Fields             []string      `json:"fields"`
	Overrides          []OverrideDTO `json:"overrides"`
	UseOverrides       bool          `json:"use_overrides"`
	SortByCategoryPath bool          `json:"sort_by_category_path"`
	SeparateSheets     bool          `json:"separate_sheets"`
}

// ToOptions fills request defaults (format csv, comma delimiter, utf-8,
// site default roles, per-kind default fields) and validates every closed
// enumeration. The returned Options are ready for NewProcessor.
func (dto ExportRequestDTO) ToOptions(defaults internal.ExportConfig) (Options, error) {
	kind, err := ParseDataKind(dto.Data)
	if err != nil {
		return Options{}, err
	}

	format := FormatCSV
	if dto.Format != "" {
		if format, err = ParseFormat(dto.Format); err != nil {
			return Options{}, err
		}
	}

	delimiter := DelimiterComma
	if dto.Delimiter != "" {
		if delimiter, err = ParseDelimiter(dto.Delimiter); err != nil {
			return Options{}, err
		}
	}

	encoding := EncodingUTF8
	if dto.Encoding != "" {
		if encoding, err = ParseEncoding(dto.Encoding); err != nil {
			return Options{}, err
		}
	}

	fields := dto.Fields
	if len(fields) == 0 {
		fields = DefaultFields(kind)
	}

	roles := strings.TrimSpace(dto.Roles)
	if roles == "" {
		roles = defaults.DefaultRoles
	}

	overrides := make(Overrides, 0, len(dto.Overrides))
	for _, ov := range dto.Overrides {
		overrides = append(overrides, Override{Field: ov.Field, Value: ov.Value})
	}

	opts := Options{
		Data:               kind,
		Format:             format,
		Delimiter:          delimiter,
		Encoding:           encoding,
		Fields:             fields,
		Roles:              roles,
		Overrides:          overrides,
		UseOverrides:       dto.UseOverrides,
		SortByCategoryPath: dto.SortByCategoryPath,
		SeparateSheets:     dto.SeparateSheets,
		RootCourse:         defaults.RootCourse,
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
