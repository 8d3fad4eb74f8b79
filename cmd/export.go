package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edutools/lms-export/internal/export"
	exportPostgres "github.com/edutools/lms-export/internal/export/postgres"
	"github.com/edutools/lms-export/pkg/logger"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	exportData           string
	exportFormat         string
	exportDelimiter      string
	exportEncoding       string
	exportRoles          string
	exportFields         []string
	exportOverrides      []string
	exportUseOverrides   bool
	exportSortByCategory bool
	exportSeparateSheets bool
	exportOutput         string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export courses or users to a file",
	Long: `Export courses or users with their role assignments into a csv or
spreadsheet file. The output goes to stdout unless --output is given.

Example:
  lms-export export --data=users --roles=all --format=xls --output=users.xlsx`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportData, "data", "d", "", "data to export: courses or users")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format: csv or xls")
	exportCmd.Flags().StringVarP(&exportDelimiter, "delimiter", "l", "comma", "csv delimiter: comma, semicolon, colon or tab")
	exportCmd.Flags().StringVarP(&exportEncoding, "encoding", "e", "utf-8", "csv encoding: utf-8, iso-8859-1, windows-1252 or utf-16le")
	exportCmd.Flags().StringVarP(&exportRoles, "roles", "r", "", "roles for user export, comma separated or all")
	exportCmd.Flags().StringSliceVar(&exportFields, "fields", nil, "output fields, defaults per data kind")
	exportCmd.Flags().StringArrayVar(&exportOverrides, "override", nil, "field override as field=value, repeatable")
	exportCmd.Flags().BoolVar(&exportUseOverrides, "use-overrides", false, "apply configured field overrides")
	exportCmd.Flags().BoolVarP(&exportSortByCategory, "sort-by-category-path", "s", false, "sort courses by category path")
	exportCmd.Flags().BoolVar(&exportSeparateSheets, "separate-sheets", false, "one sheet or section per role for user export")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, defaults to stdout")
	_ = exportCmd.MarkFlagRequired("data")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}

	logger.Init(cfg.Logging.Format, cfg.Logging.Level)

	db, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to open gorm connection: %w", err)
	}

	dto := export.ExportRequestDTO{
		Data:               exportData,
		Format:             exportFormat,
		Delimiter:          exportDelimiter,
		Encoding:           exportEncoding,
		Roles:              exportRoles,
		Fields:             exportFields,
		UseOverrides:       exportUseOverrides,
		SortByCategoryPath: exportSortByCategory,
		SeparateSheets:     exportSeparateSheets,
	}
	dto.Overrides, err = parseOverrideFlags(exportOverrides)
	if err != nil {
		return err
	}

	opts, err := dto.ToOptions(cfg.Export)
	if err != nil {
		return err
	}

	store := exportPostgres.NewExportStore(gormDB)
	processor, err := export.NewProcessor(store, logger.LoggerWrapper(), opts)
	if err != nil {
		return err
	}

	if err := processor.Prepare(context.Background()); err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if exportOutput != "" {
		file, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	if _, err := processor.Download(out); err != nil {
		return err
	}

	if exportOutput != "" {
		doc, _ := processor.Document()
		fmt.Fprintf(os.Stderr, "exported %s to %s\n", doc.Filename(), exportOutput)
	}
	return nil
}

func parseOverrideFlags(flags []string) ([]export.OverrideDTO, error) {
	overrides := make([]export.OverrideDTO, 0, len(flags))
	for _, flag := range flags {
		field, value, ok := strings.Cut(flag, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid override %q, expected field=value", flag)
		}
		overrides = append(overrides, export.OverrideDTO{Field: field, Value: value})
	}
	return overrides, nil
}
