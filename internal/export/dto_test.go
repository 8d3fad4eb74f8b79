package export_test

import (
	"errors"

	"github.com/edutools/lms-export/internal"
	"github.com/edutools/lms-export/internal/export"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExportRequestDTO", func() {
	defaults := internal.ExportConfig{
		RootCourse:   "moodle",
		DefaultRoles: "all",
	}

	Describe("ToOptions", func() {
		It("fills csv defaults for a minimal course request", func() {
			opts, err := export.ExportRequestDTO{Data: "courses"}.ToOptions(defaults)
			Expect(err).NotTo(HaveOccurred())

			Expect(opts.Format).To(Equal(export.FormatCSV))
			Expect(opts.Delimiter).To(Equal(export.DelimiterComma))
			Expect(opts.Encoding).To(Equal(export.EncodingUTF8))
			Expect(opts.Fields).To(Equal([]string{"shortname", "fullname", "category_path"}))
			Expect(opts.RootCourse).To(Equal("moodle"))
		})

		It("defaults user fields and roles for a minimal user request", func() {
			opts, err := export.ExportRequestDTO{Data: "users"}.ToOptions(defaults)
			Expect(err).NotTo(HaveOccurred())

			Expect(opts.Fields).To(Equal([]string{"username", "firstname", "lastname", "email", "auth"}))
			Expect(opts.Roles).To(Equal("all"))
		})

		It("keeps an explicit role list over the configured default", func() {
			opts, err := export.ExportRequestDTO{Data: "users", Roles: "teacher,student"}.ToOptions(defaults)
			Expect(err).NotTo(HaveOccurred())
			Expect(opts.Roles).To(Equal("teacher,student"))
		})

		It("preserves override order from the payload", func() {
			dto := export.ExportRequestDTO{
				Data:         "courses",
				UseOverrides: true,
				Overrides: []export.OverrideDTO{
					{Field: "category_path", Value: "Archived"},
					{Field: "templatecourse", Value: "tpl"},
				},
			}
			opts, err := dto.ToOptions(defaults)
			Expect(err).NotTo(HaveOccurred())

			Expect(opts.Overrides).To(Equal(export.Overrides{
				{Field: "category_path", Value: "Archived"},
				{Field: "templatecourse", Value: "tpl"},
			}))
		})

		It("rejects an unknown data kind", func() {
			_, err := export.ExportRequestDTO{Data: "grades"}.ToOptions(defaults)
			Expect(errors.Is(err, internal.ErrInvalidData)).To(BeTrue())
		})

		It("rejects an unknown delimiter", func() {
			_, err := export.ExportRequestDTO{Data: "courses", Delimiter: "pipe"}.ToOptions(defaults)
			Expect(errors.Is(err, internal.ErrInvalidDelimiter)).To(BeTrue())
		})

		It("rejects enabled overrides without values", func() {
			_, err := export.ExportRequestDTO{Data: "courses", UseOverrides: true}.ToOptions(defaults)
			Expect(errors.Is(err, internal.ErrEmptyOverrides)).To(BeTrue())
		})

		It("rejects a user request when no default roles are configured", func() {
			_, err := export.ExportRequestDTO{Data: "users"}.ToOptions(internal.ExportConfig{RootCourse: "moodle"})
			Expect(errors.Is(err, internal.ErrEmptyRoles)).To(BeTrue())
		})
	})
})
