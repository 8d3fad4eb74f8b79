package export_test

import (
	"bytes"

	"github.com/edutools/lms-export/internal/export"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func renderToString(doc export.Document) string {
	var buf bytes.Buffer
	_, err := doc.WriteTo(&buf)
	Expect(err).NotTo(HaveOccurred())
	return buf.String()
}

func renderToBytes(doc export.Document) []byte {
	var buf bytes.Buffer
	_, err := doc.WriteTo(&buf)
	Expect(err).NotTo(HaveOccurred())
	return buf.Bytes()
}

func courseRecord(fields map[string]string) *export.Record {
	r := export.NewRecord()
	for _, field := range []string{"shortname", "fullname", "category_path"} {
		if v, ok := fields[field]; ok {
			r.Set(field, v)
		}
	}
	return r
}

func userRecordWithPairs(username string, pairs ...export.RolePair) *export.Record {
	r := export.NewRecord()
	r.Set("username", username)
	r.Roles = pairs
	return r
}

var _ = Describe("CSVSerializer", func() {
	newSerializer := func() *export.CSVSerializer {
		return export.NewCSVSerializer(export.DelimiterComma, export.EncodingUTF8)
	}

	Describe("RenderCourses", func() {
		It("writes the header and one row per record", func() {
			record := courseRecord(map[string]string{"shortname": "cs101", "fullname": "Intro CS"})
			doc, err := newSerializer().RenderCourses(export.FieldPlan{"shortname", "fullname"}, []*export.Record{record})
			Expect(err).NotTo(HaveOccurred())

			Expect(renderToString(doc)).To(Equal("shortname,fullname\ncs101,\"Intro CS\"\n"))
		})

		It("quotes cells containing the delimiter and doubles embedded quotes", func() {
			record := courseRecord(map[string]string{"shortname": "a,b", "fullname": `say "hi"`})
			doc, err := newSerializer().RenderCourses(export.FieldPlan{"shortname", "fullname"}, []*export.Record{record})
			Expect(err).NotTo(HaveOccurred())

			Expect(renderToString(doc)).To(Equal("shortname,fullname\n\"a,b\",\"say \"\"hi\"\"\"\n"))
		})

		It("honors the configured delimiter", func() {
			serializer := export.NewCSVSerializer(export.DelimiterSemicolon, export.EncodingUTF8)
			record := courseRecord(map[string]string{"shortname": "cs101", "fullname": "IntroCS"})
			doc, err := serializer.RenderCourses(export.FieldPlan{"shortname", "fullname"}, []*export.Record{record})
			Expect(err).NotTo(HaveOccurred())

			Expect(renderToString(doc)).To(Equal("shortname;fullname\ncs101;IntroCS\n"))
		})
	})

	Describe("RenderUsers", func() {
		It("renders the worked single-user example", func() {
			record := userRecordWithPairs("u1",
				export.RolePair{Role: "teacher", Course: "cs101"},
				export.RolePair{Role: "ta", Course: "cs102"},
			)
			doc, err := newSerializer().RenderUsers(export.FieldPlan{"username"}, []*export.Record{record}, nil, false)
			Expect(err).NotTo(HaveOccurred())

			Expect(renderToString(doc)).To(Equal(
				"username,course1,role1,course2,role2\n" +
					"u1,cs101,teacher,cs102,ta\n"))
		})

		It("pads every row to a uniform column count", func() {
			one := userRecordWithPairs("u1", export.RolePair{Role: "r1", Course: "c1"})
			three := userRecordWithPairs("u2",
				export.RolePair{Role: "r1", Course: "c1"},
				export.RolePair{Role: "r2", Course: "c2"},
				export.RolePair{Role: "r3", Course: "c3"},
			)
			doc, err := newSerializer().RenderUsers(export.FieldPlan{"username"}, []*export.Record{one, three}, nil, false)
			Expect(err).NotTo(HaveOccurred())

			Expect(renderToString(doc)).To(Equal(
				"username,course1,role1,course2,role2,course3,role3\n" +
					"u1,c1,r1,,,,\n" +
					"u2,c1,r1,c2,r2,c3,r3\n"))
		})

		It("skips records with no role pairs", func() {
			empty := userRecordWithPairs("ghost")
			held := userRecordWithPairs("u1", export.RolePair{Role: "r1", Course: "c1"})
			doc, err := newSerializer().RenderUsers(export.FieldPlan{"username"}, []*export.Record{empty, held}, nil, false)
			Expect(err).NotTo(HaveOccurred())

			out := renderToString(doc)
			Expect(out).NotTo(ContainSubstring("ghost"))
			Expect(out).To(ContainSubstring("u1"))
		})

		Context("with separate role sections", func() {
			It("writes one header block per requested role with per-section pair widths", func() {
				u1 := userRecordWithPairs("u1", export.RolePair{Role: "teacher", Course: "c1"})
				u2 := userRecordWithPairs("u2",
					export.RolePair{Role: "ta", Course: "c2"},
					export.RolePair{Role: "ta", Course: "c3"},
				)
				doc, err := newSerializer().RenderUsers(
					export.FieldPlan{"username"},
					[]*export.Record{u1, u2},
					[]string{"teacher", "ta"},
					true,
				)
				Expect(err).NotTo(HaveOccurred())

				Expect(renderToString(doc)).To(Equal(
					"teacher\n" +
						"username,course1,role1\n" +
						"u1,c1,teacher\n" +
						"\n" +
						"ta\n" +
						"username,course1,role1,course2,role2\n" +
						"u2,c2,ta,c3,ta\n"))
			})

			It("replicates a user onto every sheet for which they hold the role", func() {
				u1 := userRecordWithPairs("u1",
					export.RolePair{Role: "teacher", Course: "c1"},
					export.RolePair{Role: "ta", Course: "c2"},
				)
				doc, err := newSerializer().RenderUsers(
					export.FieldPlan{"username"},
					[]*export.Record{u1},
					[]string{"teacher", "ta"},
					true,
				)
				Expect(err).NotTo(HaveOccurred())

				out := renderToString(doc)
				Expect(out).To(ContainSubstring("u1,c1,teacher\n"))
				Expect(out).To(ContainSubstring("u1,c2,ta\n"))
			})
		})
	})

	Describe("encodings", func() {
		It("emits windows-1252 bytes", func() {
			serializer := export.NewCSVSerializer(export.DelimiterComma, export.EncodingWindows1252)
			record := courseRecord(map[string]string{"shortname": "José"})
			doc, err := serializer.RenderCourses(export.FieldPlan{"shortname"}, []*export.Record{record})
			Expect(err).NotTo(HaveOccurred())

			raw := renderToBytes(doc)
			Expect(raw).To(Equal(append([]byte("shortname\nJos"), 0xE9, '\n')))
		})

		It("emits a BOM for utf-16le", func() {
			serializer := export.NewCSVSerializer(export.DelimiterComma, export.EncodingUTF16LE)
			record := courseRecord(map[string]string{"shortname": "x"})
			doc, err := serializer.RenderCourses(export.FieldPlan{"shortname"}, []*export.Record{record})
			Expect(err).NotTo(HaveOccurred())

			raw := renderToBytes(doc)
			Expect(raw[0]).To(Equal(byte(0xFF)))
			Expect(raw[1]).To(Equal(byte(0xFE)))
		})

		It("names the charset in the content type", func() {
			serializer := export.NewCSVSerializer(export.DelimiterComma, export.EncodingISO88591)
			doc, err := serializer.RenderCourses(export.FieldPlan{"shortname"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.ContentType()).To(Equal("text/csv; charset=iso-8859-1"))
		})
	})

	It("produces identical content on repeated writes", func() {
		record := courseRecord(map[string]string{"shortname": "cs101"})
		doc, err := newSerializer().RenderCourses(export.FieldPlan{"shortname"}, []*export.Record{record})
		Expect(err).NotTo(HaveOccurred())

		Expect(renderToString(doc)).To(Equal(renderToString(doc)))
	})
})
