package export_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/edutools/lms-export/internal"
	courseDatamodel "github.com/edutools/lms-export/internal/core/datamodel/course"
	userDatamodel "github.com/edutools/lms-export/internal/core/datamodel/user"
	"github.com/edutools/lms-export/internal/export"
	exportPostgres "github.com/edutools/lms-export/internal/export/postgres"
	"github.com/edutools/lms-export/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Export Handler Integration", func() {
	var (
		db      *gorm.DB
		store   export.Store
		handler *export.Handler
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&courseDatamodel.Category{},
			&courseDatamodel.Course{},
			&userDatamodel.User{},
			&userDatamodel.Role{},
			&userDatamodel.RoleAssignment{},
		)
		Expect(err).NotTo(HaveOccurred())

		science := courseDatamodel.Category{ID: 1, Name: "Science", ParentID: 0}
		cs := courseDatamodel.Category{ID: 2, Name: "CS", ParentID: 1}
		Expect(db.Create(&science).Error).NotTo(HaveOccurred())
		Expect(db.Create(&cs).Error).NotTo(HaveOccurred())

		root := courseDatamodel.Course{ID: 1, Shortname: "moodle", Fullname: "Site"}
		cs101 := courseDatamodel.Course{
			ID:         2,
			Shortname:  "cs101",
			Fullname:   "Intro CS",
			CategoryID: 2,
			StartDate:  time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
			Visible:    true,
		}
		Expect(db.Create(&root).Error).NotTo(HaveOccurred())
		Expect(db.Create(&cs101).Error).NotTo(HaveOccurred())

		roles := []userDatamodel.Role{
			{ID: 1, Shortname: "teacher", Name: "Teacher", SortOrder: 1},
			{ID: 2, Shortname: "student", Name: "Student", SortOrder: 2},
			{ID: 3, Shortname: "guest", Name: "Guest", SortOrder: 3},
		}
		for i := range roles {
			Expect(db.Create(&roles[i]).Error).NotTo(HaveOccurred())
		}

		u1 := userFixture(10, "u1")
		Expect(db.Create(&u1).Error).NotTo(HaveOccurred())
		assignment := userDatamodel.RoleAssignment{ID: 1, RoleID: 1, UserID: 10, CourseID: 2}
		Expect(db.Create(&assignment).Error).NotTo(HaveOccurred())

		store = exportPostgres.NewExportStore(db)
		baseHandler := &transport.BaseHandler{Logger: testLogger()}
		handler = export.NewHandler(baseHandler, store, internal.ExportConfig{
			RootCourse:   "moodle",
			DefaultRoles: "all",
		})
	})

	Describe("POST /exports", func() {
		It("streams a course csv as an attachment", func() {
			body := `{"data":"courses"}`
			req := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.CreateExport(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("text/csv; charset=utf-8"))
			Expect(w.Header().Get("Content-Disposition")).To(MatchRegexp(`^attachment; filename="courses-\d{8}_\d{4}\.csv"$`))
			Expect(w.Body.String()).To(Equal(
				"shortname,fullname,category_path\n" +
					"cs101,\"Intro CS\",\"Science / CS\"\n"))
		})

		It("streams a user csv using the configured default roles", func() {
			body := `{"data":"users","fields":["username"]}`
			req := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.CreateExport(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal(
				"username,course1,role1\n" +
					"u1,cs101,teacher\n"))
		})

		It("streams a workbook for xls format", func() {
			body := `{"data":"courses","format":"xls"}`
			req := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.CreateExport(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
			Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring(".xlsx"))
			Expect(w.Body.Len()).To(BeNumerically(">", 0))
		})

		It("rejects a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader("{"))
			w := httptest.NewRecorder()

			handler.CreateExport(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps validation failures to 400 with the error code", func() {
			body := `{"data":"grades"}`
			req := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.CreateExport(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("INVALID_DATA"))
		})

		It("maps an unknown requested role to 400", func() {
			body := `{"data":"users","roles":"wizard"}`
			req := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.CreateExport(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("INVALID_ROLE"))
		})
	})

	Describe("GET /roles", func() {
		It("lists assignable roles without the reserved system roles", func() {
			req := httptest.NewRequest(http.MethodGet, "/roles", nil)
			w := httptest.NewRecorder()

			handler.ListRoles(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var resp export.RolesResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Roles).To(Equal([]export.RoleOption{
				{Shortname: "teacher", Name: "Teacher"},
				{Shortname: "student", Name: "Student"},
			}))
		})
	})
})
