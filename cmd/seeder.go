package cmd

import (
	"fmt"
	"log"
	"time"

	courseDatamodel "github.com/edutools/lms-export/internal/core/datamodel/course"
	userDatamodel "github.com/edutools/lms-export/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample LMS data",
	Long:  `Seed the database with a sample category tree, courses, roles, users and role assignments for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		seedCategories(db)
		seedCourses(db, cfg.Export.RootCourse)
		seedRoles(db)
		seedUsers(db)
		seedAssignments(db)

		fmt.Println("Seeding complete")
	},
}

func seedCategories(db *gorm.DB) {
	categories := []courseDatamodel.Category{
		{ID: 1, Name: "Science", ParentID: 0},
		{ID: 2, Name: "Computer Science", ParentID: 1},
		{ID: 3, Name: "Mathematics", ParentID: 1},
		{ID: 4, Name: "Humanities", ParentID: 0},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		log.Fatalf("failed to seed categories: %v", err)
	}
}

func seedCourses(db *gorm.DB, rootCourse string) {
	start := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	courses := []courseDatamodel.Course{
		{ID: 1, Shortname: rootCourse, Fullname: "Site", CategoryID: 0, StartDate: start, Visible: true},
		{ID: 2, Shortname: "cs101", Fullname: "Intro CS", CategoryID: 2, StartDate: start, Visible: true},
		{ID: 3, Shortname: "cs102", Fullname: "Data Structures", CategoryID: 2, StartDate: start.AddDate(0, 0, 7), Visible: true},
		{ID: 4, Shortname: "math201", Fullname: "Linear Algebra", CategoryID: 3, StartDate: start, Visible: true},
		{ID: 5, Shortname: "hist110", Fullname: "Modern History", CategoryID: 4, StartDate: start, Visible: false},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&courses).Error; err != nil {
		log.Fatalf("failed to seed courses: %v", err)
	}
}

func seedRoles(db *gorm.DB) {
	roles := []userDatamodel.Role{
		{ID: 1, Shortname: "manager", Name: "Manager", SortOrder: 1},
		{ID: 2, Shortname: "editingteacher", Name: "Teacher", SortOrder: 2},
		{ID: 3, Shortname: "teacher", Name: "Non-editing teacher", SortOrder: 3},
		{ID: 4, Shortname: "student", Name: "Student", SortOrder: 4},
		{ID: 5, Shortname: "guest", Name: "Guest", SortOrder: 5},
		{ID: 6, Shortname: "frontpage", Name: "Authenticated user on site home", SortOrder: 6},
		{ID: 7, Shortname: "admin", Name: "Administrator", SortOrder: 7},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
}

func seedUsers(db *gorm.DB) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	users := []userDatamodel.User{
		{ID: 1, Username: "ateacher", Firstname: "Alice", Lastname: "Teacher", Email: "alice@example.edu", Auth: "manual", City: "Bucharest", Country: "RO"},
		{ID: 2, Username: "bstudent", Firstname: "Bob", Lastname: "Student", Email: "bob@example.edu", Auth: "manual", City: "Cluj", Country: "RO"},
		{ID: 3, Username: "cstudent", Firstname: "Carol", Lastname: "Student", Email: "carol@example.edu", Auth: "ldap", City: "Iasi", Country: "RO"},
		{ID: 4, Username: "dmanager", Firstname: "Dan", Lastname: "Manager", Email: "dan@example.edu", Auth: "manual"},
	}
	for i := range users {
		users[i].PasswordHash = string(hash)
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&users).Error; err != nil {
		log.Fatalf("failed to seed users: %v", err)
	}
}

func seedAssignments(db *gorm.DB) {
	assignments := []userDatamodel.RoleAssignment{
		{ID: 1, RoleID: 2, UserID: 1, CourseID: 2},
		{ID: 2, RoleID: 3, UserID: 1, CourseID: 3},
		{ID: 3, RoleID: 4, UserID: 2, CourseID: 2},
		{ID: 4, RoleID: 4, UserID: 2, CourseID: 4},
		{ID: 5, RoleID: 4, UserID: 3, CourseID: 2},
		{ID: 6, RoleID: 1, UserID: 4, CourseID: 5},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignments).Error; err != nil {
		log.Fatalf("failed to seed role assignments: %v", err)
	}
}
