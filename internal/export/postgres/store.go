package postgres

import (
	"context"
	"errors"

	courseDatamodel "github.com/edutools/lms-export/internal/core/datamodel/course"
	userDatamodel "github.com/edutools/lms-export/internal/core/datamodel/user"
	"github.com/edutools/lms-export/internal/export"
	"gorm.io/gorm"
)

// ExportStore reads the host platform's course, category, role and role
// assignment tables. All queries are read-only.
type ExportStore struct {
	db *gorm.DB
}

func NewExportStore(db *gorm.DB) export.Store {
	return &ExportStore{db: db}
}

func (s *ExportStore) Courses(ctx context.Context) ([]courseDatamodel.Course, error) {
	var courses []courseDatamodel.Course
	err := s.db.WithContext(ctx).Order("id ASC").Find(&courses).Error
	return courses, err
}

func (s *ExportStore) Category(ctx context.Context, id int64) (*courseDatamodel.Category, error) {
	var cat courseDatamodel.Category
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (s *ExportStore) AllRoles(ctx context.Context) ([]userDatamodel.Role, error) {
	var roles []userDatamodel.Role
	err := s.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&roles).Error
	return roles, err
}

func (s *ExportStore) UsersWithRole(ctx context.Context, roleID, courseID int64) ([]userDatamodel.User, error) {
	var users []userDatamodel.User
	err := s.db.WithContext(ctx).
		Joins("JOIN role_assignments ra ON ra.user_id = users.id").
		Where("ra.role_id = ? AND ra.course_id = ?", roleID, courseID).
		Order("users.id ASC").
		Find(&users).Error
	return users, err
}
