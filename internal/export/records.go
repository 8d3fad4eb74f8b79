package export

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"github.com/edutools/lms-export/internal"
	courseDatamodel "github.com/edutools/lms-export/internal/core/datamodel/course"
	userDatamodel "github.com/edutools/lms-export/internal/core/datamodel/user"
)

// startDateLayout is the ISO 8601 date format used for course start dates.
const startDateLayout = "2006-01-02"

// RecordBuilder produces the denormalized record sets for one export run.
type RecordBuilder struct {
	store    Store
	logger   *slog.Logger
	resolver *CategoryPathResolver
}

func NewRecordBuilder(store Store, logger *slog.Logger) *RecordBuilder {
	return &RecordBuilder{
		store:    store,
		logger:   logger,
		resolver: NewCategoryPathResolver(store),
	}
}

// CourseRecords builds one record per course, excluding the site root
// course. Every record carries a fully resolved category_path and an ISO
// formatted start date before overrides or sorting are applied.
func (b *RecordBuilder) CourseRecords(ctx context.Context, opts Options) ([]*Record, error) {
	courses, err := b.exportableCourses(ctx, opts)
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(courses))
	for _, c := range courses {
		record, err := b.courseRecord(ctx, c)
		if err != nil {
			return nil, err
		}
		if opts.UseOverrides {
			applyOverrides(record, opts.Overrides)
		}
		records = append(records, record)
	}

	if opts.SortByCategoryPath {
		// Courses commonly share a category path, so the sort must keep
		// their original relative order.
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Get("category_path") < records[j].Get("category_path")
		})
	}

	b.logger.Debug("built course records", "count", len(records))
	return records, nil
}

// UserRecords joins users to courses through role assignment. The join is
// course-major, role-minor, which fixes the order role pairs accumulate on
// each user record. A user record is created once, on first sight, and
// grows in place as more assignments are discovered. Users whose roles end
// up empty stay in the result; serialization excludes them.
func (b *RecordBuilder) UserRecords(ctx context.Context, opts Options, roles RoleSet) ([]*Record, error) {
	if roles.Empty() {
		return nil, internal.ErrRolesNotResolved
	}

	courses, err := b.exportableCourses(ctx, opts)
	if err != nil {
		return nil, err
	}

	requested := roles.Requested()
	byUsername := make(map[string]*Record)
	var records []*Record

	for _, c := range courses {
		for _, role := range requested {
			roleID, ok := roles.ID(role)
			if !ok {
				return nil, internal.ErrRolesNotResolved
			}
			users, err := b.store.UsersWithRole(ctx, roleID, c.ID)
			if err != nil {
				return nil, err
			}
			for _, u := range users {
				record, ok := byUsername[u.Username]
				if !ok {
					record = userRecord(u)
					byUsername[u.Username] = record
					records = append(records, record)
				}
				record.Roles = append(record.Roles, RolePair{Role: role, Course: c.Shortname})
			}
		}
	}

	if opts.UseOverrides {
		for _, record := range records {
			applyOverrides(record, opts.Overrides)
		}
	}

	b.logger.Debug("built user records", "count", len(records))
	return records, nil
}

// exportableCourses fetches all courses and drops the site root course.
func (b *RecordBuilder) exportableCourses(ctx context.Context, opts Options) ([]courseDatamodel.Course, error) {
	courses, err := b.store.Courses(ctx)
	if err != nil {
		return nil, err
	}

	root := opts.rootCourse()
	exportable := courses[:0]
	for _, c := range courses {
		if c.Shortname == root {
			continue
		}
		exportable = append(exportable, c)
	}
	return exportable, nil
}

func (b *RecordBuilder) courseRecord(ctx context.Context, c courseDatamodel.Course) (*Record, error) {
	path, err := b.resolver.Resolve(ctx, c.CategoryID)
	if err != nil {
		return nil, err
	}

	record := NewRecord()
	record.Set("id", strconv.FormatInt(c.ID, 10))
	record.Set("shortname", c.Shortname)
	record.Set("fullname", c.Fullname)
	record.Set("category", strconv.FormatInt(c.CategoryID, 10))
	record.Set("category_path", path)
	record.Set("idnumber", c.IDNumber)
	record.Set("startdate", c.StartDate.UTC().Format(startDateLayout))
	record.Set("visible", formatBool(c.Visible))
	return record, nil
}

func userRecord(u userDatamodel.User) *Record {
	record := NewRecord()
	record.Set("id", strconv.FormatInt(u.ID, 10))
	record.Set("username", u.Username)
	record.Set("firstname", u.Firstname)
	record.Set("lastname", u.Lastname)
	record.Set("email", u.Email)
	record.Set("auth", u.Auth)
	record.Set("city", u.City)
	record.Set("country", u.Country)
	record.Set("suspended", formatBool(u.Suspended))
	return record
}

// applyOverrides replaces or adds the configured fields unconditionally,
// after all derived fields are in place so overrides can replace those too.
func applyOverrides(record *Record, overrides Overrides) {
	for _, ov := range overrides {
		record.Set(ov.Field, ov.Value)
	}
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
