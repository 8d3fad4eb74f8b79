package user

import "time"

// User mirrors the host platform's user table, limited to the columns the
// export surface can emit.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"not null;uniqueIndex"`
	Firstname    string    `json:"firstname" gorm:"not null"`
	Lastname     string    `json:"lastname" gorm:"not null"`
	Email        string    `json:"email" gorm:"not null"`
	Auth         string    `json:"auth" gorm:"default:manual"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
	Suspended    bool      `json:"suspended" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

// Role is one entry of the host's role registry.
type Role struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	Shortname string `json:"shortname" gorm:"not null;uniqueIndex"`
	Name      string `json:"name" gorm:"not null"`
	SortOrder int    `json:"sort_order" gorm:"column:sort_order;not null;default:0"`
}

func (Role) TableName() string {
	return "roles"
}

// RoleAssignment records that a user holds a role in a course context.
type RoleAssignment struct {
	ID       int64 `json:"id" gorm:"primaryKey"`
	RoleID   int64 `json:"role_id" gorm:"column:role_id;not null;index"`
	UserID   int64 `json:"user_id" gorm:"column:user_id;not null;index"`
	CourseID int64 `json:"course_id" gorm:"column:course_id;not null;index"`
}

func (RoleAssignment) TableName() string {
	return "role_assignments"
}
