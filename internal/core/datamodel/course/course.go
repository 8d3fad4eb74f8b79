package course

import "time"

// Course mirrors the host platform's course table. The record whose
// shortname equals the configured root course is the site placeholder and is
// excluded from every export.
type Course struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	Shortname  string    `json:"shortname" gorm:"not null;uniqueIndex"`
	Fullname   string    `json:"fullname" gorm:"not null"`
	CategoryID int64     `json:"category_id" gorm:"column:category_id;not null"`
	IDNumber   string    `json:"idnumber" gorm:"column:idnumber"`
	StartDate  time.Time `json:"startdate" gorm:"column:startdate"`
	Visible    bool      `json:"visible" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Course) TableName() string {
	return "courses"
}

// Category is one node of the course category tree. ParentID 0 marks a
// top-level category.
type Category struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null"`
	ParentID int64  `json:"parent_id" gorm:"column:parent_id;not null;default:0"`
}

func (Category) TableName() string {
	return "course_categories"
}
