package catalogue

import "time"

// AcademicYear is addressed by its starting calendar year.
type AcademicYear struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Year      int       `gorm:"column:year;not null;uniqueIndex" json:"year"`
	StartDate time.Time `gorm:"column:start_date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"column:end_date;not null" json:"end_date"`
}

func (AcademicYear) TableName() string { return "academic_year" }

func (a AcademicYear) Contains(t time.Time) bool {
	return !t.Before(a.StartDate) && !t.After(a.EndDate)
}

// Campus and Language are reference tables; learning unit years point at them by id.
type Campus struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name string `gorm:"column:name;not null" json:"name"`
}

func (Campus) TableName() string { return "campus" }

type Language struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name string `gorm:"column:name;not null" json:"name"`
}

func (Language) TableName() string { return "language" }
