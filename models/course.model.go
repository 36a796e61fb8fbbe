package models

import "gorm.io/gorm"

// Course represents a learning course
type Course struct {
	gorm.Model
	Title           string `json:"title"`
	Description     string `json:"description" gorm:"type:text"`
	Category        string `json:"category"`
	Level           string `json:"level" gorm:"default:'BEGINNER'"` // BEGINNER, INTERMEDIATE, ADVANCED
	Price           uint   `json:"price" gorm:"default:0"`          // list price, 0 means free
	DiscountPrice   uint   `json:"discount_price" gorm:"default:0"` // takes precedence over Price when set
	EnrollmentLimit int    `json:"enrollment_limit" gorm:"default:0"`
	// TotalEnrollments is a cached counter maintained by the enrollment service.
	TotalEnrollments int    `json:"total_enrollments" gorm:"default:0"`
	Duration         int64  `json:"duration" gorm:"default:0"` // duration in hours
	ThumbnailURL     string `json:"thumbnail_url"`
	IsPublished      bool   `json:"is_published" gorm:"default:false"`
	CreatedBy        uint   `json:"created_by" gorm:"index"`
	IsDeleted        bool   `gorm:"default:false" json:"-"`
}

// EffectivePrice is the price a student actually pays.
func (c *Course) EffectivePrice() uint {
	if c.DiscountPrice > 0 {
		return c.DiscountPrice
	}
	return c.Price
}

// Section represents an ordered group of lessons within a course
type Section struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsDeleted   bool   `gorm:"default:false" json:"-"`
}

// Lesson represents a single unit of content within a section.
// CourseID is denormalized so progress queries do not need a join through Section.
type Lesson struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	SectionID   uint   `json:"section_id" gorm:"index;not null"`
	Title       string `json:"title"`
	ContentType string `json:"content_type" gorm:"default:'TEXT'"` // TEXT, VIDEO
	TextContent string `json:"text_content" gorm:"type:text"`
	VideoURL    string `json:"video_url"`
	Duration    int    `json:"duration" gorm:"default:0"` // duration in minutes
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsDeleted   bool   `gorm:"default:false" json:"-"`
}
