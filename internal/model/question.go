package model

// Question is one of the 150 seeded guided prompts, partitioned into 4 boxes
// (15/45/45/45). Reference data: never mutated after seeding.
type Question struct {
	ID         uint   `gorm:"primaryKey"`
	Box        int    `gorm:"index:idx_question_box_number,unique;not null"`
	Number     int    `gorm:"index:idx_question_box_number,unique;not null"`
	Text       string `gorm:"not null"`
	CategoryID *uint  `gorm:"index"`
}

// BoxCount is the number of question boxes.
const BoxCount = 4

// BoxSizes holds the fixed number of questions per box, indexed by box-1.
var BoxSizes = [BoxCount]int{15, 45, 45, 45}

// TotalQuestions is the size of the whole catalog.
const TotalQuestions = 150
