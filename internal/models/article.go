package models

import (
	"time"
)

type Article struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:500" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	URL             string     `gorm:"size:2048" json:"url"`
	PublicationName string     `gorm:"size:255" json:"publication_name"`
	PublishedDate   *time.Time `json:"published_date"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	States          []State                 `gorm:"many2many:article_state_contracts" json:"states"`
	Approvals       []ArticleApproved       `gorm:"foreignKey:ArticleID" json:"approvals"`
	RelevanceMarks  []ArticleIsRelevant     `gorm:"foreignKey:ArticleID" json:"relevance_marks"`
	ReportContracts []ArticleReportContract `gorm:"foreignKey:ArticleID" json:"report_contracts"`
}

// State is a US state an article can be tagged with.
type State struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Abbreviation string `gorm:"size:10" json:"abbreviation"`
}

// ArticleApproved records one reviewer approval, including the edited
// field values that go into report documents.
type ArticleApproved struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;index" json:"article_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	HeadlineForPDFReport        string `gorm:"size:500" json:"headline_for_pdf_report"`
	PublicationNameForPDFReport string `gorm:"size:255" json:"publication_name_for_pdf_report"`
	PublicationDateForPDFReport string `gorm:"size:50" json:"publication_date_for_pdf_report"`
	TextForPDFReport            string `gorm:"type:text" json:"text_for_pdf_report"`
	URLForPDFReport             string `gorm:"size:2048" json:"url_for_pdf_report"`
	KmNotes                     string `gorm:"type:text" json:"km_notes"`
}

// ArticleIsRelevant marks an article as not relevant; absence of a row
// means relevant.
type ArticleIsRelevant struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ArticleID  uint      `gorm:"not null;index" json:"article_id"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	IsRelevant bool      `json:"is_relevant"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
