package models

import (
	"time"
)

// Report is one run of the report-compilation pipeline. ReportName stays
// nil until the archive has been fully written.
type Report struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"not null;index" json:"user_id"`
	ReportName            *string    `gorm:"size:255" json:"report_name"`
	DateSubmittedToClient *time.Time `json:"date_submitted_to_client"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	ArticleReportContracts []ArticleReportContract `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"article_report_contracts"`
}

// ArticleReportContract links one article into one report with its
// assigned reference number. ArticleAcceptedByCpsc is nil until the client
// reviews the article (pending), then true or false.
type ArticleReportContract struct {
	ID                             uint      `gorm:"primaryKey" json:"id"`
	ReportID                       uint      `gorm:"not null;index" json:"report_id"`
	ArticleID                      uint      `gorm:"not null;index" json:"article_id"`
	ArticleReferenceNumberInReport string    `gorm:"size:20;not null" json:"article_reference_number_in_report"`
	ArticleAcceptedByCpsc          *bool     `json:"article_accepted_by_cpsc"`
	ArticleRejectionReason         string    `gorm:"type:text" json:"article_rejection_reason"`
	CreatedAt                      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
