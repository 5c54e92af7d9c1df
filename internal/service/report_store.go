package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"newsnexus/internal/models"
	"newsnexus/internal/service/report"
)

// ReportStore is the gorm-backed persistence consumed by the report
// pipeline.
type ReportStore struct {
	db *gorm.DB

	// excludePreviouslyReported drops articles that already appear in an
	// earlier report from the selection.
	excludePreviouslyReported bool
}

var _ report.Store = (*ReportStore)(nil)

func NewReportStore(db *gorm.DB, excludePreviouslyReported bool) *ReportStore {
	return &ReportStore{db: db, excludePreviouslyReported: excludePreviouslyReported}
}

func (s *ReportStore) CreateReport(ctx context.Context, userID uint) (uint, error) {
	run := models.Report{UserID: userID}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return 0, fmt.Errorf("create report row: %w", err)
	}
	return run.ID, nil
}

// SelectApprovedArticles returns snapshots for the requested ids in the
// order they were requested. Ids without an approval record are excluded;
// the projection takes each article's most recent approval and, when
// present, its first assigned state.
func (s *ReportStore) SelectApprovedArticles(ctx context.Context, articleIDs []uint) ([]report.ArticleSnapshot, error) {
	if len(articleIDs) == 0 {
		return nil, nil
	}

	q := s.db.WithContext(ctx).
		Preload("Approvals").
		Preload("States").
		Where("id IN ?", articleIDs).
		Where("EXISTS (SELECT 1 FROM article_approveds aa WHERE aa.article_id = articles.id)")
	if s.excludePreviouslyReported {
		q = q.Where("NOT EXISTS (SELECT 1 FROM article_report_contracts arc WHERE arc.article_id = articles.id)")
	}

	var articles []models.Article
	if err := q.Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("select approved articles: %w", err)
	}

	byID := make(map[uint]models.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	snapshots := make([]report.ArticleSnapshot, 0, len(articles))
	for _, id := range articleIDs {
		a, ok := byID[id]
		if !ok {
			continue
		}
		approval := latestApproval(a.Approvals)
		snap := report.ArticleSnapshot{
			ArticleID:     a.ID,
			Headline:      approval.HeadlineForPDFReport,
			Publication:   approval.PublicationNameForPDFReport,
			DatePublished: approval.PublicationDateForPDFReport,
			Text:          approval.TextForPDFReport,
			URL:           approval.URLForPDFReport,
			Notes:         approval.KmNotes,
		}
		if len(a.States) > 0 {
			snap.StateAbbreviation = a.States[0].Abbreviation
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func latestApproval(approvals []models.ArticleApproved) models.ArticleApproved {
	if len(approvals) == 0 {
		return models.ArticleApproved{}
	}
	latest := approvals[0]
	for _, a := range approvals[1:] {
		if a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	return latest
}

// CreateLinkages writes every linkage row in one transaction; a failure
// leaves zero rows.
func (s *ReportStore) CreateLinkages(ctx context.Context, reportID uint, linkages []report.Linkage) error {
	if len(linkages) == 0 {
		return nil
	}
	rows := make([]models.ArticleReportContract, len(linkages))
	for i, l := range linkages {
		rows[i] = models.ArticleReportContract{
			ReportID:                       reportID,
			ArticleID:                      l.ArticleID,
			ArticleReferenceNumberInReport: l.ReferenceNumber,
		}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("create report linkages: %w", err)
	}
	return nil
}

func (s *ReportStore) SaveReportArchiveName(ctx context.Context, reportID uint, filename string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ?", reportID).
		Update("report_name", filename)
	if res.Error != nil {
		return fmt.Errorf("save report archive name: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("report %d not found", reportID)
	}
	return nil
}
