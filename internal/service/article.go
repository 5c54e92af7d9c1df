package service

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"newsnexus/internal/models"
)

// ArticleService handles article listing and reviewer annotations.
type ArticleService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewArticleService(db *gorm.DB, logger *zap.Logger) *ArticleService {
	return &ArticleService{db: db, logger: logger}
}

// ArticleView is an article with its review flags flattened for the UI.
type ArticleView struct {
	models.Article
	StateNames string `json:"state_names"`
	IsRelevant bool   `json:"is_relevant"`
	IsApproved bool   `json:"is_approved"`
}

func (s *ArticleService) ListArticles(ctx context.Context) ([]ArticleView, error) {
	var articles []models.Article
	err := s.db.WithContext(ctx).
		Preload("States").
		Preload("Approvals").
		Preload("RelevanceMarks").
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	views := make([]ArticleView, len(articles))
	for i, a := range articles {
		names := ""
		for j, st := range a.States {
			if j > 0 {
				names += ", "
			}
			names += st.Name
		}
		relevant := true
		for _, m := range a.RelevanceMarks {
			if !m.IsRelevant {
				relevant = false
				break
			}
		}
		views[i] = ArticleView{
			Article:    a,
			StateNames: names,
			IsRelevant: relevant,
			IsApproved: len(a.Approvals) > 0,
		}
	}
	return views, nil
}

// ToggleRelevance flips an article between relevant and not relevant for
// the given user. Returns the resulting relevance.
func (s *ArticleService) ToggleRelevance(ctx context.Context, articleID, userID uint) (bool, error) {
	var existing models.ArticleIsRelevant
	err := s.db.WithContext(ctx).Where("article_id = ?", articleID).First(&existing).Error
	switch {
	case err == nil:
		if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return false, fmt.Errorf("remove relevance mark: %w", err)
		}
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		mark := models.ArticleIsRelevant{ArticleID: articleID, UserID: userID, IsRelevant: false}
		if err := s.db.WithContext(ctx).Create(&mark).Error; err != nil {
			return false, fmt.Errorf("create relevance mark: %w", err)
		}
		return false, nil
	default:
		return false, fmt.Errorf("lookup relevance mark: %w", err)
	}
}

// ApprovalInput carries the reviewer-edited values that end up in report
// documents.
type ApprovalInput struct {
	HeadlineForPDFReport        string `json:"headlineForPdfReport"`
	PublicationNameForPDFReport string `json:"publicationNameForPdfReport"`
	PublicationDateForPDFReport string `json:"publicationDateForPdfReport"`
	TextForPDFReport            string `json:"textForPdfReport"`
	URLForPDFReport             string `json:"urlForPdfReport"`
	KmNotes                     string `json:"kmNotes"`
}

// Approve records an approval for the article. Unapprove removes all
// approvals, returning it to the unreviewed pool.
func (s *ArticleService) Approve(ctx context.Context, articleID, userID uint, input ApprovalInput) error {
	approval := models.ArticleApproved{
		ArticleID:                   articleID,
		UserID:                      userID,
		HeadlineForPDFReport:        input.HeadlineForPDFReport,
		PublicationNameForPDFReport: input.PublicationNameForPDFReport,
		PublicationDateForPDFReport: input.PublicationDateForPDFReport,
		TextForPDFReport:            input.TextForPDFReport,
		URLForPDFReport:             input.URLForPDFReport,
		KmNotes:                     input.KmNotes,
	}
	if err := s.db.WithContext(ctx).Create(&approval).Error; err != nil {
		return fmt.Errorf("create approval: %w", err)
	}
	return nil
}

func (s *ArticleService) Unapprove(ctx context.Context, articleID uint) error {
	err := s.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Delete(&models.ArticleApproved{}).Error
	if err != nil {
		return fmt.Errorf("remove approvals: %w", err)
	}
	return nil
}

type SummaryStatistics struct {
	ArticlesCount  int64 `json:"articlesCount"`
	RelevantCount  int64 `json:"articlesIsRelevantCount"`
	ApprovedCount  int64 `json:"articlesIsApprovedCount"`
	WithStateCount int64 `json:"hasStateAssigned"`
}

// SummaryStatistics computes review-progress counts in one SQL round trip.
func (s *ArticleService) SummaryStatistics(ctx context.Context) (*SummaryStatistics, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query := builder.Select(
		"COUNT(*) AS articles_count",
		"COUNT(*) FILTER (WHERE NOT EXISTS (SELECT 1 FROM article_is_relevants r WHERE r.article_id = a.id AND r.is_relevant = false)) AS relevant_count",
		"COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM article_approveds ap WHERE ap.article_id = a.id)) AS approved_count",
		"COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM article_state_contracts sc WHERE sc.article_id = a.id)) AS with_state_count",
	).From("articles a")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build statistics query: %w", err)
	}

	var stats SummaryStatistics
	err = s.db.WithContext(ctx).Raw(sqlStr, args...).
		Row().
		Scan(&stats.ArticlesCount, &stats.RelevantCount, &stats.ApprovedCount, &stats.WithStateCount)
	if err != nil {
		return nil, fmt.Errorf("run statistics query: %w", err)
	}
	return &stats, nil
}
