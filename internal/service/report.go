package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"newsnexus/internal/config"
	"newsnexus/internal/metrics"
	"newsnexus/internal/models"
	"newsnexus/internal/service/report"
)

// ReportService owns the report pipeline plus the surrounding report CRUD.
type ReportService struct {
	db        *gorm.DB
	logger    *zap.Logger
	cfg       config.ReportsConfig
	generator *report.Generator
}

func NewReportService(cfg config.ReportsConfig, db *gorm.DB, logger *zap.Logger) (*ReportService, error) {
	store := NewReportStore(db, cfg.ExcludePreviouslyReported)
	generator, err := report.NewGenerator(cfg, store, logger)
	if err != nil {
		return nil, fmt.Errorf("build report generator: %w", err)
	}
	return &ReportService{
		db:        db,
		logger:    logger,
		cfg:       cfg,
		generator: generator,
	}, nil
}

// GenerateReport runs the pipeline once for the given articles and records
// the outcome in metrics.
func (s *ReportService) GenerateReport(ctx context.Context, userID uint, articleIDs []uint) (*report.Result, error) {
	result, err := s.generator.Generate(ctx, userID, articleIDs)
	if err != nil {
		outcome := "unknown"
		if step, ok := report.StepOf(err); ok {
			outcome = string(step)
		}
		metrics.ReportsGenerated.WithLabelValues(outcome).Inc()
		return nil, err
	}
	metrics.ReportsGenerated.WithLabelValues("success").Inc()
	if result.CleanupWarning != nil {
		metrics.ReportCleanupWarnings.Inc()
	}
	return result, nil
}

func (s *ReportService) ListReports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.WithContext(ctx).
		Preload("ArticleReportContracts").
		Order("id").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// ListArchiveFiles returns the bundle files currently on disk.
func (s *ReportService) ListArchiveFiles() ([]string, error) {
	if s.cfg.Dir == "" {
		return nil, errors.New("reports directory is not configured")
	}
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("read reports directory: %w", err)
	}
	var zips []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".zip") {
			zips = append(zips, entry.Name())
		}
	}
	return zips, nil
}

var ErrReportNotFound = errors.New("report not found")

// ArchivePath resolves a report's archive on disk for download.
func (s *ReportService) ArchivePath(ctx context.Context, reportID uint) (path, filename string, err error) {
	var run models.Report
	if err := s.db.WithContext(ctx).First(&run, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrReportNotFound
		}
		return "", "", fmt.Errorf("lookup report: %w", err)
	}
	if run.ReportName == nil {
		return "", "", fmt.Errorf("report %d has no archive", reportID)
	}
	p := filepath.Join(s.cfg.Dir, *run.ReportName)
	if _, err := os.Stat(p); err != nil {
		return "", "", fmt.Errorf("archive file missing: %w", err)
	}
	return p, *run.ReportName, nil
}

// DeleteReport removes the report row (linkages cascade) and its archive
// file when one exists.
func (s *ReportService) DeleteReport(ctx context.Context, reportID uint) error {
	var run models.Report
	if err := s.db.WithContext(ctx).First(&run, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return fmt.Errorf("lookup report: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", reportID).Delete(&models.ArticleReportContract{}).Error; err != nil {
			return err
		}
		return tx.Delete(&run).Error
	})
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}

	if run.ReportName != nil && s.cfg.Dir != "" {
		path := filepath.Join(s.cfg.Dir, *run.ReportName)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove report archive",
				zap.String("path", path),
				zap.Error(err))
		}
	}
	return nil
}

// MarkSubmitted records when the report bundle was handed to the client.
func (s *ReportService) MarkSubmitted(ctx context.Context, reportID uint, submittedAt time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ?", reportID).
		Update("date_submitted_to_client", submittedAt)
	if res.Error != nil {
		return fmt.Errorf("mark report submitted: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}

var ErrContractNotFound = errors.New("article report contract not found")

// ToggleArticleRejection flips a linkage between accepted and rejected.
// A pending linkage (never reviewed) becomes accepted.
func (s *ReportService) ToggleArticleRejection(ctx context.Context, contractID uint, reason string) (*models.ArticleReportContract, error) {
	var contract models.ArticleReportContract
	if err := s.db.WithContext(ctx).First(&contract, contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("lookup contract: %w", err)
	}

	accepted := contract.ArticleAcceptedByCpsc == nil || !*contract.ArticleAcceptedByCpsc
	contract.ArticleAcceptedByCpsc = &accepted
	contract.ArticleRejectionReason = reason
	if err := s.db.WithContext(ctx).Save(&contract).Error; err != nil {
		return nil, fmt.Errorf("save contract: %w", err)
	}
	return &contract, nil
}

// UpdateReferenceNumber overrides a linkage's reference number. This is a
// manual correction tool; the pipeline never changes an assigned number.
func (s *ReportService) UpdateReferenceNumber(ctx context.Context, contractID uint, refNumber string) (*models.ArticleReportContract, error) {
	var contract models.ArticleReportContract
	if err := s.db.WithContext(ctx).First(&contract, contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("lookup contract: %w", err)
	}

	contract.ArticleReferenceNumberInReport = refNumber
	if err := s.db.WithContext(ctx).Save(&contract).Error; err != nil {
		return nil, fmt.Errorf("save contract: %w", err)
	}
	return &contract, nil
}
