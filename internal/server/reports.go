package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newsnexus/internal/service"
	"newsnexus/internal/service/report"
)

type createReportRequest struct {
	ArticleIDs []uint `json:"articlesIdArrayForReport"`
}

func (s *Server) handleCreateReport(c *gin.Context) {
	var body createReportRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.ReportService.GenerateReport(c.Request.Context(), currentUserID(c), body.ArticleIDs)
	if err != nil {
		step, _ := report.StepOf(err)
		s.Logger.Error("Report generation failed",
			zap.String("step", string(step)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "step": string(step)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Report created",
		"reportId":     result.ReportID,
		"zipFilename":  result.ArchiveFilename,
		"articleCount": result.ArticleCount,
	})
}

func (s *Server) handleListReports(c *gin.Context) {
	reports, err := s.ReportService.ListReports(c.Request.Context())
	if err != nil {
		s.Logger.Error("Failed to list reports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reportsArray": reports})
}

func (s *Server) handleListReportFiles(c *gin.Context) {
	files, err := s.ReportService.ListArchiveFiles()
	if err != nil {
		s.Logger.Error("Failed to list report files", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"result": false, "message": "Reports directory not available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": true, "reports": files})
}

func (s *Server) handleDownloadReport(c *gin.Context) {
	reportID, ok := parseUintParam(c, "reportId")
	if !ok {
		return
	}

	path, filename, err := s.ReportService.ArchivePath(c.Request.Context(), reportID)
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"result": false, "message": "Report not found."})
			return
		}
		s.Logger.Error("Failed to resolve report archive", zap.Uint("report_id", reportID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"result": false, "message": "File not found."})
		return
	}

	c.FileAttachment(path, filename)
}

func (s *Server) handleDeleteReport(c *gin.Context) {
	reportID, ok := parseUintParam(c, "reportId")
	if !ok {
		return
	}

	if err := s.ReportService.DeleteReport(c.Request.Context(), reportID); err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"result": false, "message": "Report not found."})
			return
		}
		s.Logger.Error("Failed to delete report", zap.Uint("report_id", reportID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"result": false, "message": "Failed to delete report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": true, "message": "Report deleted successfully."})
}

type markSubmittedRequest struct {
	DateSubmittedToClient string `json:"dateSubmittedToClient" binding:"required"`
}

func (s *Server) handleMarkSubmitted(c *gin.Context) {
	reportID, ok := parseUintParam(c, "reportId")
	if !ok {
		return
	}

	var body markSubmittedRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	submittedAt, err := parseClientDate(body.DateSubmittedToClient)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dateSubmittedToClient"})
		return
	}

	if err := s.ReportService.MarkSubmitted(c.Request.Context(), reportID, submittedAt); err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"result": false, "message": "Report not found."})
			return
		}
		s.Logger.Error("Failed to mark report submitted", zap.Uint("report_id", reportID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"result": false, "message": "Failed to update report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": true, "message": "Submissions status updated successfully."})
}

func parseClientDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

type toggleRejectionRequest struct {
	ArticleRejectionReason string `json:"articleRejectionReason"`
}

func (s *Server) handleToggleArticleRejection(c *gin.Context) {
	contractID, ok := parseUintParam(c, "contractId")
	if !ok {
		return
	}

	var body toggleRejectionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := s.ReportService.ToggleArticleRejection(c.Request.Context(), contractID, body.ArticleRejectionReason)
	if err != nil {
		if errors.Is(err, service.ErrContractNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"result": false, "message": "Article Report Contract not found."})
			return
		}
		s.Logger.Error("Failed to toggle article rejection", zap.Uint("contract_id", contractID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"result": false, "message": "Failed to update contract"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":                true,
		"message":               "Article rejection toggled successfully.",
		"articleReportContract": contract,
	})
}

type updateReferenceNumberRequest struct {
	ArticleReferenceNumberInReport string `json:"articleReferenceNumberInReport" binding:"required"`
}

func (s *Server) handleUpdateReferenceNumber(c *gin.Context) {
	contractID, ok := parseUintParam(c, "contractId")
	if !ok {
		return
	}

	var body updateReferenceNumberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := s.ReportService.UpdateReferenceNumber(c.Request.Context(), contractID, body.ArticleReferenceNumberInReport)
	if err != nil {
		if errors.Is(err, service.ErrContractNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"result": false, "message": "Article Report Contract not found."})
			return
		}
		s.Logger.Error("Failed to update reference number", zap.Uint("contract_id", contractID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"result": false, "message": "Failed to update contract"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":                true,
		"message":               "Article report reference number updated successfully.",
		"articleReportContract": contract,
	})
}
