package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newsnexus/internal/service"
)

func (s *Server) handleListArticles(c *gin.Context) {
	articles, err := s.ArticleService.ListArticles(c.Request.Context())
	if err != nil {
		s.Logger.Error("Failed to list articles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list articles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articlesArray": articles})
}

type approveArticleRequest struct {
	IsApproved bool `json:"isApproved"`
	service.ApprovalInput
}

func (s *Server) handleApproveArticle(c *gin.Context) {
	articleID, ok := parseUintParam(c, "articleId")
	if !ok {
		return
	}

	var body approveArticleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var err error
	if body.IsApproved {
		err = s.ArticleService.Approve(ctx, articleID, currentUserID(c), body.ApprovalInput)
	} else {
		err = s.ArticleService.Unapprove(ctx, articleID)
	}
	if err != nil {
		s.Logger.Error("Failed to update approval", zap.Uint("article_id", articleID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update approval"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": true})
}

func (s *Server) handleToggleRelevance(c *gin.Context) {
	articleID, ok := parseUintParam(c, "articleId")
	if !ok {
		return
	}

	relevant, err := s.ArticleService.ToggleRelevance(c.Request.Context(), articleID, currentUserID(c))
	if err != nil {
		s.Logger.Error("Failed to toggle relevance", zap.Uint("article_id", articleID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle relevance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": true, "articleIsRelevant": relevant})
}

func (s *Server) handleSummaryStatistics(c *gin.Context) {
	stats, err := s.ArticleService.SummaryStatistics(c.Request.Context())
	if err != nil {
		s.Logger.Error("Failed to compute summary statistics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaryStatistics": stats})
}
