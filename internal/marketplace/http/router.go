package http

import "github.com/gin-gonic/gin"

// Register registers the marketplace routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/marketplace", h.ListMarketplace)
	rg.GET("/marketplace/faculties", h.ListFaculties)
	rg.POST("/marketplace/agreements", h.OpenAgreement)
	rg.GET("/marketplace/agreements/:id", h.GetAgreement)
	rg.POST("/marketplace/agreements/:id/document", h.AttachDocument)
	rg.POST("/marketplace/agreements/:id/submit", h.SubmitAgreement)
	rg.DELETE("/marketplace/agreements/:id", h.CancelAgreement)
}
