package handler

import (
	"quicknotes/model"
	"quicknotes/utils"

	"github.com/gin-gonic/gin"
)

// GetCategories lists the categories with their display metadata.
func GetCategories(c *gin.Context) {
	utils.Success(c, model.Categories())
}
