package dashboard

import (
	"net/http"

	"inventory-app/database"
	"inventory-app/internal/domain/products"

	"github.com/gin-gonic/gin"
)

// Overview summarizes the inventory: totals plus the products whose stock
// has fallen to their alert threshold.
func Overview(c *gin.Context) {
	var totalProducts int64
	if err := database.DB.Model(&products.Product{}).Count(&totalProducts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	var totalCategories int64
	if err := database.DB.Model(&products.Category{}).Count(&totalCategories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	var lowStock []products.Product
	if err := database.DB.
		Where("quantity <= alert_threshold").
		Order("quantity").
		Find(&lowStock).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_products":   totalProducts,
		"total_categories": totalCategories,
		"low_stock_count":  len(lowStock),
		"low_stock":        lowStock,
	})
}
