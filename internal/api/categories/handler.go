package categories

import (
	"net/http"

	"inventory-app/database"
	"inventory-app/internal/domain/products"

	"github.com/gin-gonic/gin"
)

func ListCategories(c *gin.Context) {
	var list []products.Category
	if err := database.DB.Order("name").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func CreateCategory(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := products.Category{Name: input.Name}
	if err := database.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Category may already exist"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func DeleteCategory(c *gin.Context) {
	res := database.DB.Where("id = ?", c.Param("id")).Delete(&products.Category{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
