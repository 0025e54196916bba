package products

import (
	"errors"
	"net/http"

	"inventory-app/database"
	"inventory-app/internal/domain/products"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type productInput struct {
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	AlertThreshold *int    `json:"alert_threshold"`
	CategoryID     *uint   `json:"category_id"`
}

func ListProducts(c *gin.Context) {
	var list []products.Product
	if err := database.DB.Preload("Category").Order("name").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func GetProduct(c *gin.Context) {
	var product products.Product
	err := database.DB.Preload("Category").Where("id = ?", c.Param("id")).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func CreateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Quantity < 0 || input.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price and quantity must not be negative"})
		return
	}

	product := products.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		CategoryID:  input.CategoryID,
	}
	if input.AlertThreshold != nil {
		product.AlertThreshold = *input.AlertThreshold
	} else {
		product.AlertThreshold = 5
	}

	if err := database.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func UpdateProduct(c *gin.Context) {
	var product products.Product
	err := database.DB.Where("id = ?", c.Param("id")).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Quantity < 0 || input.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price and quantity must not be negative"})
		return
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Quantity = input.Quantity
	product.CategoryID = input.CategoryID
	if input.AlertThreshold != nil {
		product.AlertThreshold = *input.AlertThreshold
	}

	if err := database.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func DeleteProduct(c *gin.Context) {
	res := database.DB.Where("id = ?", c.Param("id")).Delete(&products.Product{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
