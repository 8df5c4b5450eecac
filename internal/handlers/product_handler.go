package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"moonal-billing/internal/database"
	"moonal-billing/internal/models"

	"github.com/gin-gonic/gin"
)

// Dropdown options for the catalog forms. Closed lists keep the register
// exports consistent.
var (
	ProductUnits      = []string{"Ltr", "Kg", "Pcs", "Box", "Drum", "Barrel", "Gallon", "Pack"}
	ProductCategories = []string{"Lubricant", "Engine Oil", "Gear Oil", "Hydraulic Oil", "Grease", "Coolant", "Brake Fluid", "Transmission Fluid", "Other"}
)

// --- GET: List or search products ---
func GetProducts(c *gin.Context) {
	query := database.DB.Order("name asc")

	if search := c.Query("search"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(hs_code) LIKE ? OR LOWER(category) LIKE ?", like, like, like)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// --- GET: Form options ---
func GetProductOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"units":      ProductUnits,
		"categories": ProductCategories,
	})
}

// --- POST: Add a new product ---
func AddProduct(c *gin.Context) {
	var newProduct models.Product
	if err := c.ShouldBindJSON(&newProduct); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	newProduct.Name = strings.TrimSpace(newProduct.Name)
	if newProduct.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product name is required"})
		return
	}
	if newProduct.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be non-negative"})
		return
	}

	if err := database.DB.Create(&newProduct).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, newProduct)
}

// --- PUT: Update a product ---
func UpdateProduct(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Product ID"})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	// We use a map so we only update what was sent (partial update)
	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := database.DB.Model(&product).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// --- DELETE: Remove a product ---
// Products referenced by invoice lines cannot be removed: historical
// documents join against the live catalog row for display.
func DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	var count int64
	database.DB.Model(&models.InvoiceItem{}).Where("product_id = ?", id).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product is referenced by existing invoices and cannot be deleted"})
		return
	}

	if err := database.DB.Delete(&models.Product{}, id).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
