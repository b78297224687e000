package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/petmarket/petmarket-backend/internal/app/service"
	apperrors "github.com/petmarket/petmarket-backend/internal/errors"
	"github.com/petmarket/petmarket-backend/internal/middleware"
	"github.com/petmarket/petmarket-backend/internal/storage"
)

type ProductController struct {
	productService service.ProductService
	storage        *storage.S3Storage
}

// NewProductController builds the controller. s3 may be nil, in which
// case upload-url requests are rejected.
func NewProductController(productService service.ProductService, s3 *storage.S3Storage) *ProductController {
	return &ProductController{
		productService: productService,
		storage:        s3,
	}
}

type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// List returns the whole catalog ordered by name
// GET /api/products
func (ctrl *ProductController) List(c *gin.Context) {
	products, err := ctrl.productService.ListProducts()
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, products)
}

// Random returns a random selection of products
// GET /api/products/random?count=
func (ctrl *ProductController) Random(c *gin.Context) {
	count, _ := strconv.Atoi(c.DefaultQuery("count", "3"))

	products, err := ctrl.productService.RandomProducts(count)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get returns one product by id
// GET /api/products/:id
func (ctrl *ProductController) Get(c *gin.Context) {
	id := c.Param("id")

	product, err := ctrl.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, product)
}

// Create adds a product to the catalog
// POST /api/products
func (ctrl *ProductController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name and price are required")
		return
	}

	product, err := ctrl.productService.CreateProduct(input)
	if err != nil {
		log.Error("Product creation failed", err, map[string]interface{}{
			"name": input.Name,
		})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// Export streams the catalog as an .xlsx workbook
// GET /api/products/export
func (ctrl *ProductController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.ListProducts()
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Products"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Name", "Price", "Category", "Animal", "Origin", "Weight", "Image"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, p := range products {
		values := []interface{}{p.ID, p.Name, p.Price, p.Category, p.Animal, p.Origin, p.Weight, p.Image}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("catalog-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		log.Error("Catalog export failed", err, nil)
	}
}

// UploadURL returns a presigned S3 PUT URL for a product image
// POST /api/products/upload-url
func (ctrl *ProductController) UploadURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.storage == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.UploadFailed, "Uploads are not configured")
		return
	}

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "filename and content_type are required")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, err.Error())
		return
	}

	resp, err := ctrl.storage.PresignUpload(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		log.Error("Failed to presign upload", err, map[string]interface{}{
			"filename": req.Filename,
		})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Health reports service liveness
// GET /api/products/health
func (ctrl *ProductController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"service": "products",
	})
}
