package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/petmarket/petmarket-backend/config"
	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/internal/app/repository"
	"github.com/petmarket/petmarket-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Expected column order: Name, Price, Category, Animal, Origin, Weight, Image.
// The first row is treated as a header and skipped.

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	for i := range products {
		if err := productRepo.Create(&products[i]); err != nil {
			log.Printf("Failed to import product %q: %v", products[i].Name, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed.")
	fmt.Printf("Total products imported: %d/%d\n", imported, len(products))
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheetName)
	}

	var products []model.Product
	for i, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(cell(row, 0)) == "" {
			continue
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(cell(row, 1)), 64)
		if err != nil {
			log.Printf("Skipping row %d: invalid price %q", i+2, cell(row, 1))
			continue
		}

		// Weight is optional, rows without one import as zero.
		weight, _ := strconv.ParseFloat(strings.TrimSpace(cell(row, 5)), 64)

		products = append(products, model.Product{
			Name:     strings.TrimSpace(cell(row, 0)),
			Price:    price,
			Category: strings.TrimSpace(cell(row, 2)),
			Animal:   strings.TrimSpace(cell(row, 3)),
			Origin:   strings.TrimSpace(cell(row, 4)),
			Weight:   weight,
			Image:    strings.TrimSpace(cell(row, 6)),
		})
	}
	return products, nil
}

// cell returns the column value, empty when the row is short
// (excelize trims trailing empty cells).
func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
