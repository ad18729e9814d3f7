package product

import "github.com/shopspring/decimal"

func intPtr(v int) *int { return &v }

// SampleCatalog is served when the process runs without a database.
func SampleCatalog() []Product {
	return []Product{
		{ID: 1, Name: "Salmon Cat Food 1.5kg", Price: decimal.RequireFromString("10.00"), Stock: intPtr(50), ImageRef: "/api/v1/product/1/image"},
		{ID: 2, Name: "Rubber Chew Bone", Price: decimal.RequireFromString("5.00"), Stock: intPtr(120), ImageRef: "/api/v1/product/2/image"},
		{ID: 3, Name: "Clumping Cat Litter 10L", Price: decimal.RequireFromString("7.25"), Stock: intPtr(30), ImageRef: "/api/v1/product/3/image"},
		{ID: 4, Name: "Knitted Cat Sweater", Price: decimal.RequireFromString("12.90"), Stock: intPtr(3), ImageRef: "/api/v1/product/4/image"},
		{ID: 5, Name: "Feather Teaser Wand", Price: decimal.RequireFromString("2.50"), ImageRef: "/api/v1/product/5/image"},
	}
}
