// Package services – LifestyleService
//
// This file implements the staging generators for lifestyle (activity)
// products: given the normalized product payload, it derives the six staged
// tables with the product_index/rate_index helper columns the upload
// orchestrator uses to thread generated ids. Inventory rows are generated
// per rate per calendar day over a fixed forward horizon.
package services

import (
	"fmt"
	"time"

	"github.com/aahaas/go-contract-backend/internal/expand"
	"github.com/aahaas/go-contract-backend/internal/schema"
)

// InventoryHorizonDays is how far forward per-day lifestyle inventory rows
// are generated.
const InventoryHorizonDays = 210

// DefaultLifestyleAllotment is the per-day allotment when the product does
// not state one.
const DefaultLifestyleAllotment = 20

// LifestyleProduct is one activity product to stage.
type LifestyleProduct struct {
	Name        string          `json:"lifestyle_name"`
	Description string          `json:"description"`
	Vendor      string          `json:"vendor"`
	VendorID    string          `json:"vendor_id"`
	Status      string          `json:"status"`
	Longitude   string          `json:"longitude"`
	Latitude    string          `json:"latitude"`
	Terms       string          `json:"terms_and_conditions"`
	Rates       []LifestyleRate `json:"rates"`
}

// LifestyleRate is one price line of a product.
type LifestyleRate struct {
	Name        string `json:"rate_name"`
	Currency    string `json:"currency"`
	AdultRate   string `json:"adult_rate"`
	ChildRate   string `json:"child_rate"`
	PackageRate string `json:"package_rate"`
	BookByDays  string `json:"book_by_days"`
	MinAdult    string `json:"min_adult_occupancy"`
	MaxAdult    string `json:"max_adult_occupancy"`
	MinChild    string `json:"min_child_occupancy"`
	MaxChild    string `json:"max_child_occupancy"`
	Total       string `json:"total_occupancy"`
	Allotment   string `json:"allotment"`
}

// LifestyleService derives staged lifestyle tables.
type LifestyleService struct {
	// Now supplies the inventory horizon start; defaults to time.Now.
	Now func() time.Time
}

// NewLifestyleService constructs a LifestyleService.
func NewLifestyleService() *LifestyleService {
	return &LifestyleService{Now: time.Now}
}

// BuildTables derives all six staged lifestyle tables from the products.
// Row order follows product order; helper indexes are "p<product>" and
// "r<product>_<rate>".
func (s *LifestyleService) BuildTables(products []LifestyleProduct) map[string][]map[string]any {
	tables := map[string][]map[string]any{}
	start := s.Now().UTC().Truncate(24 * time.Hour)

	for pi, p := range products {
		productIndex := fmt.Sprintf("p%d", pi)

		tables[schema.TableLifestyle] = append(tables[schema.TableLifestyle], map[string]any{
			"product_index":  productIndex,
			"lifestyle_name": p.Name,
			"vendor_id":      p.VendorID,
			"status":         defaultStr(p.Status, "1"),
			"longitude":      p.Longitude,
			"latitude":       p.Latitude,
		})

		tables[schema.TableLifestyleDetail] = append(tables[schema.TableLifestyleDetail], map[string]any{
			"product_index": productIndex,
			"description":   p.Description,
		})

		if p.Terms != "" {
			tables[schema.TableLifestyleTerms] = append(tables[schema.TableLifestyleTerms], map[string]any{
				"product_index": productIndex,
				"general_tc":    p.Terms,
			})
		}

		for ri, r := range p.Rates {
			rateIndex := fmt.Sprintf("r%d_%d", pi, ri)

			tables[schema.TableLifestyleRates] = append(tables[schema.TableLifestyleRates], map[string]any{
				"product_index": productIndex,
				"rate_index":    rateIndex,
				"rate_name":     r.Name,
				"currency":      defaultStr(r.Currency, "USD"),
				"adult_rate":    r.AdultRate,
				"child_rate":    r.ChildRate,
				"package_rate":  r.PackageRate,
				"book_by_days":  defaultStr(r.BookByDays, "0"),
			})

			tables[schema.TableLifestylePackages] = append(tables[schema.TableLifestylePackages], map[string]any{
				"product_index":       productIndex,
				"rate_index":          rateIndex,
				"package_rate":        defaultStr(r.PackageRate, r.AdultRate),
				"adult_rate":          r.AdultRate,
				"child_rate":          r.ChildRate,
				"min_adult_occupancy": defaultStr(r.MinAdult, "1"),
				"max_adult_occupancy": defaultStr(r.MaxAdult, "2"),
				"min_child_occupancy": defaultStr(r.MinChild, "0"),
				"max_child_occupancy": defaultStr(r.MaxChild, "2"),
				"total_occupancy":     defaultStr(r.Total, "3"),
				"status":              "1",
			})

			allotment := expand.Int(r.Allotment, DefaultLifestyleAllotment)
			for day := 0; day < InventoryHorizonDays; day++ {
				date := start.AddDate(0, 0, day)
				tables[schema.TableLifestyleInventory] = append(tables[schema.TableLifestyleInventory], map[string]any{
					"product_index":  productIndex,
					"rate_index":     rateIndex,
					"inventory_date": expand.FormatDate(date),
					"allotment":      allotment,
					"used":           0,
					"balance":        allotment,
				})
			}
		}
	}
	return tables
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
