// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import "github.com/pdiddy/storefront/pkg/types"

// Fixture returns the sample catalog the recommendation service's demo data
// refers to (item0 through item4).
func Fixture() []types.Product {
	return []types.Product{
		{
			ID:        "item0",
			Name:      "Gaming Laptop",
			Price:     1299.99,
			Category:  "Electronics",
			Tags:      []string{"gaming", "laptop", "high-performance"},
			ImageURLs: []string{},
		},
		{
			ID:        "item1",
			Name:      "Wireless Bluetooth Earbuds",
			Price:     129.99,
			Category:  "Electronics",
			Tags:      []string{"audio", "wireless", "bluetooth"},
			ImageURLs: []string{},
		},
		{
			ID:        "item2",
			Name:      "Smart Fitness Watch",
			Price:     199.95,
			Category:  "Wearables",
			Tags:      []string{"fitness", "smartwatch", "health"},
			ImageURLs: []string{},
		},
		{
			ID:        "item3",
			Name:      "Ergonomic Office Chair",
			Price:     249.50,
			Category:  "Furniture",
			Tags:      []string{"office", "ergonomic", "chair"},
			ImageURLs: []string{},
		},
		{
			ID:        "item4",
			Name:      "Mechanical Gaming Keyboard",
			Price:     89.99,
			Category:  "Electronics",
			Tags:      []string{"gaming", "keyboard", "mechanical"},
			ImageURLs: []string{},
		},
	}
}
