package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/colombiang/sales-mcp/internal/search"
)

type searchTextInput struct {
	Query    string   `json:"query" jsonschema:"free-text description of the product"`
	MinPrice *float64 `json:"min_price,omitempty" jsonschema:"only return products at or above this price"`
	MaxPrice *float64 `json:"max_price,omitempty" jsonschema:"only return products at or below this price"`
	InStock  *bool    `json:"in_stock,omitempty" jsonschema:"true restricts to products with stock available, false to out-of-stock products"`
	Category string   `json:"category,omitempty" jsonschema:"only return products in this category"`
	Top      int      `json:"top,omitempty" jsonschema:"maximum results, clamped into [1,50], default 5"`
}

type searchTextOutput struct {
	toolStatus
	Results    []search.Result `json:"results,omitempty"`
	Count      int             `json:"count"`
	SearchType string          `json:"search_type,omitempty"`
}

type searchSKUInput struct {
	SKU string `json:"sku" jsonschema:"exact product SKU, case insensitive"`
}

type searchSKUOutput struct {
	toolStatus
	Result *search.Result `json:"result,omitempty"`
}

func (s *Server) registerSearchTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_product_by_text",
		Description: "Search the product index by free text with optional price, stock and category filters.",
	}, s.searchProductByText)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_product_by_sku",
		Description: "Look up a single product in the index by its exact SKU.",
	}, s.searchProductBySKU)
}

func (s *Server) searchProductByText(ctx context.Context, req *mcp.CallToolRequest, input searchTextInput) (*mcp.CallToolResult, searchTextOutput, error) {
	if s.deps.Search == nil {
		return nil, searchTextOutput{toolStatus: s.failStatus("search_product_by_text", notConfigured("product search"))}, nil
	}
	results, searchType, err := s.deps.Search.SearchByText(ctx, search.TextQuery{
		Text:     input.Query,
		MinPrice: input.MinPrice,
		MaxPrice: input.MaxPrice,
		InStock:  input.InStock,
		Category: input.Category,
		Top:      input.Top,
	})
	if err != nil {
		return nil, searchTextOutput{toolStatus: s.failStatus("search_product_by_text", err)}, nil
	}
	return nil, searchTextOutput{toolStatus: okStatus(), Results: results, Count: len(results), SearchType: searchType}, nil
}

func (s *Server) searchProductBySKU(ctx context.Context, req *mcp.CallToolRequest, input searchSKUInput) (*mcp.CallToolResult, searchSKUOutput, error) {
	if s.deps.Search == nil {
		return nil, searchSKUOutput{toolStatus: s.failStatus("search_product_by_sku", notConfigured("product search"))}, nil
	}
	result, err := s.deps.Search.SearchBySKU(ctx, input.SKU)
	if err != nil {
		return nil, searchSKUOutput{toolStatus: s.failStatus("search_product_by_sku", err)}, nil
	}
	return nil, searchSKUOutput{toolStatus: okStatus(), Result: result}, nil
}
