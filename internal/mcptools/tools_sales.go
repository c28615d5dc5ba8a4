package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/colombiang/sales-mcp/internal/sales"
)

type registerSaleInput struct {
	SKU             string   `json:"sku,omitempty" jsonschema:"product SKU; provide exactly one of sku or product_id"`
	ProductID       int64    `json:"product_id,omitempty" jsonschema:"product id; provide exactly one of sku or product_id"`
	Quantity        int      `json:"quantity" jsonschema:"units sold, must be greater than zero"`
	UnitPrice       *float64 `json:"unit_price,omitempty" jsonschema:"price per unit; defaults to the catalog price"`
	CustomerPhone   string   `json:"customer_phone" jsonschema:"customer phone number"`
	CustomerAddress string   `json:"customer_address" jsonschema:"delivery address, at least five characters"`
}

type registerSaleOutput struct {
	toolStatus
	Sale *sales.ProductSale `json:"sale,omitempty"`
}

type listSalesInput struct {
	Limit  int `json:"limit,omitempty" jsonschema:"maximum rows to return, clamped into [1,200], default 50"`
	Offset int `json:"offset,omitempty" jsonschema:"rows to skip, clamped to >= 0"`
}

type listSalesOutput struct {
	toolStatus
	Sales []sales.ProductSale `json:"sales,omitempty"`
	Count int                 `json:"count"`
}

func (s *Server) registerSaleTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "register_product_sale",
		Description: "Record a sale of a catalog product, identified by SKU or id. The product must be active.",
	}, s.registerProductSale)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_recent_sales",
		Description: "List recently recorded product sales, newest first.",
	}, s.listRecentSales)
}

func (s *Server) registerProductSale(ctx context.Context, req *mcp.CallToolRequest, input registerSaleInput) (*mcp.CallToolResult, registerSaleOutput, error) {
	sale, err := s.deps.Sales.Register(ctx, sales.RegisterSaleRequest{
		SKU:             input.SKU,
		ProductID:       input.ProductID,
		Quantity:        input.Quantity,
		UnitPrice:       input.UnitPrice,
		CustomerPhone:   input.CustomerPhone,
		CustomerAddress: input.CustomerAddress,
	})
	if err != nil {
		return nil, registerSaleOutput{toolStatus: s.failStatus("register_product_sale", err)}, nil
	}
	return nil, registerSaleOutput{toolStatus: okStatus(), Sale: sale}, nil
}

func (s *Server) listRecentSales(ctx context.Context, req *mcp.CallToolRequest, input listSalesInput) (*mcp.CallToolResult, listSalesOutput, error) {
	rows, err := s.deps.Sales.ListRecent(ctx, input.Limit, input.Offset)
	if err != nil {
		return nil, listSalesOutput{toolStatus: s.failStatus("list_recent_sales", err)}, nil
	}
	return nil, listSalesOutput{toolStatus: okStatus(), Sales: rows, Count: len(rows)}, nil
}
