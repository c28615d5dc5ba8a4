package mcptools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/colombiang/sales-mcp/internal/purchases"
)

type savePurchaseInput struct {
	StoreID     string  `json:"store_id" jsonschema:"identifier of the store whose table receives the purchase"`
	TotalAmount float64 `json:"total_amount,omitempty" jsonschema:"purchase total, at most two decimal places"`
	Products    any     `json:"products" jsonschema:"line items as a JSON array, or a string containing the encoded array"`

	ClientPhone    string `json:"client_phone,omitempty" jsonschema:"client phone (client-detail stores)"`
	ClientFullName string `json:"client_full_name,omitempty" jsonschema:"client full name (client-detail stores)"`
	ClientDocument string `json:"client_document,omitempty" jsonschema:"client identity document (client-detail stores)"`
	ClientAddress  string `json:"client_address,omitempty" jsonschema:"client address (client-detail stores)"`
	ClientCity     string `json:"client_city,omitempty" jsonschema:"client city (client-detail stores)"`
	ClientEmail    string `json:"client_email,omitempty" jsonschema:"client email, optional (client-detail stores)"`

	CustomerPhone   string `json:"customer_phone,omitempty" jsonschema:"customer phone (flat-customer stores)"`
	CustomerAddress string `json:"customer_address,omitempty" jsonschema:"customer address (flat-customer stores)"`
}

type savePurchaseOutput struct {
	toolStatus
	Purchase *purchases.PersistedPurchase `json:"purchase,omitempty"`
}

type listPurchasesInput struct {
	StoreID string `json:"store_id" jsonschema:"identifier of the store to read purchases from"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum rows to return, clamped into [1,200], default 50"`
	Offset  int    `json:"offset,omitempty" jsonschema:"rows to skip, clamped to >= 0"`
}

type listPurchasesOutput struct {
	toolStatus
	Purchases []purchases.PersistedPurchase `json:"purchases,omitempty"`
	Count     int                           `json:"count"`
	Table     string                        `json:"table,omitempty"`
}

func (s *Server) registerPurchaseTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "save_purchase",
		Description: "Persist a purchase in the table of the given store. Field requirements depend on the store's shape.",
	}, s.savePurchase)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_store_purchases",
		Description: "List recent purchases of a store, newest first.",
	}, s.listPurchases)
}

func (s *Server) savePurchase(ctx context.Context, req *mcp.CallToolRequest, input savePurchaseInput) (*mcp.CallToolResult, savePurchaseOutput, error) {
	rawProducts, err := json.Marshal(input.Products)
	if err != nil {
		return nil, savePurchaseOutput{toolStatus: s.failStatus("save_purchase", err)}, nil
	}
	purchase, err := s.deps.Purchases.Save(ctx, input.StoreID, purchases.SaveRequest{
		TotalAmount:     input.TotalAmount,
		ClientPhone:     input.ClientPhone,
		ClientFullName:  input.ClientFullName,
		ClientDocument:  input.ClientDocument,
		ClientAddress:   input.ClientAddress,
		ClientCity:      input.ClientCity,
		ClientEmail:     input.ClientEmail,
		CustomerPhone:   input.CustomerPhone,
		CustomerAddress: input.CustomerAddress,
		Products:        rawProducts,
	})
	if err != nil {
		return nil, savePurchaseOutput{toolStatus: s.failStatus("save_purchase", err)}, nil
	}
	return nil, savePurchaseOutput{toolStatus: okStatus(), Purchase: purchase}, nil
}

func (s *Server) listPurchases(ctx context.Context, req *mcp.CallToolRequest, input listPurchasesInput) (*mcp.CallToolResult, listPurchasesOutput, error) {
	rows, err := s.deps.Purchases.List(ctx, input.StoreID, input.Limit, input.Offset)
	if err != nil {
		return nil, listPurchasesOutput{toolStatus: s.failStatus("get_store_purchases", err)}, nil
	}
	out := listPurchasesOutput{toolStatus: okStatus(), Purchases: rows, Count: len(rows)}
	if len(rows) > 0 {
		out.Table = rows[0].Table
	}
	return nil, out, nil
}
