package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/colombiang/sales-mcp/internal/users"
)

type getUserInput struct {
	Phone string `json:"phone" jsonschema:"user phone number; formatting characters are ignored"`
}

type updateUserInput struct {
	Phone    string  `json:"phone" jsonschema:"phone of the user to update; formatting characters are ignored"`
	NewName  *string `json:"new_name,omitempty" jsonschema:"new display name"`
	NewEmail *string `json:"new_email,omitempty" jsonschema:"new email address, stored lowercased"`
}

type userOutput struct {
	toolStatus
	User *users.User `json:"user,omitempty"`
}

func (s *Server) registerUserTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_user_by_phone",
		Description: "Look up a user by phone number.",
	}, s.getUserByPhone)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_user_by_phone",
		Description: "Update a user's name and/or email, keyed by phone. At least one new value is required.",
	}, s.updateUserByPhone)
}

func (s *Server) getUserByPhone(ctx context.Context, req *mcp.CallToolRequest, input getUserInput) (*mcp.CallToolResult, userOutput, error) {
	user, err := s.deps.Users.GetByPhone(ctx, input.Phone)
	if err != nil {
		return nil, userOutput{toolStatus: s.failStatus("get_user_by_phone", err)}, nil
	}
	return nil, userOutput{toolStatus: okStatus(), User: user}, nil
}

func (s *Server) updateUserByPhone(ctx context.Context, req *mcp.CallToolRequest, input updateUserInput) (*mcp.CallToolResult, userOutput, error) {
	user, err := s.deps.Users.UpdateByPhone(ctx, input.Phone, input.NewName, input.NewEmail)
	if err != nil {
		return nil, userOutput{toolStatus: s.failStatus("update_user_by_phone", err)}, nil
	}
	return nil, userOutput{toolStatus: okStatus(), User: user}, nil
}
