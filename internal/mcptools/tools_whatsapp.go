package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/colombiang/sales-mcp/internal/whatsapp"
)

type sendMediaInput struct {
	Phone    string `json:"phone" jsonschema:"recipient phone number"`
	URL      string `json:"url" jsonschema:"public http(s) URL of the media; local and inline schemes are rejected"`
	Caption  string `json:"caption,omitempty" jsonschema:"caption shown with the media; ignored for audio"`
	Filename string `json:"filename,omitempty" jsonschema:"filename shown to the recipient, for documents"`
	Port     int    `json:"port,omitempty" jsonschema:"bridge port override, default 3001"`
	Session  string `json:"session,omitempty" jsonschema:"bridge session override"`
}

type sendMediaOutput struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func (s *Server) registerWhatsAppTools() {
	kinds := []struct {
		name, description string
		send              func(context.Context, whatsapp.MediaRequest) error
	}{
		{"send_whatsapp_image", "Send an image to a WhatsApp number by URL.", s.whatsappSend((*whatsapp.Client).SendImage)},
		{"send_whatsapp_audio", "Send a voice note to a WhatsApp number by URL.", s.whatsappSend((*whatsapp.Client).SendAudio)},
		{"send_whatsapp_video", "Send a video to a WhatsApp number by URL.", s.whatsappSend((*whatsapp.Client).SendVideo)},
		{"send_whatsapp_pdf", "Send a PDF document to a WhatsApp number by URL.", s.whatsappSend((*whatsapp.Client).SendPDF)},
	}
	for _, kind := range kinds {
		kind := kind
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        kind.name,
			Description: kind.description,
		}, func(ctx context.Context, req *mcp.CallToolRequest, input sendMediaInput) (*mcp.CallToolResult, sendMediaOutput, error) {
			return s.sendMedia(ctx, kind.name, kind.send, input)
		})
	}
}

func (s *Server) whatsappSend(method func(*whatsapp.Client, context.Context, whatsapp.MediaRequest) error) func(context.Context, whatsapp.MediaRequest) error {
	return func(ctx context.Context, req whatsapp.MediaRequest) error {
		if s.deps.WhatsApp == nil {
			return notConfigured("whatsapp bridge")
		}
		return method(s.deps.WhatsApp, ctx, req)
	}
}

func (s *Server) sendMedia(ctx context.Context, tool string, send func(context.Context, whatsapp.MediaRequest) error, input sendMediaInput) (*mcp.CallToolResult, sendMediaOutput, error) {
	err := send(ctx, whatsapp.MediaRequest{
		Phone:    input.Phone,
		URL:      input.URL,
		Caption:  input.Caption,
		Filename: input.Filename,
		Port:     input.Port,
		Session:  input.Session,
	})
	if err != nil {
		status := s.failStatus(tool, err)
		return nil, sendMediaOutput{Status: "error", Message: status.Error, StatusCode: status.StatusCode}, nil
	}
	return nil, sendMediaOutput{Status: "success", Message: "media sent", StatusCode: 200}, nil
}
