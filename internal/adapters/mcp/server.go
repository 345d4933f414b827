// Package mcpadapter exposes lesion classification as an MCP tool over stdio.
package mcpadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/skinlens/lesion-dashboard/internal/core/domain"
	"github.com/skinlens/lesion-dashboard/internal/core/ports"
)

const (
	ClassifyToolName    = "classify_skin_lesion"
	ListClassesToolName = "list_lesion_classes"
)

type Server struct {
	diagnoser ports.LesionDiagnoser
	maxBytes  int64
}

func New(diagnoser ports.LesionDiagnoser, maxBytes int64) *Server {
	return &Server{diagnoser: diagnoser, maxBytes: maxBytes}
}

// MCPServer builds the tool server. version is reported in the initialize handshake.
func (s *Server) MCPServer(version string) *server.MCPServer {
	srv := server.NewMCPServer("lesion-dashboard", version, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool(ClassifyToolName,
		mcp.WithDescription("Classify a dermatoscopic image into one of the HAM10000 lesion classes. Educational use only."),
		mcp.WithString("image_base64", mcp.Required(), mcp.Description("JPG or PNG image bytes, base64 encoded")),
		mcp.WithString("filename", mcp.Description("Original filename sent to the inference service")),
	), s.classify)

	srv.AddTool(mcp.NewTool(ListClassesToolName,
		mcp.WithDescription("List the lesion class codes and diagnosis names."),
	), s.listClasses)

	return srv
}

type classifyOutput struct {
	PredictedClass     domain.ClassLabel       `json:"predicted_class"`
	DisplayName        string                  `json:"display_name"`
	Headline           string                  `json:"headline"`
	Confidence         float64                 `json:"confidence"`
	ConfidenceMismatch bool                    `json:"confidence_mismatch"`
	Probabilities      []domain.ProbabilityBar `json:"probabilities"`
}

func (s *Server) classify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	encoded, err := request.RequireString("image_base64")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	image, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return mcp.NewToolResultError("image_base64 is not valid base64"), nil
	}
	if s.maxBytes > 0 && int64(len(image)) > s.maxBytes {
		return mcp.NewToolResultError("image is too large"), nil
	}
	filename := request.GetString("filename", "upload.jpg")

	d, err := s.diagnoser.Predict(ctx, filename, image)
	if err != nil {
		slog.WarnContext(ctx, "mcp_classify_failed", "error", err)
		return mcp.NewToolResultError(toolMessage(err)), nil
	}

	payload, err := json.Marshal(classifyOutput{
		PredictedClass:     d.Result.PredictedClass,
		DisplayName:        d.DisplayName,
		Headline:           d.Headline(),
		Confidence:         d.Result.Confidence,
		ConfidenceMismatch: d.ConfidenceMismatch,
		Probabilities:      d.Bars,
	})
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) listClasses(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := json.Marshal(s.diagnoser.Catalog().Entries())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func toolMessage(err error) string {
	switch domain.ErrorKind(err) {
	case domain.ErrCanceled:
		return "request cancelled"
	case domain.ErrInvalidInput:
		return "invalid image: " + err.Error()
	case domain.ErrTemporary:
		return "prediction service temporarily unavailable"
	case domain.ErrTransport:
		return "prediction service unreachable"
	case domain.ErrServiceFailure:
		return "failed to get a prediction from the API"
	case domain.ErrMalformedResponse, domain.ErrUnknownClassLabel:
		return "prediction service returned an unexpected response"
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	return "internal error"
}
