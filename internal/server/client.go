package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/pdfsheets/internal/pipeline"
)

// ExtractResponse is the Go view of the Extract response struct.
type ExtractResponse struct {
	Filename   string
	TemplateID string
	Rows       []map[string]any
}

// Client calls pdfsheets.v1.ExtractionService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Extract(ctx context.Context, templateID string, docs []pipeline.Document, opts ...grpc.CallOption) (*ExtractResponse, error) {
	in, err := EncodeExtractRequest(templateID, docs)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ExtractFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	m := out.AsMap()
	resp := &ExtractResponse{}
	resp.Filename, _ = m["filename"].(string)
	resp.TemplateID, _ = m["template_id"].(string)
	if rows, ok := m["rows"].([]any); ok {
		for _, r := range rows {
			if row, ok := r.(map[string]any); ok {
				resp.Rows = append(resp.Rows, row)
			}
		}
	}
	return resp, nil
}

func (c *Client) Download(ctx context.Context, filename string, opts ...grpc.CallOption) ([]byte, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, DownloadFullMethodName, wrapperspb.String(filename), out, opts...); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}
