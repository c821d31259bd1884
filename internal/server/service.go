package server

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/export"
	"github.com/joseph-ayodele/pdfsheets/internal/pipeline"
	"github.com/joseph-ayodele/pdfsheets/internal/repository"
	"github.com/joseph-ayodele/pdfsheets/internal/templates"
)

// Processor is the part of pipeline.Processor the transport needs.
type Processor interface {
	Process(ctx context.Context, templateID string, docs []pipeline.Document) (pipeline.Result, error)
	Download(ctx context.Context, filename string) (export.Artifact, error)
}

type ExtractionServer struct {
	proc   Processor
	logger *slog.Logger
}

func NewExtractionServer(proc Processor, logger *slog.Logger) *ExtractionServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionServer{proc: proc, logger: logger}
}

// Extract implements ExtractionServiceServer.
func (s *ExtractionServer) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := common.LoggerFromContext(ctx, s.logger)

	in, err := DecodeExtractRequest(req)
	if err != nil {
		log.Warn("server.extract.bad_request", "error", err)
		return nil, err
	}

	log.Info("server.extract.start", "template_id", in.TemplateID, "documents", len(in.Documents))
	res, err := s.proc.Process(ctx, in.TemplateID, in.Documents)
	if err != nil {
		log.Error("server.extract.failed", "template_id", in.TemplateID, "error", err)
		return nil, toStatus(err)
	}

	out, err := EncodeExtractResponse(res)
	if err != nil {
		log.Error("server.extract.encode_failed", "error", err)
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	log.Info("server.extract.ok", "filename", res.Artifact.Filename, "rows", len(res.Rows))
	return out, nil
}

// Download implements ExtractionServiceServer.
func (s *ExtractionServer) Download(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	log := common.LoggerFromContext(ctx, s.logger)

	name := strings.TrimSpace(req.GetValue())
	v := common.NewValidator().Field("filename", name, common.Required, common.Filename)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	a, err := s.proc.Download(ctx, name)
	if err != nil {
		log.Warn("server.download.failed", "filename", name, "error", err)
		return nil, toStatus(err)
	}
	log.Info("server.download.ok", "filename", name, "bytes", len(a.Data))
	return wrapperspb.Bytes(a.Data), nil
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok && status.Code(err) != codes.Unknown {
		return err
	}
	switch {
	case errors.Is(err, templates.ErrNotFound), errors.Is(err, common.ErrValidation):
		return common.InvalidArgumentError(err.Error())
	case errors.Is(err, repository.ErrArtifactNotFound):
		return common.NotFoundError("file not found")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return common.InternalError(err.Error())
	}
}

// ExtractRequest is the Go view of the Extract request struct.
type ExtractRequest struct {
	TemplateID string
	Documents  []pipeline.Document
}

// DecodeExtractRequest reads {template_id, documents: [{name, content}]}, with
// content base64 encoded.
func DecodeExtractRequest(req *structpb.Struct) (ExtractRequest, error) {
	fields := req.GetFields()
	out := ExtractRequest{TemplateID: strings.TrimSpace(fields["template_id"].GetStringValue())}
	if out.TemplateID == "" {
		return ExtractRequest{}, common.InvalidArgumentError("template_id is required")
	}

	docs := fields["documents"].GetListValue().GetValues()
	if len(docs) == 0 {
		return ExtractRequest{}, common.InvalidArgumentError("no files uploaded")
	}
	for i, d := range docs {
		df := d.GetStructValue().GetFields()
		if df == nil {
			return ExtractRequest{}, common.InvalidArgumentErrorf("documents[%d] must be an object", i)
		}
		content, err := base64.StdEncoding.DecodeString(df["content"].GetStringValue())
		if err != nil {
			return ExtractRequest{}, common.InvalidArgumentErrorf("documents[%d].content is not base64: %v", i, err)
		}
		out.Documents = append(out.Documents, pipeline.Document{
			Name:    df["name"].GetStringValue(),
			Content: content,
		})
	}
	return out, nil
}

// EncodeExtractRequest is the inverse of DecodeExtractRequest.
func EncodeExtractRequest(templateID string, docs []pipeline.Document) (*structpb.Struct, error) {
	list := make([]any, len(docs))
	for i, d := range docs {
		list[i] = map[string]any{
			"name":    d.Name,
			"content": base64.StdEncoding.EncodeToString(d.Content),
		}
	}
	return structpb.NewStruct(map[string]any{
		"template_id": templateID,
		"documents":   list,
	})
}

// EncodeExtractResponse builds {filename, template_id, rows}.
func EncodeExtractResponse(res pipeline.Result) (*structpb.Struct, error) {
	rows := make([]any, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = map[string]any(r)
	}
	return structpb.NewStruct(map[string]any{
		"filename":    res.Artifact.Filename,
		"template_id": res.Artifact.TemplateID,
		"rows":        rows,
	})
}

// ExtractionServiceServer is the server API for pdfsheets.v1.ExtractionService.
type ExtractionServiceServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Download(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

const (
	ServiceName            = "pdfsheets.v1.ExtractionService"
	ExtractFullMethodName  = "/" + ServiceName + "/Extract"
	DownloadFullMethodName = "/" + ServiceName + "/Download"
)

func RegisterExtractionServiceServer(s grpc.ServiceRegistrar, srv ExtractionServiceServer) {
	s.RegisterService(&ExtractionServiceDesc, srv)
}

func extractHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractionServiceServer).Extract(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ExtractFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtractionServiceServer).Extract(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func downloadHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractionServiceServer).Download(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DownloadFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtractionServiceServer).Download(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ExtractionServiceDesc describes the service using well-known message types,
// so no generated code is involved.
var ExtractionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExtractionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Extract", Handler: extractHandler},
		{MethodName: "Download", Handler: downloadHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pdfsheets/v1/extraction.proto",
}
