package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/export"
	"github.com/joseph-ayodele/pdfsheets/internal/extract"
	"github.com/joseph-ayodele/pdfsheets/internal/pipeline"
	"github.com/joseph-ayodele/pdfsheets/internal/repository"
	"github.com/joseph-ayodele/pdfsheets/internal/templates"
)

type plainText struct{}

func (plainText) Extract(_ context.Context, content []byte) string { return string(content) }

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	dir := t.TempDir()
	def := `{"fields":[{"header":"Fund Name"},{"header":"Currency"},{"header":"Investor Email"}]}`
	if err := os.WriteFile(filepath.Join(dir, "funds.json"), []byte(def), 0o644); err != nil {
		t.Fatal(err)
	}
	store := repository.NewMemoryRepository(time.Hour, nil)
	proc := pipeline.NewProcessor(nil,
		templates.NewResolver([]string{dir}, nil),
		plainText{},
		extract.NewExtractor(true, nil),
		export.NewService(nil),
		store,
	)

	lis := bufconn.Listen(1 << 20)
	srv, _ := NewGRPCServer(NewExtractionServer(proc, nil), nil)
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
		_ = store.Close()
	})
	return conn
}

func TestExtractDownloadRoundTrip(t *testing.T) {
	c := NewClient(startServer(t))
	ctx := metadata.AppendToOutgoingContext(context.Background(), RequestIDHeader, "req-42")

	var hdr metadata.MD
	resp, err := c.Extract(ctx, "funds", []pipeline.Document{
		{Name: "a.pdf", Content: []byte("Alpha Fund\nUSD\nir@alpha.com")},
		{Name: "b.pdf", Content: []byte("Beta Fund\nGBP\nir@beta.com")},
	}, grpc.Header(&hdr))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := hdr.Get(RequestIDHeader); len(got) != 1 || got[0] != "req-42" {
		t.Errorf("request id header = %v", got)
	}
	if resp.TemplateID != "funds" || len(resp.Rows) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Rows[1]["currency"] != "GBP" || resp.Rows[0]["investor_email"] != "ir@alpha.com" {
		t.Errorf("rows = %v", resp.Rows)
	}

	data, err := c.Download(context.Background(), resp.Filename)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()
	if v, _ := f.GetCellValue("Sheet1", "A1"); v != export.BannerText {
		t.Errorf("A1 = %q", v)
	}
	if v, _ := f.GetCellValue("Sheet1", "B4"); v != "GBP" {
		t.Errorf("B4 = %q", v)
	}
}

func TestExtractErrors(t *testing.T) {
	conn := startServer(t)
	c := NewClient(conn)
	ctx := context.Background()

	_, err := c.Extract(ctx, "nosuch", []pipeline.Document{{Name: "a.pdf", Content: []byte("x")}})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("unknown template: code = %v", status.Code(err))
	}
	_, err = c.Extract(ctx, "funds", nil)
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("no documents: code = %v", status.Code(err))
	}

	bad, _ := structpb.NewStruct(map[string]any{
		"template_id": "funds",
		"documents":   []any{map[string]any{"name": "a.pdf", "content": "%%%"}},
	})
	err = conn.Invoke(ctx, ExtractFullMethodName, bad, new(structpb.Struct))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("bad base64: code = %v", status.Code(err))
	}
}

func TestDownloadErrors(t *testing.T) {
	c := NewClient(startServer(t))
	cases := map[string]codes.Code{
		"extracted_data_funds_19990101_000000.xlsx": codes.NotFound,
		"../secret.xlsx": codes.InvalidArgument,
		"":               codes.InvalidArgument,
	}
	for name, want := range cases {
		if _, err := c.Download(context.Background(), name); status.Code(err) != want {
			t.Errorf("Download(%q) code = %v, want %v", name, status.Code(err), want)
		}
	}
}

func TestHealth(t *testing.T) {
	hc := grpc_health_v1.NewHealthClient(startServer(t))
	for _, svc := range []string{"", ServiceName} {
		resp, err := hc.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: svc})
		if err != nil {
			t.Fatalf("Check(%q): %v", svc, err)
		}
		if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
			t.Errorf("Check(%q) = %v", svc, resp.GetStatus())
		}
	}
}

func TestToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("%w for id: x", templates.ErrNotFound), codes.InvalidArgument},
		{fmt.Errorf("load x.json: %w", common.ErrValidation), codes.InvalidArgument},
		{fmt.Errorf("%w: a.xlsx", repository.ErrArtifactNotFound), codes.NotFound},
		{context.Canceled, codes.Canceled},
		{common.NotFoundError("gone"), codes.NotFound},
		{errors.New("disk full"), codes.Internal},
	}
	for _, tc := range cases {
		if got := status.Code(toStatus(tc.err)); got != tc.want {
			t.Errorf("toStatus(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
