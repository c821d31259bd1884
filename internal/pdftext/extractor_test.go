package pdftext

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	rpdf "rsc.io/pdf"
)

type fakeBackend struct {
	name  string
	pages []string
	err   error
	panic bool
	calls int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Pages(context.Context, []byte) ([]string, error) {
	f.calls++
	if f.panic {
		panic("corrupt xref")
	}
	return f.pages, f.err
}

func TestExtractFirstNonEmptyWins(t *testing.T) {
	failing := &fakeBackend{name: "a", err: errors.New("boom")}
	blank := &fakeBackend{name: "b", pages: []string{"", "  \n"}}
	good := &fakeBackend{name: "c", pages: []string{"Fund Alpha", "", "USD 1,000"}}
	never := &fakeBackend{name: "d", pages: []string{"unused"}}

	e := NewExtractorWithBackends(nil, failing, blank, good, never)
	got := e.Extract(context.Background(), []byte("%PDF-1.4"))
	if want := "Fund Alpha\n\nUSD 1,000"; got != want {
		t.Fatalf("Extract = %q, want %q", got, want)
	}
	if never.calls != 0 {
		t.Error("backends after a successful one must not run")
	}
}

func TestExtractRecoversFromPanics(t *testing.T) {
	bad := &fakeBackend{name: "bad", panic: true}
	good := &fakeBackend{name: "good", pages: []string{"text"}}

	got := NewExtractorWithBackends(nil, bad, good).Extract(context.Background(), []byte("x"))
	if got != "text" {
		t.Fatalf("Extract = %q", got)
	}
}

func TestExtractAllFailYieldsEmpty(t *testing.T) {
	e := NewExtractorWithBackends(nil,
		&fakeBackend{name: "a", panic: true},
		&fakeBackend{name: "b", err: errors.New("nope")},
	)
	if got := e.Extract(context.Background(), []byte("x")); got != "" {
		t.Fatalf("Extract = %q, want empty", got)
	}
}

func TestExtractGarbageInput(t *testing.T) {
	e := NewExtractor(Config{Pdftotext: "pdfsheets-no-such-binary"}, nil)
	for _, in := range [][]byte{nil, []byte("not a pdf at all"), {0x25, 0x50, 0x44, 0x46, 0x00, 0xff}} {
		if got := e.Extract(context.Background(), in); got != "" {
			t.Errorf("Extract(%q) = %q, want empty", in, got)
		}
	}
}

type fakeRunner struct {
	calls [][]string
	run   func(name string, args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.run(name, args)
}

func TestPopplerBackendSplitsPages(t *testing.T) {
	r := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		return []byte("page one\fpage two\f"), nil, nil
	}}
	b := &popplerBackend{bin: "pdftotext", runner: r}
	pages, err := b.Pages(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if !reflect.DeepEqual(pages, []string{"page one", "page two"}) {
		t.Errorf("pages = %q", pages)
	}
	args := r.calls[0]
	if args[0] != "pdftotext" || args[len(args)-1] != "-" {
		t.Errorf("unexpected invocation %v", args)
	}
}

func TestOCRBackendReadsRenderedPages(t *testing.T) {
	r := &fakeRunner{}
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			prefix := args[len(args)-1]
			for _, n := range []string{"1", "2", "10"} {
				if err := os.WriteFile(prefix+"-"+n+".png", []byte("png"), 0o600); err != nil {
					return nil, nil, err
				}
			}
			return nil, nil, nil
		case "tesseract":
			img := args[0]
			return []byte("ocr " + img[strings.LastIndexByte(img, '-')+1:]), nil, nil
		}
		return nil, []byte("unknown"), errors.New("unexpected command")
	}
	b := &ocrBackend{pdftoppm: "pdftoppm", tesseract: "tesseract", lang: "eng", dpi: 300, runner: r}
	pages, err := b.Pages(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	want := []string{"ocr 1.png", "ocr 2.png", "ocr 10.png"}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("pages = %q, want %q", pages, want)
	}
}

func TestOCRBackendNoImages(t *testing.T) {
	r := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) { return nil, nil, nil }}
	b := &ocrBackend{pdftoppm: "pdftoppm", tesseract: "tesseract", lang: "eng", dpi: 300, runner: r}
	if _, err := b.Pages(context.Background(), []byte("%PDF")); err == nil {
		t.Fatal("expected error when nothing was rendered")
	}
}

func TestLinesFromRuns(t *testing.T) {
	runs := []rpdf.Text{
		{S: "Amount", X: 10, Y: 700, W: 30, FontSize: 10},
		{S: "Fund", X: 10, Y: 720, W: 20, FontSize: 10},
		{S: "Alpha", X: 35, Y: 720, W: 25, FontSize: 10},
		{S: ":", X: 40, Y: 700, W: 2, FontSize: 10},
	}
	if got, want := linesFromRuns(runs), "Fund Alpha\nAmount:"; got != want {
		t.Errorf("linesFromRuns = %q, want %q", got, want)
	}
}

func TestNormalize(t *testing.T) {
	in := "Fund\tAlpha  LP\r\n\n\n\n-----\nUSD   1,000   \r\n"
	if got, want := Normalize(in), "Fund Alpha LP\n\nUSD 1,000"; got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
	if Normalize("") != "" {
		t.Error("empty input")
	}
}
