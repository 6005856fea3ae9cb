package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/pkg/logger"
)

// PDFExporter prints the portfolio page to PDF through a remote Chrome
// reached over its DevTools websocket.
type PDFExporter struct {
	controlURL string
	timeout    time.Duration

	mu      sync.Mutex
	browser *rod.Browser
}

func NewPDFExporter(controlURL string, timeout time.Duration) *PDFExporter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PDFExporter{controlURL: controlURL, timeout: timeout}
}

// connect lazily dials the browser once and reuses the connection.
func (e *PDFExporter) connect() (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser != nil {
		return e.browser, nil
	}
	b := rod.New().ControlURL(e.controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect chrome: %w", err)
	}
	e.browser = b
	return b, nil
}

func (e *PDFExporter) reset() {
	e.mu.Lock()
	e.browser = nil
	e.mu.Unlock()
}

func (e *PDFExporter) Export(ctx context.Context, p *models.ExpandedProfile) (*Document, error) {
	var html bytes.Buffer
	if err := WriteHTML(&html, p); err != nil {
		return nil, err
	}
	browser, err := e.connect()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		e.reset()
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			logger.Debugf("pdf: close page: %v", cerr)
		}
	}()

	if err := page.SetDocumentContent(html.String()); err != nil {
		return nil, fmt.Errorf("load portfolio html: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}
	stream, err := page.PDF(&proto.PagePrintToPDF{PrintBackground: true, PreferCSSPageSize: true})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	body, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	return &Document{
		Body:        body,
		ContentType: "application/pdf",
		Filename:    Filename(p.Name, "pdf"),
	}, nil
}

// Ping checks that the browser answers.
func (e *PDFExporter) Ping(ctx context.Context) error {
	browser, err := e.connect()
	if err != nil {
		return err
	}
	if _, err := browser.Context(ctx).Version(); err != nil {
		e.reset()
		return err
	}
	return nil
}
