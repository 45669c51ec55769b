// Package extract scrapes the bank market-capitalization table from the
// source page.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/bankcap/banketl/internal/model"
)

const tracerName = "banketl.internal.extract"

const (
	colName      = 1
	colMarketCap = 2
)

// Options configures an Extractor.
type Options struct {
	URL       string
	Timeout   time.Duration
	UserAgent string

	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Extractor fetches the source page and parses the bank table out of it.
type Extractor struct {
	url    string
	client *resty.Client
	tracer trace.Tracer
}

// New creates an Extractor. A zero timeout means no timeout.
func New(opts Options) *Extractor {
	client := resty.New().SetTimeout(opts.Timeout)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Extractor{url: opts.URL, client: client, tracer: tp.Tracer(tracerName)}
}

// Extract fetches the page and returns one record per data row of its first
// table body, in document order.
func (e *Extractor) Extract(ctx context.Context) ([]model.BankRecord, error) {
	ctx, span := e.tracer.Start(ctx, "Extract")
	defer span.End()
	span.SetAttributes(attribute.String("url", e.url))

	body, err := e.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	records, err := Parse(bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(records)))
	return records, nil
}

// The response status is not checked; whatever body comes back is parsed.
func (e *Extractor) fetch(ctx context.Context) ([]byte, error) {
	res, err := e.client.R().
		SetContext(ctx).
		Get(e.url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w: %w", e.url, model.ErrNetwork, err)
	}
	if res.IsError() {
		slog.WarnContext(ctx, "source page returned an error status, parsing body anyway",
			"url", e.url, "status", res.StatusCode())
	}
	slog.DebugContext(ctx, "fetched source page", "url", e.url, "bytes", len(res.Body()), "elapsed", res.Time())
	return res.Body(), nil
}

// FileSource reads a saved copy of the source page instead of fetching it.
type FileSource struct {
	Path string
}

// Extract parses the file at s.Path.
func (s FileSource) Extract(ctx context.Context) ([]model.BankRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening page %s: %w: %w", s.Path, model.ErrIO, err)
	}
	defer f.Close()

	slog.DebugContext(ctx, "parsing saved page", "path", s.Path)
	return Parse(f)
}

// Parse reads an HTML document and extracts the bank table from its first
// <tbody>. Rows without <td> cells (header rows) are skipped.
func Parse(r io.Reader) ([]model.BankRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w: %w", model.ErrParse, err)
	}

	bodies := doc.Find("tbody")
	if bodies.Length() == 0 {
		return nil, fmt.Errorf("no <tbody> element in document: %w", model.ErrParse)
	}

	var records []model.BankRecord
	var rowErr error
	bodies.First().Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return true
		}
		rec, err := parseRow(cells)
		if err != nil {
			rowErr = fmt.Errorf("row %d: %w", i+1, err)
			return false
		}
		records = append(records, rec)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return records, nil
}

func parseRow(cells *goquery.Selection) (model.BankRecord, error) {
	if cells.Length() <= colName {
		return model.BankRecord{}, fmt.Errorf("row has %d cells, no name cell: %w", cells.Length(), model.ErrExtraction)
	}
	name, err := bankName(cells.Eq(colName))
	if err != nil {
		return model.BankRecord{}, err
	}

	if cells.Length() <= colMarketCap {
		return model.BankRecord{}, fmt.Errorf("row %q has %d cells, no market cap cell: %w", name, cells.Length(), model.ErrExtraction)
	}
	mc, err := marketCap(cells.Eq(colMarketCap))
	if err != nil {
		return model.BankRecord{}, fmt.Errorf("%s: %w", name, err)
	}

	rec := model.BankRecord{Name: name, MarketCapUSD: mc}
	if err := rec.Validate(); err != nil {
		return model.BankRecord{}, fmt.Errorf("%w: %w", model.ErrParse, err)
	}
	return rec, nil
}

// bankName applies the source page's naming convention: the display name is
// the title attribute of the SECOND link in the name cell (the first one is the
// flag icon). This depends on the archived page's markup; a change in the
// site's format only needs to be handled here.
func bankName(cell *goquery.Selection) (string, error) {
	anchors := cell.Find("a")
	if anchors.Length() < 2 {
		return "", fmt.Errorf("name cell has %d links, want at least 2: %w", anchors.Length(), model.ErrExtraction)
	}
	title, ok := anchors.Eq(1).Attr("title")
	if !ok || strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("second link in name cell has no title: %w", model.ErrExtraction)
	}
	return title, nil
}

// marketCap reads the first text node of the cell. The page appends a unit
// marker (a newline in the archived copy) as its last character, which is
// dropped before parsing.
func marketCap(cell *goquery.Selection) (decimal.Decimal, error) {
	node := cell.Get(0).FirstChild
	if node == nil {
		return decimal.Zero, fmt.Errorf("market cap cell is empty: %w", model.ErrExtraction)
	}
	if node.Type != html.TextNode {
		return decimal.Zero, fmt.Errorf("market cap cell starts with <%s>, not text: %w", node.Data, model.ErrParse)
	}

	text := node.Data
	_, size := utf8.DecodeLastRuneInString(text)
	raw := strings.TrimSpace(text[:len(text)-size])

	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing market cap %q: %w: %w", raw, model.ErrParse, err)
	}
	return v, nil
}
