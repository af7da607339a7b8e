package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"puntomoda/internal/domain"
	"puntomoda/internal/service/catalog"

	"go.uber.org/zap"
)

type ProductWriter interface {
	Create(ctx context.Context, in catalog.CreateInput) (*domain.Product, error)
}

// Required columns. Optional ones: description, category, sale_price,
// variant_price, size, color, image_url, image_color.
var requiredColumns = []string{"name", "price", "sku", "stock"}

// CSVImporter reads one variant per row and creates one product per distinct
// name. A row with an empty name continues the previous product, which lets
// extra image rows follow a variant row.
type CSVImporter struct {
	reader *csv.Reader
	writer ProductWriter
	logger *zap.Logger
}

func NewCSVImporter(r io.Reader, w ProductWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{reader: csvr, writer: w, logger: logger}
}

type group struct {
	line  int
	input catalog.CreateInput
	skus  map[string]bool
	urls  map[string]bool
}

// Run parses every row first and only then creates products, so a malformed
// file writes nothing. It returns the number of products created.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	var (
		groups []*group
		byName = map[string]*group{}
		last   *group
		line   = 1
	)
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return 0, fmt.Errorf("read row %d: %w", line, err)
		}
		r := row{record: record, index: index}
		if r.blank() {
			continue
		}

		name := r.get("name")
		var g *group
		switch {
		case name == "" && last == nil:
			return 0, fmt.Errorf("row %d: name is required", line)
		case name == "":
			g = last
		default:
			key := strings.ToLower(name)
			g = byName[key]
			if g == nil {
				g, err = newGroup(line, name, r)
				if err != nil {
					return 0, err
				}
				byName[key] = g
				groups = append(groups, g)
			}
		}
		if err := g.add(line, r); err != nil {
			return 0, err
		}
		last = g
	}

	imported := 0
	for _, g := range groups {
		p, err := i.writer.Create(ctx, g.input)
		if err != nil {
			return imported, fmt.Errorf("create product %q (row %d): %w", g.input.Name, g.line, err)
		}
		imported++
		i.logger.Info("imported product", zap.String("id", p.ID), zap.String("name", p.Name), zap.Int("variants", len(g.input.Variants)))
	}
	return imported, nil
}

func newGroup(line int, name string, r row) (*group, error) {
	price, err := r.money("price")
	if err != nil || price == nil {
		return nil, fmt.Errorf("row %d: price is required and must be a decimal", line)
	}
	sale, err := r.money("sale_price")
	if err != nil {
		return nil, fmt.Errorf("row %d: sale_price must be a decimal", line)
	}
	return &group{
		line: line,
		input: catalog.CreateInput{
			Name:        name,
			Description: r.get("description"),
			Price:       *price,
			SalePrice:   sale,
			Category:    r.get("category"),
		},
		skus: map[string]bool{},
		urls: map[string]bool{},
	}, nil
}

func (g *group) add(line int, r row) error {
	if url := r.get("image_url"); url != "" && !g.urls[url] {
		g.urls[url] = true
		g.input.Images = append(g.input.Images, catalog.ImageInput{
			URL:       url,
			Color:     r.get("image_color"),
			IsPrimary: len(g.input.Images) == 0,
		})
	}

	sku := r.get("sku")
	if sku == "" {
		if r.get("stock") != "" || r.get("size") != "" || r.get("color") != "" {
			return fmt.Errorf("row %d: sku is required", line)
		}
		return nil
	}
	if g.skus[sku] {
		return fmt.Errorf("row %d: duplicate sku %s", line, sku)
	}
	g.skus[sku] = true

	stock, err := strconv.Atoi(r.get("stock"))
	if err != nil || stock < 0 {
		return fmt.Errorf("row %d: stock must be a non-negative integer", line)
	}
	price, err := r.money("variant_price")
	if err != nil {
		return fmt.Errorf("row %d: variant_price must be a decimal", line)
	}

	v := catalog.VariantInput{SKU: sku, Price: price, StockQuantity: stock}
	for _, attr := range []string{"size", "color"} {
		if val := r.get(attr); val != "" {
			v.Attributes = append(v.Attributes, domain.VariantAttribute{Name: attr, Value: val})
		}
	}
	g.input.Variants = append(g.input.Variants, v)
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

type row struct {
	record []string
	index  map[string]int
}

func (r row) get(col string) string {
	pos, ok := r.index[col]
	if !ok || pos >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[pos])
}

func (r row) blank() bool {
	for _, f := range r.record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// money returns nil for an empty cell.
func (r row) money(col string) (*domain.Money, error) {
	raw := r.get(col)
	if raw == "" {
		return nil, nil
	}
	m, err := domain.ParseMoney(raw)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
