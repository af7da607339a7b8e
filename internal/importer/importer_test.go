package importer

import (
	"context"
	"strings"
	"testing"

	"puntomoda/internal/domain"
	"puntomoda/internal/service/catalog"
)

type stubWriter struct {
	items []catalog.CreateInput
	err   error
}

func (s *stubWriter) Create(_ context.Context, in catalog.CreateInput) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, in)
	return &domain.Product{ID: "p" + in.Name, Name: in.Name}, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `name,description,category,price,sale_price,sku,variant_price,stock,size,color,image_url,image_color
Blue Shirt,Cotton shirt,shirts,25.00,,SHIRT-M-BLUE,,10,M,blue,https://example.com/shirt-blue.jpg,blue
Blue Shirt,,,,,SHIRT-L-BLUE,27.50,4,L,blue,,
,,,,,,,,,,https://example.com/shirt-back.jpg,blue
Linen Pants,Summer pants,pants,49.90,39.90,PANTS-S,,3,S,,,

Linen Pants,,,,,PANTS-M,,0,M,,https://example.com/pants.jpg,`

	w := &stubWriter{}
	count, err := NewCSVImporter(strings.NewReader(csvData), w, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 || len(w.items) != 2 {
		t.Fatalf("expected 2 products, got count=%d saved=%d", count, len(w.items))
	}

	shirt := w.items[0]
	if shirt.Name != "Blue Shirt" || shirt.Category != "shirts" || shirt.Price.String() != "25.00" || shirt.SalePrice != nil {
		t.Fatalf("unexpected shirt: %+v", shirt)
	}
	if len(shirt.Variants) != 2 {
		t.Fatalf("expected 2 shirt variants, got %d", len(shirt.Variants))
	}
	if shirt.Variants[0].Price != nil {
		t.Fatalf("variant without variant_price should inherit the product price")
	}
	if shirt.Variants[1].Price == nil || shirt.Variants[1].Price.String() != "27.50" || shirt.Variants[1].StockQuantity != 4 {
		t.Fatalf("unexpected second variant: %+v", shirt.Variants[1])
	}
	if got := shirt.Variants[0].Attributes; len(got) != 2 || got[0].Name != "size" || got[0].Value != "M" || got[1].Value != "blue" {
		t.Fatalf("unexpected attributes: %+v", got)
	}
	if len(shirt.Images) != 2 || !shirt.Images[0].IsPrimary || shirt.Images[1].IsPrimary {
		t.Fatalf("expected two images with the first primary, got %+v", shirt.Images)
	}

	pants := w.items[1]
	if pants.SalePrice == nil || pants.SalePrice.String() != "39.90" {
		t.Fatalf("expected pants sale price 39.90, got %v", pants.SalePrice)
	}
	if len(pants.Variants) != 2 || pants.Variants[1].StockQuantity != 0 {
		t.Fatalf("unexpected pants variants: %+v", pants.Variants)
	}
	if len(pants.Variants[0].Attributes) != 1 {
		t.Fatalf("empty color should not become an attribute: %+v", pants.Variants[0].Attributes)
	}
}

func TestCSVImporter_RejectsBadFilesWithoutWriting(t *testing.T) {
	cases := map[string]string{
		"missing column": "name,price,sku\nShirt,10,S1\n",
		"bad price":      "name,price,sku,stock\nShirt,ten,S1,1\n",
		"bad stock":      "name,price,sku,stock\nShirt,10,S1,-2\n",
		"duplicate sku":  "name,price,sku,stock\nShirt,10,S1,1\nShirt,,S1,2\n",
		"orphan row":     "name,price,sku,stock\n,10,S1,1\n",
		"sku missing":    "name,price,sku,stock,size\nShirt,10,,,M\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			w := &stubWriter{}
			if _, err := NewCSVImporter(strings.NewReader(data), w, nil).Run(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
			if len(w.items) != 0 {
				t.Fatalf("expected nothing written, got %d", len(w.items))
			}
		})
	}
}

func TestCSVImporter_WriterError(t *testing.T) {
	w := &stubWriter{err: domain.ErrAlreadyExists}
	count, err := NewCSVImporter(strings.NewReader("name,price,sku,stock\nShirt,10,S1,1\n"), w, nil).Run(context.Background())
	if err == nil || count != 0 {
		t.Fatalf("expected error and zero count, got %d, %v", count, err)
	}
}
