package core

import (
	"testing"
	"time"
)

func TestNormalizer_DropsDatelessRows(t *testing.T) {
	rows := []RawRow{
		{"Fecha": "2024-03-10", "Proveedor": "Acme", "Descripcion": "Steel Rod", "Cantidad": 2.0, "Precio": 10.0},
		{"Proveedor": "Acme", "Descripcion": "No date here", "Cantidad": 1.0, "Precio": 5.0},
		{"Fecha": "not a date", "Descripcion": "Bad date"},
	}

	res := Normalizer{}.Normalize(rows)

	if len(res.Records) != 1 {
		t.Fatalf("Normalize() kept %d records, want 1", len(res.Records))
	}
	if res.DroppedNoDate != 2 {
		t.Errorf("DroppedNoDate = %d, want 2", res.DroppedNoDate)
	}
	if got := len(rows) - res.DroppedNoDate; got != len(res.Records) {
		t.Errorf("output length %d != input minus dropped %d", len(res.Records), got)
	}
}

func TestNormalizer_FieldAliasing(t *testing.T) {
	tests := []struct {
		name string
		row  RawRow
		want Record
	}{
		{
			name: "spanish headers",
			row:  RawRow{"Fecha": "2024-01-15", "Proveedor": "Aceros SA", "Articulo": "A-1", "Descripcion": "Chapa", "Cantidad": "3", "Precio": "12,50"},
			want: Record{Supplier: "Aceros SA", Article: "A-1", Description: "Chapa", Quantity: 3, Price: 12.5},
		},
		{
			name: "english headers via substring",
			row:  RawRow{"Order Date": "2024-02-01", "Supplier Name": "Acme", "Item Description": "Bolt M8", "Quantity Ordered": 10.0, "Unit Price": 0.25},
			want: Record{Supplier: "Acme", Article: "", Description: "Bolt M8", Quantity: 10, Price: 0.25},
		},
		{
			name: "missing optional fields get defaults",
			row:  RawRow{"date": "2024-06-01"},
			want: Record{Supplier: DefaultSupplier, Article: "", Description: DefaultDescription},
		},
		{
			name: "unparseable numerics coerce to zero",
			row:  RawRow{"date": "2024-06-01", "cantidad": "n/a", "precio": "free"},
			want: Record{Supplier: DefaultSupplier, Description: DefaultDescription},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalizer{}.Normalize([]RawRow{tt.row})
			if len(res.Records) != 1 {
				t.Fatalf("Normalize() kept %d records, want 1", len(res.Records))
			}
			got := res.Records[0]
			if got.Supplier != tt.want.Supplier {
				t.Errorf("Supplier = %q, want %q", got.Supplier, tt.want.Supplier)
			}
			if got.Article != tt.want.Article {
				t.Errorf("Article = %q, want %q", got.Article, tt.want.Article)
			}
			if got.Description != tt.want.Description {
				t.Errorf("Description = %q, want %q", got.Description, tt.want.Description)
			}
			if got.Quantity != tt.want.Quantity {
				t.Errorf("Quantity = %v, want %v", got.Quantity, tt.want.Quantity)
			}
			if got.Price != tt.want.Price {
				t.Errorf("Price = %v, want %v", got.Price, tt.want.Price)
			}
		})
	}
}

func TestNormalizer_StrictDropsUnparseableNumerics(t *testing.T) {
	rows := []RawRow{
		{"date": "2024-06-01", "cantidad": "2", "precio": "3"},
		{"date": "2024-06-02", "cantidad": "abc", "precio": "3"},
		{"date": "2024-06-03"},
	}

	res := Normalizer{Strict: true}.Normalize(rows)

	if len(res.Records) != 1 {
		t.Fatalf("strict Normalize() kept %d records, want 1", len(res.Records))
	}
	if res.DroppedNumeric != 2 {
		t.Errorf("DroppedNumeric = %d, want 2", res.DroppedNumeric)
	}
}

func TestNormalizer_DateValueTypes(t *testing.T) {
	wantDay := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
	}{
		{"time value", wantDay},
		{"iso string", "2024-03-10"},
		{"day-first string", "10/03/2024"},
		{"excel serial", 45361.0}, // 2024-03-10 in the 1900 date system
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalizer{}.Normalize([]RawRow{{"fecha": tt.value}})
			if len(res.Records) != 1 {
				t.Fatalf("Normalize() kept %d records, want 1", len(res.Records))
			}
			got := res.Records[0].Date
			if got.Year() != wantDay.Year() || got.Month() != wantDay.Month() || got.Day() != wantDay.Day() {
				t.Errorf("Date = %v, want %v", got, wantDay)
			}
		})
	}
}

func TestNormalizer_DeterministicAmbiguousKeys(t *testing.T) {
	// Two keys both match the "descrip" fragment; sorted-key scanning
	// must make the pick stable across runs.
	row := RawRow{
		"date":            "2024-01-01",
		"descripcion alt": "B",
		"descripcion":     "A",
	}
	first := Normalizer{}.Normalize([]RawRow{row}).Records[0].Description
	for i := 0; i < 20; i++ {
		got := Normalizer{}.Normalize([]RawRow{row}).Records[0].Description
		if got != first {
			t.Fatalf("Description resolution not deterministic: %q then %q", first, got)
		}
	}
	if first != "A" {
		t.Errorf("Description = %q, want %q (first sorted key)", first, "A")
	}
}
