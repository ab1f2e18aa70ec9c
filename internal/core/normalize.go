package core

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// fieldAliases maps each canonical field to the key fragments that
// identify it in a raw row. Resolution tries an exact key match first,
// then a case-insensitive substring match over the row's sorted keys,
// so the outcome never depends on map iteration order.
var fieldAliases = []struct {
	field   string
	aliases []string
}{
	{"date", []string{"fecha", "date"}},
	{"supplier", []string{"proveedor", "supplier"}},
	{"article", []string{"art"}},
	{"description", []string{"descrip"}},
	{"quantity", []string{"cant", "quantity", "qty"}},
	{"price", []string{"precio", "price"}},
}

// Normalizer converts loosely-typed raw rows into canonical Records.
//
// The default policy is permissive: missing or unparseable numeric
// fields coerce to 0 and only rows without a resolvable date are
// dropped. With Strict set, rows whose quantity or price is present but
// unparseable (or missing entirely) are dropped and counted instead.
type Normalizer struct {
	Strict bool
}

// NormalizeResult carries the canonical records plus drop counters for
// observability.
type NormalizeResult struct {
	Records        []Record
	DroppedNoDate  int
	DroppedNumeric int // strict mode only
}

// Normalize maps raw rows into Records. Pure transform; the input is
// never mutated.
func (n Normalizer) Normalize(rows []RawRow) NormalizeResult {
	res := NormalizeResult{Records: make([]Record, 0, len(rows))}
	for _, row := range rows {
		date, ok := parseDate(resolveField(row, "date"))
		if !ok {
			res.DroppedNoDate++
			continue
		}
		qty, qtyOK := parseNumber(resolveField(row, "quantity"))
		price, priceOK := parseNumber(resolveField(row, "price"))
		if n.Strict && (!qtyOK || !priceOK) {
			res.DroppedNumeric++
			continue
		}
		res.Records = append(res.Records, Record{
			Date:        date,
			Supplier:    stringOrDefault(resolveField(row, "supplier"), DefaultSupplier),
			Article:     stringOrDefault(resolveField(row, "article"), ""),
			Description: stringOrDefault(resolveField(row, "description"), DefaultDescription),
			Quantity:    qty,
			Price:       price,
		})
	}
	return res
}

// resolveField finds the value for a canonical field in a raw row.
func resolveField(row RawRow, field string) any {
	var aliases []string
	for _, fa := range fieldAliases {
		if fa.field == field {
			aliases = fa.aliases
			break
		}
	}
	// Exact key match wins.
	for _, a := range aliases {
		if v, ok := row[a]; ok && !isEmptyValue(v) {
			return v
		}
	}
	// Fall back to case-insensitive substring match over sorted keys.
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, a := range aliases {
		for _, k := range keys {
			if strings.Contains(strings.ToLower(k), a) && !isEmptyValue(row[k]) {
				return row[k]
			}
		}
	}
	return nil
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func stringOrDefault(v any, def string) string {
	if v == nil {
		return def
	}
	s := strings.TrimSpace(toString(v))
	if s == "" {
		return def
	}
	return s
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return ""
	}
}

// dateLayouts are tried in order for string-valued dates. Day-first
// layouts come before month-first since the source ledgers are European.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
	"02.01.2006",
}

// excelEpoch is day zero of the 1900 date system used by xlsx files.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseDate accepts time.Time values, date strings in the known
// layouts, and Excel serial day numbers.
func parseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case float64:
		return excelSerialDate(t)
	case int:
		return excelSerialDate(float64(t))
	case int64:
		return excelSerialDate(float64(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d, true
			}
		}
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			return excelSerialDate(serial)
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func excelSerialDate(serial float64) (time.Time, bool) {
	// Plausible ledger range: year 1905 through 2173.
	if serial < 2000 || serial > 100000 {
		return time.Time{}, false
	}
	days := math.Floor(serial)
	frac := serial - days
	d := excelEpoch.AddDate(0, 0, int(days))
	return d.Add(time.Duration(frac * 24 * float64(time.Hour))), true
}

// parseNumber coerces a raw value to float64. Decimal commas are
// normalized the way spreadsheet exports commonly need. The bool
// reports whether the value was genuinely numeric; callers default to 0
// unless running strict.
func parseNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		s = strings.ReplaceAll(s, ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
