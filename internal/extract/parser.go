// Package extract turns a raw price-list extract into per-store line-item
// lists. The extract repeats a fixed 3-column group (code, description,
// price) once per store; the header row carries each store's name in the
// first cell of its group.
package extract

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/quotesync/backend/internal/domain"
)

// groupWidth is the number of columns per store group.
const groupWidth = 3

// LineItem is one store's row of the extract, resolved to a product key.
// It lives only for the duration of one sync run.
type LineItem struct {
	SupplierName string
	RawCode      string
	RawName      string
	Price        float64
	Key          domain.ProductKey
}

// StoreList is the parsed column group of one store.
type StoreList struct {
	Supplier    string
	Items       []LineItem
	Total       int
	WithCode    int
	WithoutCode int
}

// SplitLine tokenizes one raw line into trimmed fields. Double-quoted fields
// may contain the separator; a quote only toggles the "inside quotes" state
// and is never part of the output. Malformed quoting degrades to best-effort
// tokenization rather than an error.
func SplitLine(line string, sep rune) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == sep && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))

	return fields
}

// ParsePrice extracts a non-negative numeric value from a localized currency
// string: optional leading currency symbol, "." as thousands separator and
// "," as decimal separator. Anything unparseable yields 0; it never errors.
func ParsePrice(s string) float64 {
	var digits strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			digits.WriteRune(r)
		}
	}

	cleaned := strings.ReplaceAll(digits.String(), ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// ParseExtract reads the whole extract and produces one StoreList per store
// column group. The header row names the stores; data rows are tokenized with
// SplitLine. Group cells that are entirely empty mean the store does not
// quote that row; rows that resolve to no product identity are dropped.
func ParseExtract(r io.Reader, sep rune) ([]StoreList, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	header := SplitLine(scanner.Text(), sep)
	var stores []StoreList
	for base := 0; base < len(header); base += groupWidth {
		name := strings.TrimSpace(header[base])
		if name == "" {
			continue
		}
		stores = append(stores, StoreList{Supplier: name})
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := SplitLine(line, sep)

		store := 0
		for base := 0; base < len(header); base += groupWidth {
			if strings.TrimSpace(header[base]) == "" {
				continue
			}
			sl := &stores[store]
			store++

			code := fieldAt(fields, base)
			name := fieldAt(fields, base+1)
			price := ParsePrice(fieldAt(fields, base+2))
			if code == "" && name == "" {
				continue
			}

			key, ok := domain.ResolveKey(code, name)
			if !ok {
				continue
			}

			sl.Items = append(sl.Items, LineItem{
				SupplierName: sl.Supplier,
				RawCode:      code,
				RawName:      name,
				Price:        price,
				Key:          key,
			})
			sl.Total++
			if key.Kind == domain.KeyCode {
				sl.WithCode++
			} else {
				sl.WithoutCode++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return stores, nil
}

// fieldAt returns the trimmed field at index i, or "" past the row's end.
func fieldAt(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
