package lotkeeper

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// storeContents is the result of loading a transaction store: the ordered
// transactions, the parsed directives, and the directives' raw text for
// digest computation.
type storeContents struct {
	transactions  []*Transaction
	directives    []Directive
	rawDirectives []string
}

// txRecord is the boundary representation of one store entry. A non-empty
// Cmd marks a directive line; every other field is then ignored.
type txRecord struct {
	Cmd       string   `json:"cmd,omitempty"`
	Kind      string   `json:"tr_type"`
	Ticker    string   `json:"ticker"`
	Amount    Quantity `json:"amount"`
	Price     Money    `json:"price"`
	Date      Date     `json:"date"`
	Comm      Money    `json:"comm"`
	Brokerage string   `json:"brokerage"`
	AddBasis  Money    `json:"add_basis"`
	LotIDs    string   `json:"lot_ids,omitempty"`
	SellAll   bool     `json:"sell_all,omitempty"`
}

// csvHeader is the column order written to .csv stores. Loading maps columns
// by name from the file's own header row, so column order is free on input.
var csvHeader = []string{"tr_type", "ticker", "amount", "price", "date", "comm", "brokerage", "add_basis", "lot_ids", "sell_all"}

// loadStore reads the transaction store at fname, dispatching on the file
// extension. Malformed entries and unknown directives are load failures, not
// per-entry skips.
func loadStore(fname string) (*storeContents, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := filepath.Ext(fname); ext {
	case ".json":
		return loadJSON(f)
	case ".csv":
		return loadCSV(f)
	default:
		return nil, configErrorf("unsupported store format %q, expecting .json or .csv", ext)
	}
}

// loadJSON reads a store of one JSON object per line.
func loadJSON(r io.Reader) (*storeContents, error) {
	contents := &storeContents{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec txRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, configErrorf("store line %d: %v", line, err)
		}
		if rec.Cmd != "" {
			if err := contents.addDirective(rec.Cmd); err != nil {
				return nil, configErrorf("store line %d: %v", line, err)
			}
			continue
		}
		tx, err := rec.toTransaction()
		if err != nil {
			return nil, configErrorf("store line %d: %v", line, err)
		}
		contents.transactions = append(contents.transactions, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return contents, nil
}

// loadCSV reads a store with a header row naming the columns. A row whose
// ticker column starts with the directive sentinel is a directive row.
func loadCSV(r io.Reader) (*storeContents, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, configErrorf("store header: %v", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"tr_type", "ticker", "amount", "price", "date"} {
		if _, ok := cols[required]; !ok {
			return nil, configErrorf("store header: missing column %q", required)
		}
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	contents := &storeContents{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, configErrorf("store line %d: %v", line, err)
		}

		if raw := field(row, "ticker"); strings.HasPrefix(raw, DirectiveSentinel) {
			if err := contents.addDirective(raw); err != nil {
				return nil, configErrorf("store line %d: %v", line, err)
			}
			continue
		}

		rec := txRecord{
			Kind:      field(row, "tr_type"),
			Ticker:    field(row, "ticker"),
			Brokerage: field(row, "brokerage"),
			LotIDs:    field(row, "lot_ids"),
		}
		if rec.Amount, err = ParseQuantity(field(row, "amount")); err != nil {
			return nil, configErrorf("store line %d: amount: %v", line, err)
		}
		if rec.Price, err = ParseMoney(field(row, "price")); err != nil {
			return nil, configErrorf("store line %d: price: %v", line, err)
		}
		if rec.Date, err = ParseDate(field(row, "date")); err != nil {
			return nil, configErrorf("store line %d: date: %v", line, err)
		}
		if rec.Comm, err = parseOptionalMoney(field(row, "comm")); err != nil {
			return nil, configErrorf("store line %d: comm: %v", line, err)
		}
		if rec.AddBasis, err = parseOptionalMoney(field(row, "add_basis")); err != nil {
			return nil, configErrorf("store line %d: add_basis: %v", line, err)
		}
		if rec.SellAll, err = parseOptionalBool(field(row, "sell_all")); err != nil {
			return nil, configErrorf("store line %d: sell_all: %v", line, err)
		}

		tx, err := rec.toTransaction()
		if err != nil {
			return nil, configErrorf("store line %d: %v", line, err)
		}
		contents.transactions = append(contents.transactions, tx)
	}
	return contents, nil
}

func (c *storeContents) addDirective(raw string) error {
	d, err := ParseDirective(raw)
	if err != nil {
		return err
	}
	c.directives = append(c.directives, d)
	c.rawDirectives = append(c.rawDirectives, raw)
	return nil
}

func (rec *txRecord) toTransaction() (*Transaction, error) {
	kind, err := ParseTxKind(rec.Kind)
	if err != nil {
		return nil, err
	}
	var lotIDs []string
	if rec.LotIDs != "" {
		lotIDs = strings.Split(rec.LotIDs, ":")
	}
	return NewTransaction(kind, rec.Brokerage, rec.Ticker, rec.Amount, rec.Price, rec.Comm, rec.Date, rec.AddBasis, lotIDs, rec.SellAll)
}

func recordOf(tx *Transaction) txRecord {
	return txRecord{
		Kind:      string(tx.Kind()),
		Ticker:    tx.Ticker(),
		Amount:    tx.Amount(),
		Price:     tx.Price(),
		Date:      tx.Date(),
		Comm:      tx.Commission(),
		Brokerage: tx.Brokerage(),
		AddBasis:  tx.AdditionalBasis(),
		LotIDs:    strings.Join(tx.LotIDs(), ":"),
		SellAll:   tx.SellAll(),
	}
}

// RemoveLastTransaction removes the most recent transaction entry from the
// store at fname, leaving directive entries in place, and returns the
// removed transaction.
func RemoveLastTransaction(fname string) (*Transaction, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}

	switch ext := filepath.Ext(fname); ext {
	case ".json":
		lines := strings.Split(string(data), "\n")
		for i := len(lines) - 1; i >= 0; i-- {
			text := strings.TrimSpace(lines[i])
			if text == "" {
				continue
			}
			var rec txRecord
			if err := json.Unmarshal([]byte(text), &rec); err != nil {
				return nil, configErrorf("store line %d: %v", i+1, err)
			}
			if rec.Cmd != "" {
				continue
			}
			tx, err := rec.toTransaction()
			if err != nil {
				return nil, configErrorf("store line %d: %v", i+1, err)
			}
			lines = append(lines[:i], lines[i+1:]...)
			return tx, os.WriteFile(fname, []byte(strings.Join(lines, "\n")), 0644)
		}
		return nil, configErrorf("no transaction to remove in %s", fname)

	case ".csv":
		contents, err := loadCSV(strings.NewReader(string(data)))
		if err != nil {
			return nil, err
		}
		if len(contents.transactions) == 0 {
			return nil, configErrorf("no transaction to remove in %s", fname)
		}
		last := contents.transactions[len(contents.transactions)-1]
		// Rewrite the whole store in canonical form. Directives come first,
		// which does not change replay semantics.
		f, err := os.OpenFile(fname, os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		w := csv.NewWriter(f)
		if err := w.Write(csvHeader); err != nil {
			return nil, err
		}
		for _, raw := range contents.rawDirectives {
			if err := w.Write([]string{"", raw, "", "", "", "", "", "", "", ""}); err != nil {
				return nil, err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		if err := appendRecords(fname, contents.transactions[:len(contents.transactions)-1]); err != nil {
			return nil, err
		}
		return last, nil

	default:
		return nil, configErrorf("unsupported store format %q, expecting .json or .csv", ext)
	}
}

func parseOptionalMoney(s string) (Money, error) {
	if s == "" {
		return USD(0), nil
	}
	return ParseMoney(s)
}

func parseOptionalBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(strings.ToLower(s))
}

// appendRecords appends transactions to the store at fname, creating it if
// needed, in the format the extension selects.
func appendRecords(fname string, txs []*Transaction) error {
	ext := filepath.Ext(fname)
	if ext != ".json" && ext != ".csv" {
		return configErrorf("unsupported store format %q, expecting .json or .csv", ext)
	}

	f, err := os.OpenFile(fname, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if ext == ".json" {
		enc := json.NewEncoder(f)
		for _, tx := range txs {
			if err := enc.Encode(recordOf(tx)); err != nil {
				return err
			}
		}
		return nil
	}

	info, err := f.Stat()
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}
	for _, tx := range txs {
		rec := recordOf(tx)
		sellAll := ""
		if rec.SellAll {
			sellAll = "true"
		}
		row := []string{
			rec.Kind, rec.Ticker, rec.Amount.String(), rec.Price.Decimal().String(),
			rec.Date.String(), rec.Comm.Decimal().String(), rec.Brokerage,
			rec.AddBasis.Decimal().String(), rec.LotIDs, sellAll,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
