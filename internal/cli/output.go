package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/sniper/internal/auction"
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success outputs a result in the configured format: data as indented
// JSON, or the text line otherwise.
func (f *OutputFormatter) Success(text string, data any) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"status": "ok", "data": data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with digit grouping (1234567 ->
// "1,234,567") for text output.
func FormatAmount(a auction.Amount) string {
	return amountPrinter.Sprintf("%d", uint64(a))
}
