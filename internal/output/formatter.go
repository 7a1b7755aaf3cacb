// =============================================================================
// internal/output/formatter.go - Record file formats
// =============================================================================
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/record"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents a record file format
type OutputFormat string

const (
	FormatCSV   OutputFormat = "csv"
	FormatTOML  OutputFormat = "toml"
	FormatYAML  OutputFormat = "yaml"
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
)

// ParseFormat validates a format name given on the command line
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(name)); f {
	case FormatCSV, FormatTOML, FormatYAML, FormatJSON, FormatTable:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", failure.New(failure.CommandLine, "unknown format %q, expected csv, toml, yaml, json or table", name)
	}
}

// FormatFromExtension infers the format of a record file from its name
func FormatFromExtension(path string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "csv":
		return FormatCSV, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", failure.New(failure.MissingFormat, "cannot infer file format from %q, please specify --format", path)
	}
}

type tomlFile struct {
	Record []record.Record `toml:"Record"`
}

// Formatter reads and writes records in one format
type Formatter struct {
	format OutputFormat
}

// NewFormatter creates a new formatter with the specified format
func NewFormatter(format OutputFormat) *Formatter {
	return &Formatter{format: format}
}

// Format returns the formatter's format
func (f *Formatter) Format() OutputFormat {
	return f.format
}

// WriteRecords writes records to writer
func (f *Formatter) WriteRecords(records []record.Record, writer io.Writer) error {
	var err error
	switch f.format {
	case FormatCSV:
		err = writeRecordsCSV(records, writer)
	case FormatTOML:
		err = toml.NewEncoder(writer).Encode(tomlFile{Record: records})
	case FormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(2)
		if err = encoder.Encode(records); err == nil {
			err = encoder.Close()
		}
	case FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(records)
	case FormatTable:
		err = writeRecordsTable(records, writer)
	default:
		return failure.New(failure.CommandLine, "unexpected file format %s", f.format)
	}
	if err != nil {
		return failure.Wrapf(failure.FileWrite, err, "writing %s output", f.format)
	}
	return nil
}

// ReadRecords parses records from reader
func (f *Formatter) ReadRecords(reader io.Reader) ([]record.Record, error) {
	var (
		records []record.Record
		err     error
	)
	switch f.format {
	case FormatCSV:
		records, err = readRecordsCSV(reader)
	case FormatTOML:
		var file tomlFile
		_, err = toml.NewDecoder(reader).Decode(&file)
		records = file.Record
	case FormatYAML:
		err = yaml.NewDecoder(reader).Decode(&records)
		if err == io.EOF {
			err = nil
		}
	case FormatJSON:
		err = json.NewDecoder(reader).Decode(&records)
	default:
		return nil, failure.New(failure.CommandLine, "format %s cannot be imported", f.format)
	}
	if err != nil {
		return nil, failure.Wrapf(failure.ImportFile, err, "reading %s records", f.format)
	}
	return records, nil
}

func writeRecordsTable(records []record.Record, writer io.Writer) error {
	if len(records) == 0 {
		_, err := fmt.Fprintf(writer, "No records found.\n")
		return err
	}

	table := NewTable([]string{"IP", "MAC", "Server", "Label", "DNS", "Type", "CNAME", "DHCP", "DNS", "WiFi"})
	for _, r := range records {
		table.AddRow([]string{
			r.IP,
			r.Mac,
			r.DhcpServer,
			truncateString(r.DhcpLabel, 30),
			truncateString(r.DNSID(), 40),
			r.DnsType,
			truncateString(r.DnsCName, 40),
			check(r.HasDhcp),
			check(r.HasDns),
			check(r.HasWiFi),
		})
	}
	return table.Render(writer)
}

func check(b bool) string {
	if b {
		return "✓"
	}
	return ""
}

// truncateString shortens s to max runes, marking the cut with an ellipsis
func truncateString(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
