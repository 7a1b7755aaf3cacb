// =============================================================================
// internal/output/records_csv.go - CSV record files
// =============================================================================
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AndrewSav/mktool/internal/record"
)

func recordRow(r record.Record) []string {
	return []string{
		r.IP, r.Mac, r.DhcpServer, r.DhcpLabel, r.DnsHostName, r.DnsRegexp,
		r.DnsType, r.DnsCName,
		strconv.FormatBool(r.HasDhcp), strconv.FormatBool(r.HasDns), strconv.FormatBool(r.HasWiFi),
	}
}

func writeRecordsCSV(records []record.Record, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)

	if err := csvWriter.Write(record.Fields); err != nil {
		return err
	}
	for _, r := range records {
		if err := csvWriter.Write(recordRow(r)); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// readRecordsCSV reads records by header name, so columns may come in any
// order and unknown columns are ignored
func readRecordsCSV(reader io.Reader) ([]record.Record, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var records []record.Record
	for line := 2; ; line++ {
		row, err := csvReader.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}

		get := func(field string) string {
			if i, ok := columns[strings.ToLower(field)]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		flag := func(field string) (bool, error) {
			v := get(field)
			if v == "" {
				return false, nil
			}
			b, err := strconv.ParseBool(v)
			if err != nil {
				return false, fmt.Errorf("line %d: %s: '%s' is not a boolean", line, field, v)
			}
			return b, nil
		}

		r := record.Record{
			IP:          get("IP"),
			Mac:         get("Mac"),
			DhcpServer:  get("DhcpServer"),
			DhcpLabel:   get("DhcpLabel"),
			DnsHostName: get("DnsHostName"),
			DnsRegexp:   get("DnsRegexp"),
			DnsType:     get("DnsType"),
			DnsCName:    get("DnsCName"),
		}
		if r.HasDhcp, err = flag("HasDhcp"); err != nil {
			return nil, err
		}
		if r.HasDns, err = flag("HasDns"); err != nil {
			return nil, err
		}
		if r.HasWiFi, err = flag("HasWiFi"); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
}
