package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	accentColor = color.New(color.FgMagenta)
	warnColor   = color.New(color.FgYellow)
)

// writeStructured prints v as JSON or YAML. YAML goes through JSON first
// so both formats share the json tag names.
func writeStructured(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if output == formatJSON {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	return writeYAML(w, data)
}

func writeYAML(w io.Writer, jsonData []byte) error {
	var generic any
	if err := json.Unmarshal(jsonData, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, headerColor.Sprint(title))
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// distributionRow is one line of a share table.
type distributionRow struct {
	Key   string
	Count int
	Share float64
}

func distribution[K ~string](counts map[K]int) []distributionRow {
	total := 0
	for _, n := range counts {
		total += n
	}
	rows := make([]distributionRow, 0, len(counts))
	for k, n := range counts {
		share := 0.0
		if total > 0 {
			share = float64(n) / float64(total)
		}
		rows = append(rows, distributionRow{Key: string(k), Count: n, Share: share})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

func printDistribution(w io.Writer, title string, rows []distributionRow) {
	printHeader(w, title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		bar := strings.Repeat("#", int(r.Share*40+0.5))
		fmt.Fprintf(tw, "%s\t%d\t%5.1f%%\t%s\n", r.Key, r.Count, r.Share*100, accentColor.Sprint(bar))
	}
	_ = tw.Flush()
	fmt.Fprintln(w)
}
