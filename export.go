package main

import (
	"encoding/json"
	"fmt"
	"io"

	"cmania/convert"

	"gopkg.in/yaml.v3"
)

func exportChart(w io.Writer, c *convert.Chart, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "\t")
		return enc.Encode(c)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown export format %q", format)
}
