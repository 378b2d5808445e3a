package builder

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/seagate/s3setup/internal/config"
	"github.com/seagate/s3setup/internal/domain/descriptor"
)

var errUnknownFormat = errors.New("unknown output format")

// Render writes the descriptor to w in the given format.
func Render(w io.Writer, desc *descriptor.Descriptor, format string) error {
	switch format {
	case config.FormatYAML, "":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(desc); err != nil {
			return fmt.Errorf("encode descriptor as yaml: %w", err)
		}

		return encoder.Close()
	case config.FormatJSON:
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(desc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode descriptor as json: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	case config.FormatTable:
		renderTable(w, desc)

		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

func renderTable(w io.Writer, desc *descriptor.Descriptor) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"name", desc.Name},
		{"version", desc.Version},
		{"author", desc.Author},
		{"packages", strings.Join(desc.Packages, ", ")},
		{"include_package_data", strconv.FormatBool(desc.IncludePackageData)},
		{"scripts", strings.Join(desc.Scripts, ", ")},
		{"description", desc.Description},
	})

	for _, pkg := range slices.Sorted(maps.Keys(desc.PackageData)) {
		t.AppendRow(table.Row{"package_data[" + pkg + "]", strings.Join(desc.PackageData[pkg], ", ")})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
