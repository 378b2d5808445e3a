package checker

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/seagate/s3setup/internal/domain/descriptor"
)

// Severity of a finding.
type Severity string

const (
	// SeverityWarning findings never fail a build unless strict mode is on.
	SeverityWarning Severity = "WARNING"
	// SeverityError findings come from structural descriptor problems.
	SeverityError Severity = "ERROR"
)

// Finding is a single problem detected in a descriptor.
type Finding struct {
	Severity Severity
	Field    string
	Message  string
}

// Inspect examines the descriptor against the files in baseDir.
func Inspect(baseDir string, desc *descriptor.Descriptor) []Finding {
	var findings []Finding

	if err := desc.Validate(); err != nil {
		var vErr *descriptor.ValidationError
		if errors.As(err, &vErr) {
			findings = append(findings, Finding{SeverityError, vErr.Field, vErr.Message})
		} else {
			findings = append(findings, Finding{SeverityError, "descriptor", err.Error()})
		}

		return findings
	}

	findings = append(findings, inspectVersion(desc.Version)...)

	for _, pkg := range desc.Packages {
		if !isDir(filepath.Join(baseDir, filepath.FromSlash(pkg))) {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Field:    "packages",
				Message:  fmt.Sprintf("package directory %q not found", pkg),
			})
		}
	}

	for _, script := range desc.Scripts {
		if !isRegular(filepath.Join(baseDir, filepath.FromSlash(script))) {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Field:    "scripts",
				Message:  fmt.Sprintf("script %q not found", script),
			})
		}
	}

	return findings
}

func inspectVersion(version string) []Finding {
	if version == "" {
		return []Finding{{
			Severity: SeverityWarning,
			Field:    "version",
			Message:  "VERSION file is empty",
		}}
	}

	if _, err := semver.NewVersion(version); err != nil {
		return []Finding{{
			Severity: SeverityWarning,
			Field:    "version",
			Message:  fmt.Sprintf("%q is not a semantic version: %v", version, err),
		}}
	}

	return nil
}

// Render prints findings as a table, or a one-line summary when there are none.
func Render(w io.Writer, findings []Finding) {
	if len(findings) == 0 {
		_, _ = fmt.Fprintln(w, "No problems found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Severity", "Field", "Message"})

	for _, f := range findings {
		color := text.FgYellow
		if f.Severity == SeverityError {
			color = text.FgRed
		}

		t.AppendRow(table.Row{color.Sprint(string(f.Severity)), f.Field, f.Message})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func isRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
