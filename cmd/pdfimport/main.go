package main

// Extract and infer a résumé from a local PDF:
//   go run ./cmd/pdfimport -file cv.pdf [-score] [-text] [-no-primary] [-catalog skills.yaml] [-out result.json]

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"resume-importer/internal/ats"
	"resume-importer/internal/extract"
	"resume-importer/internal/inference"
	"resume-importer/internal/resume"
)

type options struct {
	usePrimary bool
	withScore  bool
	withText   bool
	catalog    inference.Catalog
}

type output struct {
	ExtractionPath string            `json:"extractionPath"`
	PrimaryError   string            `json:"primaryError,omitempty"`
	Text           string            `json:"text,omitempty"`
	Result         resume.ResumeData `json:"result"`
	ATS            *ats.Report       `json:"ats,omitempty"`
}

func main() {
	filePath := flag.String("file", "", "Path to the PDF to import")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	withScore := flag.Bool("score", false, "Include the ATS report")
	withText := flag.Bool("text", false, "Include the extracted text")
	noPrimary := flag.Bool("no-primary", false, "Skip the page decoder and use the byte scan only")
	catalogPath := flag.String("catalog", "", "YAML skills catalog replacing the built-in keywords")
	flag.Parse()

	if strings.TrimSpace(*filePath) == "" {
		exitErr("file path is required")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		exitErr(fmt.Sprintf("read file: %v", err))
	}

	opts := options{usePrimary: !*noPrimary, withScore: *withScore, withText: *withText}
	if *catalogPath != "" {
		if opts.catalog, err = inference.LoadCatalog(*catalogPath); err != nil {
			exitErr(err.Error())
		}
	}

	out, err := run(context.Background(), data, opts)
	if err != nil {
		exitErr(err.Error())
	}

	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	pretty = append(pretty, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if err := write(os.Stdout, pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func run(ctx context.Context, data []byte, opts options) (output, error) {
	if err := extract.Validate(extract.MimePDF, int64(len(data))); err != nil {
		return output{}, err
	}

	var engine *extract.Engine
	if opts.usePrimary {
		engine = extract.NewEngine(extract.LedongthucDecoder{})
	} else {
		engine = extract.NewEngine(nil)
	}

	res, err := engine.Extract(ctx, data)
	if err != nil {
		return output{}, fmt.Errorf("extract: %w", err)
	}

	out := output{
		ExtractionPath: string(res.Path),
		Result:         inference.NewEngine(opts.catalog).Infer(res.Text),
	}
	if res.PrimaryErr != nil {
		out.PrimaryError = res.PrimaryErr.Error()
	}
	if opts.withText {
		out.Text = res.Text
	}
	if opts.withScore {
		report := ats.Score(out.Result)
		out.ATS = &report
	}
	return out, nil
}

func write(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
