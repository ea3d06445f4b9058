package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/blaisecz/sleep-coach/internal/langfuse"
	"github.com/blaisecz/sleep-coach/internal/prompt"
	"github.com/blaisecz/sleep-coach/internal/sanitize"
	"github.com/blaisecz/sleep-coach/internal/service"
	"github.com/blaisecz/sleep-coach/internal/validation"
	"github.com/spf13/cobra"
)

func newPromptCmd() *cobra.Command {
	var (
		file       string
		structured bool
	)

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Render the LLM prompts for a sleep record without calling the LLM",
		Long: `Reads a sleep record as JSON, runs it through sanitizing and validation
and prints the system and user prompt that would be sent to the LLM.

Example:
  sleep-coach prompt --file night.json
  cat night.json | sleep-coach prompt --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readRecord(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return renderPrompt(cmd.OutOrStdout(), raw, structured)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON sleep record, - for stdin")
	cmd.Flags().BoolVar(&structured, "structured", false, "render the JSON-schema system prompt")
	return cmd
}

func readRecord(stdin io.Reader, file string) (any, error) {
	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open record: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return raw, nil
}

func renderPrompt(out io.Writer, raw any, structured bool) error {
	svc := service.NewAnalysisService(
		service.AnalysisConfig{},
		sanitize.New(),
		validation.NewValidator(),
		prompt.NewBuilder(prompt.WithStructuredOutput(structured)),
		nil,
		langfuse.NewClient(langfuse.Config{}, nil),
		nil,
		nil,
	)

	p, res := svc.Preview(raw)
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	if !res.Valid {
		return res.Err()
	}

	fmt.Fprintf(out, "# prompt version %s\n\n", prompt.PromptVersion)
	fmt.Fprintf(out, "## system\n%s\n\n## user\n%s\n", p.System, p.User)
	return nil
}
