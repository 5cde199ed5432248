package main

import (
	"encoding/json"
	"fmt"
	"growth_assessment/internal/catalog"
	"growth_assessment/internal/model"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	catalogSection string
	catalogJSON    bool
	catalogYAML    bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the compiled-in question catalogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := catalog.Load()
		if err != nil {
			return err
		}

		sections := reg.Sections()
		if catalogSection != "" {
			sec, ok := reg.Section(catalogSection)
			if !ok {
				return fmt.Errorf("unknown section %q", catalogSection)
			}
			sections = []*catalog.Section{sec}
		}

		docs := make([]catalogDoc, 0, len(sections))
		for _, s := range sections {
			docs = append(docs, catalogDoc{
				Key:       s.Key,
				Title:     s.Title,
				DataKey:   s.DataKey,
				Questions: s.Catalog.Questions(),
			})
		}

		out := cmd.OutOrStdout()
		switch {
		case catalogJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(docs)
		case catalogYAML:
			enc := yaml.NewEncoder(out)
			defer enc.Close()
			return enc.Encode(docs)
		default:
			printCatalog(out, docs)
			return nil
		}
	},
}

type catalogDoc struct {
	Key       string           `json:"key" yaml:"key"`
	Title     string           `json:"title" yaml:"title"`
	DataKey   string           `json:"dataKey" yaml:"data_key"`
	Questions []model.Question `json:"questions" yaml:"questions"`
}

func printCatalog(w io.Writer, docs []catalogDoc) {
	for _, d := range docs {
		fmt.Fprintf(w, "%s (%s)\n", d.Title, d.Key)
		for i, q := range d.Questions {
			fmt.Fprintf(w, "  %2d. [%s] %s\n", i+1, q.ID, q.Title)
			if len(q.Options) > 0 {
				fmt.Fprintf(w, "      %s\n", strings.Join(q.Options, " | "))
			}
		}
		fmt.Fprintln(w)
	}
}
