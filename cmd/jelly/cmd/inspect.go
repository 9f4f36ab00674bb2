package cmd

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <stream-id>",
	Short: "Print the raw rows of a stored stream",
	Long: `Prints every row of a stored stream without resolving lookup
references: table entries, statements with their compact terms, graph
markers and namespace declarations. Use --json for one JSON object per row.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Bool("json", false, "Write one JSON object per row")
	rootCmd.AddCommand(inspectCmd)
}

type rowRecord struct {
	Frame    uint64            `json:"frame"`
	Row      int               `json:"row"`
	Kind     string            `json:"kind"`
	Value    string            `json:"value"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	id, err := parseStreamID(args[0])
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	info, err := a.store.Stream(id)
	if err != nil {
		return err
	}
	it, err := a.store.Frames(id)
	if err != nil {
		return err
	}
	defer it.Close()

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()
	enc := gojson.NewEncoder(out)

	if !asJSON {
		fmt.Fprintf(out, "stream %s %q: %d frames, %d rows, %d bytes\n",
			info.ID, info.Name, info.Frames, info.Rows, info.Bytes)
	}
	for it.Next() {
		frame, err := it.Frame()
		if err != nil {
			return err
		}
		seq := it.Seq()
		meta := frameMetadata(frame)
		if !asJSON {
			fmt.Fprintf(out, "frame %d (%d rows)", seq, len(frame.Rows))
			for _, k := range sortedMetaKeys(meta) {
				fmt.Fprintf(out, " %s=%q", k, meta[k])
			}
			fmt.Fprintln(out)
		}
		for i, row := range frame.Rows {
			if asJSON {
				rec := rowRecord{Frame: seq, Row: i, Kind: jelly.RowKind(row), Value: describeRow(row)}
				if i == 0 {
					rec.Metadata = meta
				}
				if err := enc.Encode(rec); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintf(out, "  %4d %-11s %s\n", i, jelly.RowKind(row), describeRow(row))
		}
	}
	return nil
}

func frameMetadata(frame jelly.Frame) map[string]string {
	if len(frame.Metadata) == 0 {
		return nil
	}
	m := make(map[string]string, len(frame.Metadata))
	for k, v := range frame.Metadata {
		m[k] = string(v)
	}
	return m
}

func sortedMetaKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// describeRow renders a row in a compact single-line form.
func describeRow(row jelly.Row) string {
	switch r := row.(type) {
	case *jelly.StreamOptions:
		s := r.String()
		if r.StreamName != "" {
			s += fmt.Sprintf(" name=%q", r.StreamName)
		}
		return s
	case *jelly.NameEntry:
		return fmt.Sprintf("#%d = %q", r.ID, r.Value)
	case *jelly.PrefixEntry:
		return fmt.Sprintf("#%d = %q", r.ID, r.Value)
	case *jelly.DatatypeEntry:
		return fmt.Sprintf("#%d = %q", r.ID, r.Value)
	case *jelly.Triple:
		return strings.Join([]string{describeTerm(r.S), describeTerm(r.P), describeTerm(r.O)}, " ")
	case *jelly.Quad:
		return strings.Join([]string{describeTerm(r.S), describeTerm(r.P), describeTerm(r.O), describeTerm(r.G)}, " ")
	case *jelly.GraphStart:
		return describeTerm(r.G)
	case *jelly.GraphEnd:
		return ""
	case *jelly.NamespaceDeclaration:
		return fmt.Sprintf("%s: %s", r.Name, describeTerm(r.Value))
	}
	return fmt.Sprintf("%T", row)
}

// describeTerm prints an omitted (repeated) term as "=".
func describeTerm(t jelly.Term) string {
	switch v := t.(type) {
	case nil:
		return "="
	case jelly.Iri:
		return fmt.Sprintf("iri(%d,%d)", v.PrefixID, v.NameID)
	case jelly.BlankNode:
		return "_:" + v.Label
	case jelly.Literal:
		switch v.Kind() {
		case jelly.LiteralLang:
			return fmt.Sprintf("%q@%s", v.Lex, v.LangTag)
		case jelly.LiteralDatatype:
			return fmt.Sprintf("%q^^dt(%d)", v.Lex, v.Datatype)
		}
		return fmt.Sprintf("%q", v.Lex)
	case jelly.TripleTerm:
		return "<<" + describeTerm(v.S) + " " + describeTerm(v.P) + " " + describeTerm(v.O) + ">>"
	case jelly.DefaultGraph:
		return "default"
	}
	return fmt.Sprintf("%T", t)
}
