package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/adams85/pjson"
	"github.com/adams85/pjson/internal/statsparser"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse the JSON read from stdin and report aggregate shape statistics",
	RunE:  runParse,
}

func datatypeName(t pjson.TokenType) string {
	switch t {
	case pjson.TokenNull:
		return "null"
	case pjson.TokenFalse:
		return "false"
	case pjson.TokenTrue:
		return "true"
	case pjson.TokenNumber:
		return "number"
	case pjson.TokenString:
		return "string"
	case pjson.TokenCloseBracket:
		return "array"
	case pjson.TokenCloseBrace:
		return "object"
	default:
		return "<unexpected>"
	}
}

// runParse reads a stream of zero or more top-level JSON values from stdin,
// printing a stats report for each, same as sample/parse.c's stats_parser
// demo (which notes in a comment that it doubles as an example of parsing
// concatenated values rather than a single document).
func runParse(cmd *cobra.Command, args []string) error {
	stats := statsparser.New(true)

	var tok pjson.Tokenizer
	tok.Init(stats)

	reader := bufio.NewReader(cmd.InOrStdin())
	buf := make([]byte, 4096)
	valueFound := false

	for {
		n, readErr := reader.Read(buf)
		chunk := buf[:n]

		for len(chunk) > 0 {
			consumed, status := tok.Feed(chunk)
			if status == pjson.StatusCompleted {
				valueFound = true
				printStats(cmd.OutOrStdout(), stats)
				stats.Reset(true)
				chunk = chunk[consumed:]
				continue
			}
			if status != pjson.StatusDataNeeded {
				return reportParseStatus(status, &tok, valueFound)
			}
			break
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return errors.Wrap(readErr, "reading stdin")
		}
	}

	status := tok.Close()
	if status == pjson.StatusCompleted {
		printStats(cmd.OutOrStdout(), stats)
		return nil
	}
	return reportParseStatus(status, &tok, valueFound)
}

func reportParseStatus(status pjson.Status, tok *pjson.Tokenizer, valueFound bool) error {
	switch status {
	case pjson.StatusNoTokensFound:
		if valueFound {
			return nil
		}
		return errors.New("no tokens found")
	case pjson.StatusSyntaxError:
		return errors.Errorf("syntax error at position %d", tok.ErrorPosition())
	case pjson.StatusUTF8Error:
		return errors.Errorf("UTF-8 encoding error at position %d", tok.ErrorPosition())
	case pjson.StatusMaxDepthExceeded:
		return errors.New("maximum nesting depth exceeded")
	default:
		return errors.Errorf("unexpected error (%d)", status)
	}
}

// printStats renders a report in the format sample/parse.c uses, so output
// is easy to diff against the original's, down to the outer-value-only
// section for arrays and objects.
func printStats(w io.Writer, stats *statsparser.Stats) {
	fmt.Fprintln(w, "General JSON Info:")
	fmt.Fprintln(w, "------------------")
	fmt.Fprintf(w, "Top-level type:             %s\n", datatypeName(stats.ToplevelType))
	fmt.Fprintf(w, "Max. depth:                 %d\n", stats.MaxDepth+1)

	if stats.ToplevelType != pjson.TokenCloseBracket && stats.ToplevelType != pjson.TokenCloseBrace {
		return
	}

	fmt.Fprintf(w, "Max. array item count:      %d\n", stats.MaxArrayItemCount)
	fmt.Fprintf(w, "Max. object property count: %d\n", stats.MaxObjectPropertyCount)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Number of Data Types:")
	fmt.Fprintln(w, "---------------------")
	fmt.Fprintf(w, "Number of objects:  %d\n", stats.DatatypeCounts[statsparser.OccurrenceIndex(pjson.TokenCloseBrace)])
	fmt.Fprintf(w, "Number of arrays:   %d\n", stats.DatatypeCounts[statsparser.OccurrenceIndex(pjson.TokenCloseBracket)])
	fmt.Fprintf(w, "Number of strings:  %d\n", stats.DatatypeCounts[statsparser.OccurrenceIndex(pjson.TokenString)])
	fmt.Fprintf(w, "Number of numbers:  %d\n", stats.DatatypeCounts[statsparser.OccurrenceIndex(pjson.TokenNumber)])
	fmt.Fprintf(w, "Number of booleans: %d\n",
		stats.DatatypeCounts[statsparser.OccurrenceIndex(pjson.TokenFalse)]+stats.DatatypeCounts[statsparser.OccurrenceIndex(pjson.TokenTrue)])
	fmt.Fprintf(w, "Number of null:     %d\n", stats.DatatypeCounts[statsparser.OccurrenceIndex(pjson.TokenNull)])
	fmt.Fprintf(w, "Number of keys:     %d\n", stats.KeyCount)
	fmt.Fprintf(w, "Number of true:     %d\n", stats.DatatypeCounts[statsparser.OccurrenceIndex(pjson.TokenTrue)])
	fmt.Fprintf(w, "Number of false:    %d\n", stats.DatatypeCounts[statsparser.OccurrenceIndex(pjson.TokenFalse)])
}
