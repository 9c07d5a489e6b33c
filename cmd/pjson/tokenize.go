package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/adams85/pjson"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize",
	Short: "Print every token found in the JSON read from stdin",
	RunE:  runTokenize,
}

// tokenPrinter is a pjson.Sink that prints one comment-delimited line per
// token, ported from sample/tokenize.c's on_first_token/on_subsequent_token.
type tokenPrinter struct {
	w io.Writer
}

func (p *tokenPrinter) Eat(token *pjson.Token) pjson.Status {
	if token.Type == pjson.TokenEndOfStream {
		return pjson.StatusCompleted
	}

	fmt.Fprintf(p.w, "/* type: %s | start_index: %d | length: %d | value: %s",
		token.Type, token.StartIndex, len(token.Bytes), token.Bytes)

	rawLength := len(token.Bytes)
	if token.Type == pjson.TokenString {
		rawLength -= 2 // surrounding quotes aren't part of the unescaped value
	}
	if token.UnescapedLength != rawLength {
		unescaped, ok := pjson.ParseString(token.Bytes, true)
		if !ok {
			return pjson.StatusUserError
		}
		fmt.Fprintf(p.w, " | unescaped_length: %d | unescaped value: %s", token.UnescapedLength, unescaped)
	}

	fmt.Fprint(p.w, " */\n")
	return pjson.StatusDataNeeded
}

func runTokenize(cmd *cobra.Command, args []string) error {
	var tok pjson.Tokenizer
	tok.Init(&tokenPrinter{w: cmd.OutOrStdout()})

	reader := bufio.NewReader(cmd.InOrStdin())
	buf := make([]byte, 4096)

	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			if _, status := tok.Feed(buf[:n]); status != pjson.StatusDataNeeded {
				return reportTokenizerStatus(status, &tok)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return errors.Wrap(readErr, "reading stdin")
		}
	}

	return reportTokenizerStatus(tok.Close(), &tok)
}

func reportTokenizerStatus(status pjson.Status, tok *pjson.Tokenizer) error {
	switch status {
	case pjson.StatusCompleted:
		return nil
	case pjson.StatusNoTokensFound:
		return errors.New("no tokens found")
	case pjson.StatusSyntaxError:
		return errors.Errorf("syntax error at position %d", tok.ErrorPosition())
	case pjson.StatusUTF8Error:
		return errors.Errorf("UTF-8 encoding error at position %d", tok.ErrorPosition())
	default:
		return errors.Errorf("unexpected error (%d)", status)
	}
}
