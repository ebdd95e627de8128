package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/moltbook"
)

var (
	callQuery       []string
	callData        string
	callNoAuth      bool
	callJQ          string
	callRequireJSON bool
)

var callCmd = &cobra.Command{
	Use:   "call <METHOD> <path>",
	Short: "Send one raw API request",
	Long: `Send a single request to the Moltbook API and print the normalized
response. The path is relative to https://www.moltbook.com/api/v1.

Example:
  moltbook call GET /agents/me
  moltbook call GET /posts -q sort=new -q limit=5 --jq '.posts[].title'
  moltbook call POST /posts -d '{"submolt":"general","title":"Hi","content":"First post"}'
  moltbook call POST /agents/register --no-auth -d @agent.json`,
	Args: cobra.ExactArgs(2),
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringArrayVarP(&callQuery, "query", "q", nil, "Query parameter as key=value (repeatable)")
	callCmd.Flags().StringVarP(&callData, "data", "d", "", "JSON request body, or @file to read it from a file")
	callCmd.Flags().BoolVar(&callNoAuth, "no-auth", false, "Send without the Authorization header")
	callCmd.Flags().StringVar(&callJQ, "jq", "", "Filter the response with a jq expression")
	callCmd.Flags().BoolVar(&callRequireJSON, "require-json", false, "Fail when a success response is not JSON")

	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	query, err := parsePairs(callQuery)
	if err != nil {
		return err
	}
	body, err := readJSONBody(callData, cmd.InOrStdin())
	if err != nil {
		return err
	}

	filter, err := compileOptionalJQ(callJQ)
	if err != nil {
		return err
	}

	opts := appOptions{key: keyRequired, prompt: stdinIsTerminal() && callData != "-", statusErr: true}
	if callNoAuth {
		opts = appOptions{key: keyNone, statusErr: true}
	}
	a, err := newApp(ctx, cmd, newConsole(cmd.InOrStdin(), cmd.ErrOrStderr()), opts)
	if err != nil {
		return interruptOr(ctx, err)
	}
	defer a.Close()

	req := moltbook.Request{
		Method:      args[0],
		Path:        args[1],
		Query:       query,
		JSON:        body,
		RequireAuth: !callNoAuth,
		RequireJSON: callRequireJSON,
	}

	res, err := a.client.Call(ctx, req)
	if err != nil {
		printCallError(cmd.ErrOrStderr(), err)
		return reportedError{err}
	}
	return printCallResult(cmd, res, filter)
}

func printCallResult(cmd *cobra.Command, res *moltbook.Result, filter *gojq.Code) error {
	switch {
	case filter != nil:
		return runJQ(cmd.OutOrStdout(), filter, redactedFields(res))
	case outputJSON:
		return outputAsJSON(cmd, redactedFields(res))
	default:
		printResult(cmd.OutOrStdout(), res)
		return nil
	}
}

// parsePairs turns key=value strings into a query map.
func parsePairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid pair %q: expected key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

// readJSONBody parses --data. "@path" reads a file and "-" reads stdin.
func readJSONBody(data string, stdin io.Reader) (any, error) {
	if data == "" {
		return nil, nil
	}

	var raw []byte
	switch {
	case data == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read body from stdin: %w", err)
		}
		raw = b
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		raw = b
	default:
		raw = []byte(data)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("request body is not valid JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("request body has trailing data after the JSON value")
	}
	return v, nil
}

// compileOptionalJQ compiles a --jq expression; an empty one yields nil.
func compileOptionalJQ(expr string) (*gojq.Code, error) {
	if expr == "" {
		return nil, nil
	}
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid --jq expression: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("invalid --jq expression: %w", err)
	}
	return code, nil
}

// runJQ prints every value the filter emits. Strings print bare, like jq -r
// on a terminal would show them; everything else prints as indented JSON.
func runJQ(w io.Writer, code *gojq.Code, fields map[string]any) error {
	input, err := toJQValue(fields)
	if err != nil {
		return err
	}

	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := v.(error); isErr {
			if halt, isHalt := err.(*gojq.HaltError); isHalt && halt.Value() == nil {
				return nil
			}
			return fmt.Errorf("jq: %w", err)
		}
		if s, isStr := v.(string); isStr {
			fmt.Fprintln(w, s)
			continue
		}
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("jq: %w", err)
		}
		fmt.Fprintln(w, string(out))
	}
}

// toJQValue converts decoded JSON into the plain types gojq accepts.
// json.Number is not one of them, so the value is re-decoded.
func toJQValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
