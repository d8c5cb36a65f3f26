package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/iho/bizdesk/internal/adapter/http/dto"
	"github.com/iho/bizdesk/internal/domain"
)

const sessionEnv = "BIZDESK_SESSION"

type options struct {
	baseURL string
	timeout time.Duration
	session string
	json    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "bizdesk-cli",
		Short:         "Bizdesk CLI tool",
		Long:          `A command line interface for browsing and editing bizdesk commissions and cash flow.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the bizdesk API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.session, "session", os.Getenv(sessionEnv), "Session ID (defaults to $"+sessionEnv+")")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print raw JSON responses")

	rootCmd.AddCommand(
		openCmd(opts),
		viewCmd(opts),
		closeCmd(opts),
		searchCmd(opts),
		pageCmd(opts),
		createCmd(opts),
		editCmd(opts),
		deleteCmd(opts),
		healthCmd(opts),
	)

	return rootCmd
}

func openCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "open <commissions|cashflow>",
		Short:     "Open a table session",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.KindCommissions), string(domain.KindCashFlow)},
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.SessionResponse
			err := newClient(opts).do(cmd.Context(), http.MethodPost, "/api/v1/sessions", dto.OpenSessionRequest{Kind: args[0]}, &resp)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Session: %s\n(export %s=%s)\n\n", resp.SessionID, sessionEnv, resp.SessionID)
			renderView(cmd.OutOrStdout(), resp.View)
			return nil
		},
	}
}

func viewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the current page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := sessionPath(opts, "")
			if err != nil {
				return err
			}
			var view dto.ViewResponse
			if err := newClient(opts).do(cmd.Context(), http.MethodGet, path, nil, &view); err != nil {
				return err
			}
			return printView(cmd.OutOrStdout(), opts, view)
		},
	}
}

func closeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := sessionPath(opts, "")
			if err != nil {
				return err
			}
			if err := newClient(opts).do(cmd.Context(), http.MethodDelete, path, nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session closed")
			return nil
		},
	}
}

func searchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search [text]",
		Short: "Filter the table; no text clears the filter",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := sessionPath(opts, "/search")
			if err != nil {
				return err
			}
			var view dto.ViewResponse
			req := dto.SearchRequest{Text: strings.Join(args, " ")}
			if err := newClient(opts).do(cmd.Context(), http.MethodPut, path, req, &view); err != nil {
				return err
			}
			return printView(cmd.OutOrStdout(), opts, view)
		},
	}
}

func pageCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "page <n>",
		Short: "Go to page n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("page must be a number: %w", err)
			}
			path, err := sessionPath(opts, "/page")
			if err != nil {
				return err
			}
			var view dto.ViewResponse
			if err := newClient(opts).do(cmd.Context(), http.MethodPut, path, dto.PageRequest{Page: n}, &view); err != nil {
				return err
			}
			return printView(cmd.OutOrStdout(), opts, view)
		},
	}
}

// draftFlags are the form inputs shared by create and edit.
type draftFlags struct {
	fields   map[string]string
	amount   string
	date     string
	category string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringToStringVar(&f.fields, "field", nil, "Text field as name=value (repeatable)")
	cmd.Flags().StringVar(&f.amount, "amount", "", `Amount, e.g. "1.234,56" or "R$ 1.500"`)
	cmd.Flags().StringVar(&f.date, "date", "", "Date as YYYY-MM-DD")
	cmd.Flags().StringVar(&f.category, "category", "", "income or expense")
}

// apply overlays the flags the user set onto a server-provided form.
func (f *draftFlags) apply(cmd *cobra.Command, d dto.DraftResponse) dto.DraftRequest {
	req := d.ToRequest()
	if req.Fields == nil {
		req.Fields = map[string]string{}
	}
	for k, v := range f.fields {
		req.Fields[k] = v
	}
	if cmd.Flags().Changed("amount") {
		req.Amount = dto.AmountFromText(f.amount)
	}
	if cmd.Flags().Changed("date") {
		req.Date = f.date
	}
	if cmd.Flags().Changed("category") {
		req.Category = f.category
	}
	return req
}

func createCmd(opts *options) *cobra.Command {
	flags := &draftFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(opts)

			draftPath, err := sessionPath(opts, "/draft")
			if err != nil {
				return err
			}
			var draft dto.DraftResponse
			if err := c.do(cmd.Context(), http.MethodGet, draftPath, nil, &draft); err != nil {
				return err
			}

			path, _ := sessionPath(opts, "/records")
			var resp dto.MutationResponse
			if err := c.do(cmd.Context(), http.MethodPost, path, flags.apply(cmd, draft), &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created record %d\n\n", resp.Record.ID)
			renderView(cmd.OutOrStdout(), resp.View)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func editCmd(opts *options) *cobra.Command {
	flags := &draftFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a record; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(opts)

			beginPath, err := sessionPath(opts, "/records/"+args[0]+"/edit")
			if err != nil {
				return err
			}
			var edit dto.EditResponse
			if err := c.do(cmd.Context(), http.MethodPost, beginPath, nil, &edit); err != nil {
				return err
			}

			confirmPath, _ := sessionPath(opts, "/edit/confirm")
			var resp dto.MutationResponse
			if err := c.do(cmd.Context(), http.MethodPost, confirmPath, flags.apply(cmd, edit.Draft), &resp); err != nil {
				cancelPath, _ := sessionPath(opts, "/edit/cancel")
				_ = c.do(cmd.Context(), http.MethodPost, cancelPath, nil, nil)
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated record %d\n\n", resp.Record.ID)
			renderView(cmd.OutOrStdout(), resp.View)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func deleteCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(opts)

			beginPath, err := sessionPath(opts, "/records/"+args[0]+"/delete")
			if err != nil {
				return err
			}
			var view dto.ViewResponse
			if err := c.do(cmd.Context(), http.MethodPost, beginPath, nil, &view); err != nil {
				return err
			}

			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), deletePrompt(view)) {
				cancelPath, _ := sessionPath(opts, "/delete/cancel")
				if err := c.do(cmd.Context(), http.MethodPost, cancelPath, nil, nil); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}

			confirmPath, _ := sessionPath(opts, "/delete/confirm")
			var resp dto.MutationResponse
			if err := c.do(cmd.Context(), http.MethodPost, confirmPath, nil, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %d\n\n", resp.Record.ID)
			renderView(cmd.OutOrStdout(), resp.View)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func healthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check service readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var status map[string]string
			if err := newClient(opts).do(cmd.Context(), http.MethodGet, "/ready", nil, &status); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}
}

func sessionPath(opts *options, suffix string) (string, error) {
	if opts.session == "" {
		return "", fmt.Errorf("no session: pass --session or set %s (see `open`)", sessionEnv)
	}
	return "/api/v1/sessions/" + opts.session + suffix, nil
}

// client is a minimal JSON client for the bizdesk API.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(opts *options) *client {
	return &client{
		baseURL: strings.TrimRight(opts.baseURL, "/"),
		http:    &http.Client{Timeout: opts.timeout},
	}
}

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status int
	Body   dto.ErrorResponse
}

func (e *apiError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (status %d)", e.Body.Error, e.Status)
	if e.Body.Message != "" && len(e.Body.Fields) == 0 {
		fmt.Fprintf(&b, ": %s", e.Body.Message)
	}
	for _, f := range e.Body.Fields {
		fmt.Fprintf(&b, "\n  %s: %s", f.Field, f.Message)
	}
	return b.String()
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		if json.Unmarshal(data, &apiErr.Body) != nil || apiErr.Body.Error == "" {
			apiErr.Body.Error = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printView(w io.Writer, opts *options, view dto.ViewResponse) error {
	if opts.json {
		return printJSON(w, view)
	}
	renderView(w, view)
	return nil
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
)

// renderView prints the table, pager and totals of a view.
func renderView(w io.Writer, view dto.ViewResponse) {
	schema, err := domain.SchemaFor(domain.Kind(view.Kind))
	if err != nil {
		fmt.Fprintf(w, "unknown collection %q\n", view.Kind)
		return
	}

	headers := []string{"ID"}
	for _, f := range schema.TextFields {
		headers = append(headers, titleCase(f))
	}
	headers = append(headers, "Amount", "Date")
	if schema.Categorized {
		headers = append(headers, "Category")
	}

	rows := make([][]string, 0, len(view.Rows))
	for _, r := range view.Rows {
		row := []string{strconv.FormatInt(r.ID, 10)}
		for _, f := range schema.TextFields {
			row = append(row, truncate(r.Fields[f], 32))
		}
		row = append(row, formatMoney(r.Amount), r.Date)
		if schema.Categorized {
			row = append(row, r.Category)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	if view.Search != "" {
		fmt.Fprintf(w, "Search: %q (%d matching)\n", view.Search, view.Matched)
	}
	if len(view.Rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No records found."))
	} else {
		fmt.Fprintln(w, t.String())
	}

	if view.ShowPager {
		fmt.Fprintf(w, "Page %d of %d  %s\n", view.CurrentPage, view.TotalPages, pagerLine(view.Links))
	}

	if schema.Categorized {
		fmt.Fprintf(w, "Income: %s  Expense: %s  Balance: %s\n",
			incomeStyle.Render(formatMoney(view.Totals.Income)),
			expenseStyle.Render(formatMoney(view.Totals.Expense)),
			formatMoney(view.Totals.Balance))
	} else {
		fmt.Fprintf(w, "Total: %s (%d records)\n", formatMoney(view.Totals.Sum), view.Totals.Count)
	}

	if view.Pending.Action != "none" && view.Pending.Target != nil {
		fmt.Fprintf(w, "Pending %s of record %d\n", view.Pending.Action, view.Pending.Target.ID)
	}
}

func pagerLine(links []dto.PageLinkResponse) string {
	parts := make([]string, len(links))
	for i, l := range links {
		switch {
		case l.Ellipsis:
			parts[i] = "…"
		case l.Current:
			parts[i] = "[" + strconv.Itoa(l.Number) + "]"
		default:
			parts[i] = strconv.Itoa(l.Number)
		}
	}
	return strings.Join(parts, " ")
}

func deletePrompt(view dto.ViewResponse) string {
	target := view.Pending.Target
	if target == nil {
		return "Delete record?"
	}
	label := target.Fields[domain.FieldDescription]
	if seller := target.Fields[domain.FieldSeller]; seller != "" {
		label = seller + " / " + label
	}
	return fmt.Sprintf("Delete record %d (%s, %s)?", target.ID, label, formatMoney(target.Amount))
}

// confirm asks a y/N question; anything but y or yes means no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

var moneyPrinter = message.NewPrinter(language.BrazilianPortuguese)

// formatMoney renders an amount the way the tables show it, e.g. "R$ 1.234,56".
func formatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return "R$ " + moneyPrinter.Sprint(number.Decimal(f, number.Scale(2)))
}

func titleCase(s string) string {
	return cases.Title(language.BrazilianPortuguese).String(s)
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
