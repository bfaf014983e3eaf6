package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"text/tabwriter"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/domain"
)

func simulateCmd(opts *rootOptions) *cobra.Command {
	var (
		principal  string
		annualRate string
		term       int
		minorUnits int32
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Print an amortization schedule without calling the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := decimal.NewFromString(principal)
			if err != nil {
				return fmt.Errorf("invalid principal %q: %w", principal, err)
			}
			r, err := decimal.NewFromString(annualRate)
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", annualRate, err)
			}

			policy := domain.DefaultPolicy()
			policy.MinorUnitPlaces = minorUnits

			schedule, err := domain.NewSchedule(domain.LoanTerms{Principal: p, AnnualRate: r, TermMonths: term}, policy)
			if err != nil {
				return err
			}

			resp := dto.ScheduleFromDomain(schedule)
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			return printSchedule(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "", "Loan principal")
	cmd.Flags().StringVar(&annualRate, "rate", "", "Nominal annual rate in percent, e.g. 18")
	cmd.Flags().IntVar(&term, "term", 0, "Term in months")
	cmd.Flags().Int32Var(&minorUnits, "minor-units", 0, "Decimal places of the currency minor unit")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("term")

	return cmd
}

func statusCmd(opts *rootOptions) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "status <loan-id>",
		Short: "Show a loan's derived status and arrears",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/loans/" + url.PathEscape(args[0]) + "/status"
			if asOf != "" {
				path += "?as_of=" + url.QueryEscape(asOf)
			}

			var resp dto.LoanStatusResponse
			if _, err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, nil, &resp); err != nil {
				return err
			}

			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			return printStatus(cmd.OutOrStdout(), &resp)
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "Evaluation date (YYYY-MM-DD), defaults to today")
	return cmd
}

func payCmd(opts *rootOptions) *cobra.Command {
	var (
		installments int
		method       string
		reference    string
		key          string
	)

	cmd := &cobra.Command{
		Use:   "pay <loan-id>",
		Short: "Pay one or more whole installments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = ulid.Make().String()
			}

			req := dto.PaymentRequest{
				Installments: installments,
				Method:       method,
				Reference:    reference,
			}
			path := "/api/v1/loans/" + url.PathEscape(args[0]) + "/payments"

			var resp dto.PaymentResultResponse
			_, err := opts.client().do(cmd.Context(), http.MethodPost, path, req,
				map[string]string{idempotencyKeyHeader: key}, &resp)
			if err != nil {
				return err
			}

			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			return printPayment(cmd.OutOrStdout(), &resp)
		},
	}

	cmd.Flags().IntVarP(&installments, "installments", "n", 1, "Number of installments to pay")
	cmd.Flags().StringVar(&method, "method", string(domain.PaymentMethodCash), "Payment method: efectivo, tarjeta, pse or transferencia")
	cmd.Flags().StringVar(&reference, "reference", "", "External payment reference")
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key; generated when empty")

	return cmd
}

func historyCmd(opts *rootOptions) *cobra.Command {
	var (
		asOf   string
		status string
	)

	cmd := &cobra.Command{
		Use:   "history <member-id>",
		Short: "Show a member's credit history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if asOf != "" {
				q.Set("as_of", asOf)
			}
			if status != "" {
				q.Set("status", status)
			}
			path := "/api/v1/members/" + url.PathEscape(args[0]) + "/credit-history"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var resp dto.CreditHistoryResponse
			if _, err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, nil, &resp); err != nil {
				return err
			}

			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			return printHistory(cmd.OutOrStdout(), &resp)
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "Evaluation date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&status, "status", "", "Only loans with this status")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSchedule(w io.Writer, s *dto.ScheduleResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tPAYMENT\tINTEREST\tCAPITAL\tBALANCE\t")
	for _, inst := range s.Installments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n", inst.Number, inst.Payment, inst.Interest, inst.Capital, inst.Balance)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nFixed payment: %s\nTotal payment: %s\nTotal interest: %s\n",
		s.FixedPayment, s.TotalPayment, s.TotalInterest)
	return err
}

func printStatus(w io.Writer, s *dto.LoanStatusResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Loan:\t%s\n", s.Loan.ID)
	fmt.Fprintf(tw, "Member:\t%s\n", s.Loan.MemberID)
	fmt.Fprintf(tw, "Status:\t%s\n", s.Status)
	fmt.Fprintf(tw, "As of:\t%s\n", s.AsOf.Format(time.DateOnly))
	fmt.Fprintf(tw, "Paid:\t%d/%d\n", s.Loan.InstallmentsPaid, s.Loan.TermMonths)
	fmt.Fprintf(tw, "Outstanding:\t%s\n", s.Loan.OutstandingBalance)
	fmt.Fprintf(tw, "In arrears:\t%d installments, %d days\n", s.Delinquency.MonthsInArrears, s.Delinquency.DaysInArrears)
	fmt.Fprintf(tw, "Overdue:\t%s\n", s.Delinquency.OverdueAmount)
	fmt.Fprintf(tw, "Penalty:\t%s (next %s)\n", s.Delinquency.CurrentPenalty, s.Delinquency.NextPenalty)
	if s.NextDueDate != nil && s.NextInstallment != nil {
		fmt.Fprintf(tw, "Next due:\t%s #%d %s\n", s.NextDueDate.Format(time.DateOnly), s.NextInstallment.Number, s.NextInstallment.Payment)
	}
	for _, warning := range s.Delinquency.Warnings {
		fmt.Fprintf(tw, "Warning:\t%s\n", warning)
	}
	return tw.Flush()
}

func printPayment(w io.Writer, r *dto.PaymentResultResponse) error {
	replay := ""
	if r.Replayed {
		replay = " (replayed)"
	}
	_, err := fmt.Fprintf(w, "Payment %s%s: %d installment(s), %s via %s\nLoan %s: %s, %d/%d paid, outstanding %s\n",
		r.Payment.ID, replay, r.Payment.Installments, r.Payment.Amount, r.Payment.Method,
		r.Loan.ID, r.Loan.Status, r.Loan.InstallmentsPaid, r.Loan.TermMonths, r.Loan.OutstandingBalance)
	return err
}

func printHistory(w io.Writer, h *dto.CreditHistoryResponse) error {
	fmt.Fprintf(w, "Member %s as of %s: %d loans, %d delinquent, outstanding %s, overdue %s\n\n",
		h.MemberID, h.AsOf.Format(time.DateOnly), h.Summary.TotalLoans, h.Summary.DelinquentLoans,
		h.Summary.OutstandingTotal, h.Summary.OverdueTotal)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOAN\tSTATUS\tPRINCIPAL\tPAID\tOUTSTANDING\tDAYS LATE\tDESCRIPTION")
	for _, l := range h.Loans {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%d\t%s\n",
			l.Loan.ID, l.Status, l.Loan.Principal, l.Loan.InstallmentsPaid, l.Loan.TermMonths,
			l.Loan.OutstandingBalance, l.Delinquency.DaysInArrears, truncate(l.Loan.Description, 30))
	}
	return tw.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
