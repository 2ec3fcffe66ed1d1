package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewUserCmd создаёт группу команд для управления пользователями.
func NewUserCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users and balances",
	}

	cmd.AddCommand(
		newUserRegisterCmd(clientFn, outputFn),
		newUserLoginCmd(clientFn, outputFn),
		newUserShowCmd(clientFn, outputFn),
		newUserStatsCmd(clientFn, outputFn),
		newUserRequestsCmd(clientFn, outputFn),
		newUserDepositCmd(clientFn, outputFn),
		newUserWithdrawCmd(clientFn, outputFn),
		newUserTransactionsCmd(clientFn, outputFn),
	)

	return cmd
}

func newUserRegisterCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "register USERNAME",
		Short: "Register a new user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			user, err := client.Register(RegisterRequest{
				Username: args[0],
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("User %q registered with id %d", user.Username, user.ID))
			out.Print(userHeaders, [][]string{userRow(user)}, user)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&password, "password", "", "User password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newUserLoginCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login USERNAME",
		Short: "Log in and print an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			token, err := client.Login(args[0], password)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Logged in as %q (user id %d)", token.User.Username, token.User.ID))
			// Токен в stdout, чтобы его можно было положить в MLAPP_TOKEN.
			fmt.Println(token.AccessToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "User password")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newUserShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show USER_ID",
		Short: "Show user details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}

			user, err := clientFn().GetUser(id)
			if err != nil {
				return err
			}

			outputFn().Print(userHeaders, [][]string{userRow(user)}, user)
			return nil
		},
	}
}

func newUserStatsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stats USER_ID",
		Short: "Show user request statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}

			stats, err := clientFn().GetUserStats(id)
			if err != nil {
				return err
			}

			headers := []string{"TOTAL", "COMPLETED", "FAILED", "TOTAL_COST", "AVG_MS"}
			rows := [][]string{{
				strconv.FormatInt(stats.TotalRequests, 10),
				strconv.FormatInt(stats.CompletedRequests, 10),
				strconv.FormatInt(stats.FailedRequests, 10),
				formatAmount(stats.TotalCost),
				fmt.Sprintf("%.1f", stats.AvgExecutionMs),
			}}

			outputFn().Print(headers, rows, stats)
			return nil
		},
	}
}

func newUserRequestsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "requests USER_ID",
		Short: "List user's ML requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}

			requests, err := clientFn().ListUserRequests(id, limit)
			if err != nil {
				return err
			}

			rows := make([][]string, len(requests))
			for i := range requests {
				rows[i] = requestRow(&requests[i])
			}

			outputFn().Print(requestHeaders, rows, requests)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newUserDepositCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "deposit USER_ID AMOUNT",
		Short: "Deposit funds to user balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, amount, err := parseIDAndAmount(args)
			if err != nil {
				return err
			}

			tx, err := clientFn().Deposit(id, amount, description)
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success(fmt.Sprintf("Deposited %s to user %d", formatAmount(amount), id))
			out.Print(transactionHeaders, [][]string{transactionRow(tx)}, tx)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Transaction description")

	return cmd
}

func newUserWithdrawCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "withdraw USER_ID AMOUNT",
		Short: "Withdraw funds from user balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, amount, err := parseIDAndAmount(args)
			if err != nil {
				return err
			}

			tx, err := clientFn().Withdraw(id, amount, description)
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success(fmt.Sprintf("Withdrew %s from user %d", formatAmount(amount), id))
			out.Print(transactionHeaders, [][]string{transactionRow(tx)}, tx)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Transaction description")

	return cmd
}

func newUserTransactionsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "transactions USER_ID",
		Short: "List user's transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}

			transactions, err := clientFn().ListTransactions(id, limit)
			if err != nil {
				return err
			}

			rows := make([][]string, len(transactions))
			for i := range transactions {
				rows[i] = transactionRow(&transactions[i])
			}

			outputFn().Print(transactionHeaders, rows, transactions)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

// --- Общие хелперы таблиц ---

var (
	userHeaders        = []string{"ID", "USERNAME", "EMAIL", "BALANCE", "ACTIVE", "CREATED"}
	transactionHeaders = []string{"ID", "USER_ID", "TYPE", "AMOUNT", "STATUS", "CREATED"}
	requestHeaders     = []string{"ID", "USER_ID", "MODEL_ID", "STATUS", "COST", "EXEC_MS", "CREATED"}
)

func userRow(u *UserResponse) []string {
	return []string{
		strconv.FormatInt(u.ID, 10),
		u.Username,
		u.Email,
		formatAmount(u.Balance),
		strconv.FormatBool(u.IsActive),
		u.CreatedAt,
	}
}

func transactionRow(t *TransactionResponse) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		strconv.FormatInt(t.UserID, 10),
		t.Type,
		formatAmount(t.Amount),
		t.Status,
		t.CreatedAt,
	}
}

func requestRow(r *RequestResponse) []string {
	execMs := "-"
	if r.ExecutionTimeMs != nil {
		execMs = strconv.FormatInt(*r.ExecutionTimeMs, 10)
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		strconv.FormatInt(r.UserID, 10),
		strconv.FormatInt(r.ModelID, 10),
		r.Status,
		formatAmount(r.Cost),
		execMs,
		r.CreatedAt,
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func parseIDArg(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDAndAmount(args []string) (int64, float64, error) {
	id, err := parseIDArg(args[0])
	if err != nil {
		return 0, 0, err
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || amount <= 0 {
		return 0, 0, fmt.Errorf("invalid amount %q", args[1])
	}
	return id, amount, nil
}
