package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewChatCmd создаёт группу команд чата.
func NewChatCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a model",
	}

	cmd.AddCommand(
		newChatSendCmd(clientFn, outputFn),
		newChatHistoryCmd(clientFn, outputFn),
		newChatClearCmd(clientFn, outputFn),
	)

	return cmd
}

func newChatSendCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var modelID int64

	cmd := &cobra.Command{
		Use:   "send TEXT",
		Short: "Send a chat message and print the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := clientFn().SendChatMessage(modelID, args[0])
			if err != nil {
				return err
			}

			out := outputFn()
			if out.jsonMode {
				out.JSON(resp)
				return nil
			}
			fmt.Println(resp.Answer)
			return nil
		},
	}

	cmd.Flags().Int64Var(&modelID, "model-id", 0, "Model ID (default: server-side default)")

	return cmd
}

func newChatHistoryCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show chat history",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := clientFn().GetChatHistory()
			if err != nil {
				return err
			}

			headers := []string{"ROLE", "TEXT", "AT"}
			rows := make([][]string, len(history.Messages))
			for i, m := range history.Messages {
				rows[i] = []string{m.Role, m.Text, m.CreatedAt}
			}

			outputFn().Print(headers, rows, history)
			return nil
		},
	}
}

func newChatClearCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear chat history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().ClearChatHistory(); err != nil {
				return err
			}
			outputFn().Success("Chat history cleared")
			return nil
		},
	}
}
