package cli

import (
	"github.com/spf13/cobra"
)

// NewPredictCmd создаёт команду отправки ML-запроса.
func NewPredictCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var userID int64
	var modelID int64
	var requestType string
	var timeoutSec int

	cmd := &cobra.Command{
		Use:   "predict INPUT_DATA",
		Short: "Send a prediction request and wait for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := clientFn().CreatePrediction(CreatePredictionRequest{
				UserID:      userID,
				ModelID:     modelID,
				InputData:   args[0],
				RequestType: requestType,
				TimeoutSec:  timeoutSec,
			})
			if err != nil {
				return err
			}

			out := outputFn()
			out.Print(requestHeaders, [][]string{requestRow(record)}, record)
			if record.OutputData != nil {
				out.Success("Output: " + *record.OutputData)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "Requesting user ID")
	cmd.Flags().Int64Var(&modelID, "model-id", 0, "Model ID")
	cmd.Flags().StringVar(&requestType, "type", "", "Request type (prediction, custom)")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "Reply timeout in seconds")
	cmd.MarkFlagRequired("user-id")
	cmd.MarkFlagRequired("model-id")

	return cmd
}

// NewRequestCmd создаёт группу команд для просмотра ML-запросов.
func NewRequestCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Inspect ML requests",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show REQUEST_ID",
		Short: "Show a request record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}

			record, err := clientFn().GetRequest(id)
			if err != nil {
				return err
			}

			outputFn().Print(requestHeaders, [][]string{requestRow(record)}, record)
			return nil
		},
	})

	return cmd
}
