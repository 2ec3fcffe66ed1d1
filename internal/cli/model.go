package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewModelCmd создаёт группу команд для управления каталогом моделей.
func NewModelCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage the model catalog",
	}

	cmd.AddCommand(
		newModelListCmd(clientFn, outputFn),
		newModelCreateCmd(clientFn, outputFn),
		newModelShowCmd(clientFn, outputFn),
		newModelSettingsCmd(clientFn, outputFn),
	)

	return cmd
}

func newModelListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var inputType string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List models",
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := clientFn().ListModels(inputType, limit)
			if err != nil {
				return err
			}

			rows := make([][]string, len(models))
			for i := range models {
				rows[i] = modelRow(&models[i])
			}

			outputFn().Print(modelHeaders, rows, models)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputType, "input-type", "", "Filter by input type (text, image, tabular, audio)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newModelCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var version string
	var inputType string
	var outputType string
	var cost float64
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Register a model in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := clientFn().CreateModel(CreateModelRequest{
				Name:           args[0],
				Version:        version,
				InputType:      inputType,
				OutputType:     outputType,
				CostPerRequest: cost,
				Description:    description,
			})
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success(fmt.Sprintf("Model %q registered with id %d", model.Name, model.ID))
			out.Print(modelHeaders, [][]string{modelRow(model)}, model)
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "1.0.0", "Model version (major.minor.patch)")
	cmd.Flags().StringVar(&inputType, "input-type", "text", "Input type (text, image, tabular, audio)")
	cmd.Flags().StringVar(&outputType, "output-type", "generation", "Output type (classification, regression, generation, detection)")
	cmd.Flags().Float64Var(&cost, "cost", 0, "Cost per request")
	cmd.Flags().StringVar(&description, "description", "", "Model description")

	return cmd
}

func newModelShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show MODEL_ID",
		Short: "Show model details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}

			model, err := clientFn().GetModel(id)
			if err != nil {
				return err
			}

			outputFn().Print(modelHeaders, [][]string{modelRow(model)}, model)
			return nil
		},
	}
}

func newModelSettingsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var set []string

	cmd := &cobra.Command{
		Use:   "settings MODEL_ID",
		Short: "Show or update model settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}

			client := clientFn()
			out := outputFn()

			var settings []ModelSettingResponse
			if len(set) > 0 {
				values := make(map[string]string, len(set))
				for _, kv := range set {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid setting format %q, expected KEY=VALUE", kv)
					}
					values[parts[0]] = parts[1]
				}
				settings, err = client.UpdateModelSettings(id, values)
			} else {
				settings, err = client.GetModelSettings(id)
			}
			if err != nil {
				return err
			}

			headers := []string{"PARAMETER", "VALUE", "UPDATED"}
			rows := make([][]string, len(settings))
			for i, s := range settings {
				rows[i] = []string{s.Parameter, s.Value, s.UpdatedAt}
			}

			out.Print(headers, rows, settings)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Setting to upsert (KEY=VALUE, repeatable)")

	return cmd
}

var modelHeaders = []string{"ID", "NAME", "VERSION", "INPUT", "OUTPUT", "COST", "CREATED"}

func modelRow(m *ModelResponse) []string {
	return []string{
		strconv.FormatInt(m.ID, 10),
		m.Name,
		m.Version,
		m.InputType,
		m.OutputType,
		formatAmount(m.CostPerRequest),
		m.CreatedAt,
	}
}
