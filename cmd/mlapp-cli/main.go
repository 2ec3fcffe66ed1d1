// MLApp CLI — инструмент командной строки для работы
// с пользователями, моделями и ML-запросами через HTTP API.
//
// Использование:
//
//	mlapp [--api-url URL] [--token TOKEN] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	user     Пользователи и балансы
//	model    Каталог моделей
//	predict  Отправка ML-запроса
//	request  Просмотр записей запросов
//	chat     Чат с моделью
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sijin77/my-ml-app/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var token string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "mlapp",
		Short:         "MLApp CLI — ML platform client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("MLAPP_TOKEN"), "Bearer token (default: $MLAPP_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL, token) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewUserCmd(clientFn, outputFn),
		cli.NewModelCmd(clientFn, outputFn),
		cli.NewPredictCmd(clientFn, outputFn),
		cli.NewRequestCmd(clientFn, outputFn),
		cli.NewChatCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
