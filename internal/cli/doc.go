// Package cli реализует инструмент командной строки mlapp.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с MLApp API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для управления пользователями, балансами,
// каталогом моделей и ML-запросами.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для MLApp API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок. Bearer-токен (--token или MLAPP_TOKEN)
// прикладывается к каждому запросу.
//
//	client := cli.NewClient("http://localhost:8080", token)
//	models, err := client.ListModels()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: mlapp model list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - user: register, login, show, stats, deposit, withdraw, transactions, requests
//   - model: list, create, show, settings
//   - predict: отправка запроса и ожидание результата
//   - request: show
//   - chat: send, history, clear
//
// Каждая группа создаётся через фабричную функцию (NewUserCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
