package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// UserResponse — пользователь из API.
type UserResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Balance   float64 `json:"balance"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at"`
}

// TokenResponse — токен доступа из API.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// TransactionResponse — транзакция из API.
type TransactionResponse struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"transaction_type"`
	Status      string  `json:"status"`
	Description string  `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ModelResponse — модель из API.
type ModelResponse struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Version        string         `json:"version"`
	InputType      string         `json:"input_type"`
	OutputType     string         `json:"output_type"`
	CostPerRequest float64        `json:"cost_per_request"`
	Description    string         `json:"description,omitempty"`
	Config         map[string]any `json:"config,omitempty"`
	CreatedAt      string         `json:"created_at"`
}

// ModelSettingResponse — настройка модели из API.
type ModelSettingResponse struct {
	ID        int64  `json:"id"`
	ModelID   int64  `json:"model_id"`
	Parameter string `json:"parameter"`
	Value     string `json:"parameter_value"`
	UpdatedAt string `json:"updated_at"`
}

// RequestResponse — запись ML-запроса из API.
type RequestResponse struct {
	ID              int64   `json:"id"`
	UserID          int64   `json:"user_id"`
	ModelID         int64   `json:"model_id"`
	RequestType     string  `json:"request_type"`
	InputData       string  `json:"input_data"`
	OutputData      *string `json:"output_data"`
	OutputMetrics   *string `json:"output_metrics,omitempty"`
	Cost            float64 `json:"cost"`
	ExecutionTimeMs *int64  `json:"execution_time_ms"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
}

// StatsResponse — статистика запросов пользователя из API.
type StatsResponse struct {
	TotalRequests     int64   `json:"total_requests"`
	CompletedRequests int64   `json:"completed_requests"`
	FailedRequests    int64   `json:"failed_requests"`
	TotalCost         float64 `json:"total_cost"`
	AvgExecutionMs    float64 `json:"avg_execution_time"`
}

// ChatMessageResponse — ответ модели в чате.
type ChatMessageResponse struct {
	Answer    string `json:"answer"`
	RequestID int64  `json:"request_id"`
}

// ChatHistoryResponse — история чата.
type ChatHistoryResponse struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatMessage — сообщение из истории чата.
type ChatMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// --- Request types ---

// RegisterRequest — регистрация пользователя.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest — вход.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AmountRequest — пополнение или списание.
type AmountRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// CreateModelRequest — регистрация модели.
type CreateModelRequest struct {
	Name           string         `json:"name"`
	Version        string         `json:"version"`
	InputType      string         `json:"input_type"`
	OutputType     string         `json:"output_type"`
	CostPerRequest float64        `json:"cost_per_request"`
	Description    string         `json:"description,omitempty"`
	Config         map[string]any `json:"config,omitempty"`
}

// UpdateSettingsRequest — массовое обновление настроек модели.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}

// CreatePredictionRequest — ML-запрос.
type CreatePredictionRequest struct {
	UserID      int64  `json:"user_id"`
	ModelID     int64  `json:"model_id"`
	InputData   string `json:"input_data"`
	RequestType string `json:"request_type,omitempty"`
	TimeoutSec  int    `json:"timeout_sec,omitempty"`
}

// ChatMessageRequest — сообщение в чат.
type ChatMessageRequest struct {
	ModelID int64  `json:"model_id,omitempty"`
	Text    string `json:"text"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для MLApp API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient создаёт клиент для API. Пустой token означает
// неаутентифицированные запросы (register, login, каталог моделей).
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			// Синхронное предсказание может ждать воркера до минут.
			Timeout: 5 * time.Minute,
		},
	}
}

// --- Auth ---

// Register регистрирует нового пользователя.
func (c *Client) Register(req RegisterRequest) (*UserResponse, error) {
	var user UserResponse
	err := c.post("/api/v1/auth/register", req, &user)
	return &user, err
}

// Login возвращает токен доступа.
func (c *Client) Login(username, password string) (*TokenResponse, error) {
	var token TokenResponse
	err := c.post("/api/v1/auth/login", LoginRequest{Username: username, Password: password}, &token)
	return &token, err
}

// --- Users ---

// GetUser возвращает пользователя по ID.
func (c *Client) GetUser(id int64) (*UserResponse, error) {
	var user UserResponse
	err := c.get("/api/v1/users/"+formatID(id), &user)
	return &user, err
}

// GetUserStats возвращает статистику запросов пользователя.
func (c *Client) GetUserStats(id int64) (*StatsResponse, error) {
	var stats StatsResponse
	err := c.get("/api/v1/users/"+formatID(id)+"/stats", &stats)
	return &stats, err
}

// ListUserRequests возвращает историю ML-запросов пользователя.
func (c *Client) ListUserRequests(id int64, limit int) ([]RequestResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var requests []RequestResponse
	err := c.list("/api/v1/users/"+formatID(id)+"/requests", params, &requests)
	return requests, err
}

// --- Transactions ---

// Deposit пополняет баланс пользователя.
func (c *Client) Deposit(userID int64, amount float64, description string) (*TransactionResponse, error) {
	var tx TransactionResponse
	err := c.post("/api/v1/users/"+formatID(userID)+"/deposit", AmountRequest{Amount: amount, Description: description}, &tx)
	return &tx, err
}

// Withdraw списывает средства с баланса пользователя.
func (c *Client) Withdraw(userID int64, amount float64, description string) (*TransactionResponse, error) {
	var tx TransactionResponse
	err := c.post("/api/v1/users/"+formatID(userID)+"/withdraw", AmountRequest{Amount: amount, Description: description}, &tx)
	return &tx, err
}

// ListTransactions возвращает историю транзакций пользователя.
func (c *Client) ListTransactions(userID int64, limit int) ([]TransactionResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var transactions []TransactionResponse
	err := c.list("/api/v1/users/"+formatID(userID)+"/transactions", params, &transactions)
	return transactions, err
}

// --- Models ---

// ListModels возвращает каталог моделей.
func (c *Client) ListModels(inputType string, limit int) ([]ModelResponse, error) {
	params := url.Values{}
	if inputType != "" {
		params.Set("input_type", inputType)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var models []ModelResponse
	err := c.list("/api/v1/models", params, &models)
	return models, err
}

// CreateModel регистрирует модель в каталоге.
func (c *Client) CreateModel(req CreateModelRequest) (*ModelResponse, error) {
	var model ModelResponse
	err := c.post("/api/v1/models", req, &model)
	return &model, err
}

// GetModel возвращает модель по ID.
func (c *Client) GetModel(id int64) (*ModelResponse, error) {
	var model ModelResponse
	err := c.get("/api/v1/models/"+formatID(id), &model)
	return &model, err
}

// GetModelSettings возвращает настройки модели.
func (c *Client) GetModelSettings(id int64) ([]ModelSettingResponse, error) {
	var settings []ModelSettingResponse
	err := c.list("/api/v1/models/"+formatID(id)+"/settings", nil, &settings)
	return settings, err
}

// UpdateModelSettings массово обновляет настройки модели.
func (c *Client) UpdateModelSettings(id int64, settings map[string]string) ([]ModelSettingResponse, error) {
	resp, err := c.do(http.MethodPut, "/api/v1/models/"+formatID(id)+"/settings", UpdateSettingsRequest{Settings: settings})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var result []ModelSettingResponse
	return result, json.Unmarshal(lr.Data, &result)
}

// --- Predictions ---

// CreatePrediction отправляет ML-запрос и ждёт итоговой записи.
func (c *Client) CreatePrediction(req CreatePredictionRequest) (*RequestResponse, error) {
	var record RequestResponse
	err := c.post("/api/v1/predictions", req, &record)
	return &record, err
}

// GetRequest возвращает запись ML-запроса по ID.
func (c *Client) GetRequest(id int64) (*RequestResponse, error) {
	var record RequestResponse
	err := c.get("/api/v1/requests/"+formatID(id), &record)
	return &record, err
}

// --- Chat ---

// SendChatMessage отправляет сообщение в чат.
func (c *Client) SendChatMessage(modelID int64, text string) (*ChatMessageResponse, error) {
	var resp ChatMessageResponse
	err := c.post("/api/v1/chat/messages", ChatMessageRequest{ModelID: modelID, Text: text}, &resp)
	return &resp, err
}

// GetChatHistory возвращает историю чата.
func (c *Client) GetChatHistory() (*ChatHistoryResponse, error) {
	var history ChatHistoryResponse
	err := c.get("/api/v1/chat/history", &history)
	return &history, err
}

// ClearChatHistory очищает историю чата.
func (c *Client) ClearChatHistory() error {
	resp, err := c.do(http.MethodDelete, "/api/v1/chat/history", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

// --- HTTP helpers ---

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
