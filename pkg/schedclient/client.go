// Package schedclient 是排课 REST 接口的 HTTP 客户端，实现 scheduler.API。
//
// 后端统一返回 {success, code, data, error} 信封；success=false 时
// error 字段作为 *APIError 的文本直接展示给学生。
package schedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tudva/backend/config"
	"tudva/backend/internal/scheduler"
)

// ErrNetwork 网络层失败（连接、超时、非信封响应）
var ErrNetwork = errors.New("网络异常，请稍后重试")

// APIError 后端以 success=false 返回的业务错误
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// IsCode 判断 err 是否为指定业务码的 APIError
func IsCode(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client 排课后端客户端，并发安全
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

var _ scheduler.API = (*Client)(nil)

// New 创建 Client；cfg.BaseURL 形如 http://host:8080/api/v1
func New(cfg *config.ClientConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SetToken 直接设置 Access Token
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ── 请求基础设施 ──

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("编码请求失败: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// do 发送请求并解析信封；out 非 nil 时解码 data
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("请求失败",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("请求完成",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
		zap.Duration("latency", time.Since(start)),
	)

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: 无法解析响应 (HTTP %d)", ErrNetwork, resp.StatusCode)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("请求失败 (HTTP %d)", resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: msg}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: 响应数据格式错误", ErrNetwork)
		}
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// 认证
// ═══════════════════════════════════════════════════════════

// Login 邮箱密码登录，成功后保存 Access Token
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return err
	}
	if out.AccessToken == "" {
		return fmt.Errorf("%w: 登录响应缺少 access_token", ErrNetwork)
	}
	c.SetToken(out.AccessToken)
	return nil
}

// Logout 注销当前 Token
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// TimeSlots 拉取时段目录，用于构造网格
func (c *Client) TimeSlots(ctx context.Context) (scheduler.Catalog, error) {
	var out struct {
		TimeSlots []scheduler.TimeSlot `json:"timeSlots"`
	}
	if err := c.do(ctx, http.MethodGet, "/time-slots", nil, &out); err != nil {
		return nil, err
	}
	return scheduler.Catalog(out.TimeSlots), nil
}

// ═══════════════════════════════════════════════════════════
// scheduler.API
// ═══════════════════════════════════════════════════════════

func (c *Client) GetSchedule(ctx context.Context) ([]scheduler.PlacedItem, error) {
	var out struct {
		ScheduledItems []scheduler.PlacedItem `json:"scheduledItems"`
	}
	if err := c.do(ctx, http.MethodGet, "/scheduler/items", nil, &out); err != nil {
		return nil, err
	}
	for i := range out.ScheduledItems {
		out.ScheduledItems[i].State = scheduler.StateConfirmed
	}
	return out.ScheduledItems, nil
}

func (c *Client) ListAvailableCourses(ctx context.Context, q scheduler.AvailableQuery) ([]scheduler.AvailableCourse, error) {
	params := url.Values{}
	if q.Query != "" {
		params.Set("query", q.Query)
	}
	if q.Type != "" {
		params.Set("type", string(q.Type))
	}
	path := "/scheduler/available-courses"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out struct {
		Courses []scheduler.AvailableCourse `json:"courses"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Courses, nil
}

func (c *Client) AddCourseItem(ctx context.Context, req scheduler.AddCourseItemRequest) error {
	return c.do(ctx, http.MethodPost, "/scheduler/items", req, nil)
}

func (c *Client) AddLiveCourse(ctx context.Context, courseID string) error {
	return c.do(ctx, http.MethodPost, "/scheduler/live-courses", map[string]string{"courseId": courseID}, nil)
}

type updateBody struct {
	NewDate   string `json:"newDate,omitempty"`
	NewSlotID string `json:"newSlotId,omitempty"`
	Remove    bool   `json:"remove,omitempty"`
}

func (c *Client) UpdateScheduledItem(ctx context.Context, req scheduler.UpdateItemRequest) error {
	body := updateBody{NewDate: req.NewDate, NewSlotID: req.NewSlotID, Remove: req.Remove}
	return c.do(ctx, http.MethodPut, "/scheduler/items/"+url.PathEscape(req.ItemID), body, nil)
}

func (c *Client) UpdateItemsOrder(ctx context.Context, courseID string, orderedItemIDs []string) error {
	return c.do(ctx, http.MethodPost, "/scheduler/order", map[string]interface{}{
		"courseId":       courseID,
		"orderedItemIds": orderedItemIDs,
	}, nil)
}

// ═══════════════════════════════════════════════════════════
// 导出
// ═══════════════════════════════════════════════════════════

// Export 下载课表 Excel，返回文件内容与服务端建议的文件名
func (c *Client) Export(ctx context.Context) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/scheduler/export", nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var env envelope
		if json.NewDecoder(resp.Body).Decode(&env) == nil && env.Error != "" {
			return nil, "", &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
		}
		return nil, "", fmt.Errorf("%w: HTTP %d", ErrNetwork, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return data, filenameFrom(resp.Header.Get("Content-Disposition")), nil
}

func filenameFrom(disposition string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return "schedule.xlsx"
	}
	if name := params["filename"]; name != "" {
		return name
	}
	return "schedule.xlsx"
}
