package service

import (
	"fmt"
	"time"

	"greenhouse-data/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ResendEmail Resend 发信请求
type ResendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// ResendResponse Resend API 响应
type ResendResponse struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

// EmailSender 邮件投递接口（测试中用 fake 替换）
type EmailSender interface {
	Send(email *ResendEmail) (*ResendResponse, error)
}

// ResendClient Resend 邮件 API 客户端
type ResendClient struct {
	httpClient *resty.Client
	from       string
	logger     *zap.Logger
}

// NewResendClient 创建 Resend 客户端
func NewResendClient(cfg *config.ResendConfig, logger *zap.Logger) *ResendClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey)

	return &ResendClient{
		httpClient: client,
		from:       cfg.From,
		logger:     logger,
	}
}

var _ EmailSender = (*ResendClient)(nil)

// Send 发送邮件
func (c *ResendClient) Send(email *ResendEmail) (*ResendResponse, error) {
	if email.From == "" {
		email.From = c.from
	}

	var response ResendResponse
	resp, err := c.httpClient.R().
		SetBody(email).
		SetResult(&response).
		SetError(&response).
		Post("/emails")

	if err != nil {
		c.logger.Error("Resend API call failed",
			zap.Strings("to", email.To),
			zap.Error(err),
		)
		return nil, fmt.Errorf("resend API call failed: %w", err)
	}

	if resp.IsError() {
		c.logger.Error("Resend API returned error",
			zap.Int("status", resp.StatusCode()),
			zap.String("message", response.Message),
		)
		return nil, fmt.Errorf("resend API error (status %d): %s", resp.StatusCode(), response.Message)
	}

	c.logger.Info("Email sent",
		zap.Strings("to", email.To),
		zap.String("email_id", response.ID),
	)
	return &response, nil
}
