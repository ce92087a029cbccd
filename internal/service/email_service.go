package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"team_collab_backend/internal/config"
	"team_collab_backend/pkg/logger"

	"go.uber.org/zap"
)

// EmailService 通过 HTTP API 发事务性邮件
// 未配置时所有发送调用直接跳过，不视为错误
type EmailService struct {
	Cfg    *config.EmailConfig
	client *http.Client
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{
		Cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *EmailService) Enabled() bool {
	return s.Cfg.Enabled && s.Cfg.APIKey != "" && s.Cfg.SenderEmail != ""
}

type emailPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func (s *EmailService) Send(toName, toEmail, subject, htmlContent string) error {
	if !s.Enabled() {
		logger.Log.Debug("Email service not configured, skipping send",
			zap.String("to", toEmail))
		return nil
	}

	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	payload := emailPayload{
		Sender:      map[string]string{"name": s.Cfg.SenderName, "email": s.Cfg.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", s.Cfg.APIURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.Cfg.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email API error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}
