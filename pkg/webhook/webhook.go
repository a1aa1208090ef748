// Package webhook 在业务写入成功后异步投递外发通知
// 失败仅记录日志，不重试、不向调用方返回
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"dhs-academy/backend/config"
)

// ClassCreatedEvent 班级创建通知负载
type ClassCreatedEvent struct {
	Event          string    `json:"event"`
	ClassID        string    `json:"class_id"`
	Name           string    `json:"name"`
	InstructorID   string    `json:"instructor_id"`
	CandidateCount int       `json:"candidate_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// discordMessage Discord Webhook 最小负载
type discordMessage struct {
	Content string `json:"content"`
}

// Dispatcher Webhook 投递器，URL 为空的通道视为关闭
type Dispatcher struct {
	client          *http.Client
	classCreatedURL string
	discordRelayURL string
	logger          *zap.Logger
	wg              sync.WaitGroup
}

// NewDispatcher 创建投递器
func NewDispatcher(cfg *config.WebhookConfig, logger *zap.Logger) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		client:          &http.Client{Timeout: timeout},
		classCreatedURL: cfg.ClassCreatedURL,
		discordRelayURL: cfg.DiscordRelayURL,
		logger:          logger,
	}
}

// ClassCreated 投递班级创建事件
func (d *Dispatcher) ClassCreated(evt ClassCreatedEvent) {
	evt.Event = "class.created"
	d.dispatch(evt.Event, d.classCreatedURL, evt)
}

// Relay 转发一条文本到 Discord 频道
func (d *Dispatcher) Relay(content string) {
	d.dispatch("discord.relay", d.discordRelayURL, discordMessage{Content: content})
}

// Wait 等待所有在途投递结束（优雅关闭与测试使用）
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(event, url string, payload interface{}) {
	if url == "" {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.post(url, payload); err != nil {
			d.logger.Warn("Webhook 投递失败", zap.String("event", event), zap.Error(err))
			return
		}
		d.logger.Debug("Webhook 投递成功", zap.String("event", event))
	}()
}

func (d *Dispatcher) post(url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化负载失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("非预期状态码 %d", resp.StatusCode)
	}
	return nil
}
