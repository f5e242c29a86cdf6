package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

const tenantTokenURL = "https://open.feishu.cn/open-apis/auth/v3/tenant_access_token/internal"

// Client is the Lark API client used to push text messages to a chat
type Client struct {
	appID     string
	appSecret string
	larkCli   *lark.Client
}

// NewClient creates a new Lark client
func NewClient(appID, appSecret string) *Client {
	return &Client{
		appID:     appID,
		appSecret: appSecret,
		larkCli:   lark.NewClient(appID, appSecret),
	}
}

// SendText sends a text message to a chat
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	content := map[string]string{"text": text}
	contentJSON, _ := json.Marshal(content)

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(contentJSON)).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message error: %s", resp.Msg)
	}

	return nil
}

// Ping verifies the credentials by requesting a tenant access token
func (c *Client) Ping(ctx context.Context) error {
	tokenReq := fmt.Sprintf(`{"app_id":"%s","app_secret":"%s"}`, c.appID, c.appSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tenantTokenURL, strings.NewReader(tokenReq))
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}
	defer resp.Body.Close()

	var tokenResult struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResult); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	if tokenResult.Code != 0 {
		return fmt.Errorf("API error: %s", tokenResult.Msg)
	}
	return nil
}
